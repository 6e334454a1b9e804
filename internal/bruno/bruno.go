// Package bruno renders and parses Bruno environment files carrying the
// session credentials, and fans them out into every API collection folder.
package bruno

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mazurov/brow-cli/internal/models"
)

// ErrIncomplete is returned when credentials lack JSESSIONID or token
var ErrIncomplete = errors.New("required tokens missing (JSESSIONID and token)")

const (
	// DefaultEnvFile is the generated environment file name
	DefaultEnvFile = "cli-generated.bru"
	// DefaultFolderMatch selects collection folders by name
	DefaultFolderMatch = "API"
	// EnvironmentsDir is the Bruno environments folder inside a collection
	EnvironmentsDir = "environments"
)

// Options controls where environment files are written
type Options struct {
	FolderMatch string // substring a folder name must contain
	EnvFile     string // file name inside environments/
	BaseURL     string // value of the url var
}

// Render produces the Bruno environment file body
func Render(creds models.Credentials, baseURL string) string {
	var b strings.Builder
	b.WriteString("vars {\n")
	fmt.Fprintf(&b, "  signavioId: %s\n", creds.SignavioID())
	fmt.Fprintf(&b, "  url: %s\n", baseURL)
	fmt.Fprintf(&b, "  cookie: %s\n", creds.CookieHeader())
	b.WriteString("}\n")
	return b.String()
}

// Parse reads credentials back from a rendered environment file.
// The token comes from signavioId, JSESSIONID from the cookie line.
func Parse(content string) (models.Credentials, error) {
	var creds models.Credentials

	if _, rest, ok := strings.Cut(content, "signavioId:"); ok {
		line, _, _ := strings.Cut(rest, "\n")
		creds.Token = strings.TrimSpace(line)
	}

	if _, rest, ok := strings.Cut(content, "cookie:"); ok {
		first, _, _ := strings.Cut(rest, ";")
		if _, id, ok := strings.Cut(first, models.CookieJSESSIONID+"="); ok {
			creds.JSESSIONID = strings.TrimSpace(id)
		}
	}

	if !creds.Complete() {
		return models.Credentials{}, ErrIncomplete
	}
	return creds, nil
}

// BaseURL returns the scheme://host origin of a login URL
func BaseURL(loginURL string) (string, error) {
	u, err := url.Parse(loginURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", loginURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: missing scheme or host", loginURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// FindAPIFolders returns the immediate subdirectories of root whose name contains match
func FindAPIFolders(root, match string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	var folders []string
	for _, entry := range entries {
		if entry.IsDir() && strings.Contains(entry.Name(), match) {
			folders = append(folders, filepath.Join(root, entry.Name()))
		}
	}
	return folders, nil
}

// WriteEnvFiles writes the environment file into every API folder under root
// and returns the written paths. No matching folder yields an empty result.
func WriteEnvFiles(root string, opts Options, creds models.Credentials) ([]string, error) {
	if !creds.Complete() {
		return nil, ErrIncomplete
	}

	opts = opts.withDefaults()
	folders, err := FindAPIFolders(root, opts.FolderMatch)
	if err != nil {
		return nil, err
	}

	content := []byte(Render(creds, opts.BaseURL))
	written := make([]string, 0, len(folders))
	for _, folder := range folders {
		envDir := filepath.Join(folder, EnvironmentsDir)
		if err := os.MkdirAll(envDir, 0755); err != nil {
			return written, fmt.Errorf("failed to create %s: %w", envDir, err)
		}

		path := filepath.Join(envDir, opts.EnvFile)
		if err := os.WriteFile(path, content, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}

	return written, nil
}

func (o Options) withDefaults() Options {
	if o.FolderMatch == "" {
		o.FolderMatch = DefaultFolderMatch
	}
	if o.EnvFile == "" {
		o.EnvFile = DefaultEnvFile
	}
	return o
}
