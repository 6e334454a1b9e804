// Package ide writes the session credentials into the editor's workspace
// settings so Java test runs pick them up as environment variables.
package ide

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/mazurov/brow-cli/internal/models"
)

// ErrIncomplete is returned when credentials lack JSESSIONID or token
var ErrIncomplete = errors.New("required tokens missing for settings file")

// DefaultSettingsPath is the workspace settings file, relative to the project root
var DefaultSettingsPath = filepath.Join(".vscode", "settings.json")

const (
	testConfigKey = "java.test.config"
	envKey        = "env"

	EnvSignavioID = "X_SIGNAVIO_ID"
	EnvCookie     = "SIGNAVIO_COOKIE"
)

// UpdateSettings merges the credential env vars into the settings file at path.
// Unrelated keys are preserved; an unreadable file is replaced.
func UpdateSettings(path string, creds models.Credentials) error {
	if !creds.Complete() {
		return ErrIncomplete
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	settings := readSettings(path)
	testConfig := childObject(settings, testConfigKey)
	env := childObject(testConfig, envKey)
	env[EnvSignavioID] = creds.SignavioID()
	env[EnvCookie] = creds.CookieHeader()

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(settings); err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// readSettings loads the settings object, tolerating comments and trailing commas
func readSettings(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]any{}
	}

	// Numbers stay json.Number so large integers are written back unchanged
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.UseNumber()

	var settings map[string]any
	if err := decoder.Decode(&settings); err != nil || settings == nil {
		return map[string]any{}
	}
	return settings
}

// childObject returns parent[key] as an object, replacing any non-object value
func childObject(parent map[string]any, key string) map[string]any {
	if child, ok := parent[key].(map[string]any); ok {
		return child
	}
	child := map[string]any{}
	parent[key] = child
	return child
}
