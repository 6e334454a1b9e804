package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mazurov/brow-cli/internal/bruno"
	"github.com/mazurov/brow-cli/internal/models"
)

const (
	// DefaultDir is the cache directory relative to the working directory
	DefaultDir = ".cache/cli"

	dataFile      = bruno.DefaultEnvFile
	timestampFile = ".cache-timestamp"

	// local ISO-8601 without zone, as written by older versions
	legacyTimestampLayout = "2006-01-02T15:04:05.999999999"
)

// FileStore caches credentials as a Bruno file plus a timestamp file
type FileStore struct {
	dir     string
	baseURL string
	ttl     time.Duration
	now     func() time.Time
	logger  logrus.FieldLogger
}

// NewFileStore creates a file-backed cache in dir
func NewFileStore(dir, baseURL string, ttl time.Duration, logger logrus.FieldLogger) *FileStore {
	return &FileStore{
		dir:     dir,
		baseURL: baseURL,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// Paths returns the data and timestamp file paths
func (fs *FileStore) Paths() (data, timestamp string) {
	return filepath.Join(fs.dir, dataFile), filepath.Join(fs.dir, timestampFile)
}

// Load returns cached credentials when both files exist and the entry is fresh
func (fs *FileStore) Load() (models.Credentials, error) {
	dataPath, _ := fs.Paths()

	savedAt, err := fs.readTimestamp()
	if err != nil {
		return models.Credentials{}, err
	}
	if !fresh(savedAt, fs.now(), fs.ttl) {
		fs.logger.WithField("saved_at", savedAt).Debug("Cache expired")
		return models.Credentials{}, ErrExpired
	}

	content, err := os.ReadFile(dataPath)
	if err != nil {
		fs.logger.WithError(err).Debug("Cache data unreadable")
		return models.Credentials{}, ErrNotFound
	}

	creds, err := bruno.Parse(string(content))
	if err != nil {
		fs.logger.WithError(err).Debug("Cache data unparsable")
		return models.Credentials{}, ErrNotFound
	}

	return creds, nil
}

// Save writes the data file, then the timestamp
func (fs *FileStore) Save(creds models.Credentials) error {
	if err := os.MkdirAll(fs.dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	dataPath, timestampPath := fs.Paths()
	if err := writeFileAtomic(dataPath, []byte(bruno.Render(creds, fs.baseURL))); err != nil {
		return fmt.Errorf("failed to write cache data: %w", err)
	}

	stamp := fs.now().Format(time.RFC3339Nano)
	if err := writeFileAtomic(timestampPath, []byte(stamp)); err != nil {
		return fmt.Errorf("failed to write cache timestamp: %w", err)
	}

	fs.logger.WithField("dir", fs.dir).Debug("Cache saved")
	return nil
}

// Clear removes both cache files
func (fs *FileStore) Clear() error {
	dataPath, timestampPath := fs.Paths()
	for _, path := range []string{timestampPath, dataPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
	}
	return nil
}

// Status reports whether the entry exists and how old it is
func (fs *FileStore) Status() (Status, error) {
	st := Status{Backend: BackendFile, Location: fs.dir}

	savedAt, err := fs.readTimestamp()
	if err == ErrNotFound {
		return st, nil
	}
	if err != nil {
		return st, err
	}

	st.record(savedAt, fs.now(), fs.ttl)
	return st, nil
}

// readTimestamp returns ErrNotFound unless both files exist and the stamp parses
func (fs *FileStore) readTimestamp() (time.Time, error) {
	dataPath, timestampPath := fs.Paths()

	if _, err := os.Stat(dataPath); err != nil {
		return time.Time{}, ErrNotFound
	}
	raw, err := os.ReadFile(timestampPath)
	if err != nil {
		return time.Time{}, ErrNotFound
	}

	savedAt, err := parseTimestamp(strings.TrimSpace(string(raw)))
	if err != nil {
		fs.logger.WithError(err).Debug("Cache timestamp unparsable")
		return time.Time{}, ErrNotFound
	}
	return savedAt, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(legacyTimestampLayout, s, time.Local)
}

// writeFileAtomic writes data to path via a temp file and rename
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tempFile = nil

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
