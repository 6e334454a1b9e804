package cache

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Backend names
const (
	BackendFile    = "file"
	BackendKeyring = "keyring"
)

// Options configures a cache backend
type Options struct {
	Backend string
	Dir     string        // file backend directory
	Key     string        // keyring account, usually the login origin
	BaseURL string        // url var written into the cached Bruno file
	TTL     time.Duration // freshness window
}

// New creates a cache backend:
//   - file -> FileStore under Dir
//   - keyring -> KeyringStore keyed by Key
func New(opts Options, logger logrus.FieldLogger) (Store, error) {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.Dir, opts.BaseURL, opts.TTL, logger), nil
	case BackendKeyring:
		return NewKeyringStore(opts.Key, opts.TTL, logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", opts.Backend)
	}
}
