package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"github.com/mazurov/brow-cli/internal/models"
)

// KeyringService is the OS keychain service name
const KeyringService = "brow-cli"

// keyringEntry is the YAML payload stored as the keychain secret
type keyringEntry struct {
	JSESSIONID string    `yaml:"jsessionid"`
	Token      string    `yaml:"token"`
	SavedAt    time.Time `yaml:"saved_at"`
}

// KeyringStore caches credentials in the OS keychain (Keychain, Credential Manager, Secret Service)
type KeyringStore struct {
	account string
	ttl     time.Duration
	now     func() time.Time
	logger  logrus.FieldLogger
}

// NewKeyringStore creates a keychain-backed cache for account
func NewKeyringStore(account string, ttl time.Duration, logger logrus.FieldLogger) *KeyringStore {
	return &KeyringStore{
		account: account,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// Load returns cached credentials if the keychain holds a fresh entry
func (ks *KeyringStore) Load() (models.Credentials, error) {
	entry, err := ks.read()
	if err != nil {
		return models.Credentials{}, err
	}
	if !fresh(entry.SavedAt, ks.now(), ks.ttl) {
		ks.logger.WithField("saved_at", entry.SavedAt).Debug("Cache expired")
		return models.Credentials{}, ErrExpired
	}

	creds := models.Credentials{JSESSIONID: entry.JSESSIONID, Token: entry.Token}
	if !creds.Complete() {
		return models.Credentials{}, ErrNotFound
	}
	return creds, nil
}

// Save stores credentials in the keychain
func (ks *KeyringStore) Save(creds models.Credentials) error {
	data, err := yaml.Marshal(&keyringEntry{
		JSESSIONID: creds.JSESSIONID,
		Token:      creds.Token,
		SavedAt:    ks.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := keyring.Set(KeyringService, ks.account, string(data)); err != nil {
		return fmt.Errorf("failed to save cache entry to keychain: %w", err)
	}

	ks.logger.WithField("account", ks.account).Debug("Cache saved")
	return nil
}

// Clear removes the keychain entry
func (ks *KeyringStore) Clear() error {
	if err := keyring.Delete(KeyringService, ks.account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete cache entry from keychain: %w", err)
	}
	return nil
}

// Status reports whether the keychain entry exists and how old it is
func (ks *KeyringStore) Status() (Status, error) {
	st := Status{Backend: BackendKeyring, Location: KeyringService + "/" + ks.account}

	entry, err := ks.read()
	if errors.Is(err, ErrNotFound) {
		return st, nil
	}
	if err != nil {
		return st, err
	}

	st.record(entry.SavedAt, ks.now(), ks.ttl)
	return st, nil
}

func (ks *KeyringStore) read() (*keyringEntry, error) {
	secret, err := keyring.Get(KeyringService, ks.account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache entry from keychain: %w", err)
	}

	var entry keyringEntry
	if err := yaml.Unmarshal([]byte(secret), &entry); err != nil {
		ks.logger.WithError(err).Debug("Cache entry unparsable")
		return nil, ErrNotFound
	}
	return &entry, nil
}
