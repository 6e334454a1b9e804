// Package cache keeps the last captured credentials so repeated runs within
// the freshness window can skip the browser login.
package cache

import (
	"errors"
	"time"

	"github.com/mazurov/brow-cli/internal/models"
)

var (
	// ErrNotFound is returned when no usable cache entry exists
	ErrNotFound = errors.New("cache entry not found")

	// ErrExpired is returned when the cache entry is older than the TTL
	ErrExpired = errors.New("cache entry expired")
)

// DefaultTTL is how long cached credentials stay valid
const DefaultTTL = 4 * time.Hour

// Store defines the interface for credential cache backends
type Store interface {
	// Load returns cached credentials if a fresh, complete entry exists
	Load() (models.Credentials, error)
	// Save records credentials with the current time
	Save(creds models.Credentials) error
	// Clear removes the entry; it succeeds when nothing is stored
	Clear() error
	// Status describes the entry without validating its content
	Status() (Status, error)
}

// Status describes the current cache entry
type Status struct {
	Backend  string        `json:"backend"`
	Location string        `json:"location"`
	Exists   bool          `json:"exists"`
	SavedAt  *time.Time    `json:"saved_at,omitempty"`
	Age      time.Duration `json:"-"`
	AgeSecs  *int64        `json:"age_seconds,omitempty"`
	Valid    bool          `json:"valid"`
}

// record fills in an existing entry saved at savedAt
func (st *Status) record(savedAt, now time.Time, ttl time.Duration) {
	age := now.Sub(savedAt)
	secs := int64(age / time.Second)

	st.Exists = true
	st.SavedAt = &savedAt
	st.Age = age
	st.AgeSecs = &secs
	st.Valid = fresh(savedAt, now, ttl)
}

// fresh reports whether an entry saved at savedAt is younger than ttl
func fresh(savedAt, now time.Time, ttl time.Duration) bool {
	return now.Sub(savedAt) < ttl
}
