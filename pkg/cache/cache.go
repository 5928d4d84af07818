// Package cache persists Bluelink sessions across process restarts so that short-lived CLI
// invocations do not perform a fresh login (and burn a rate-limited identity call) every time.
package cache

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/session"
)

// Entry is one persisted session together with the time it was stored. Entries are keyed by
// account identity; two brands on the same username never collide.
type Entry struct {
	Session *session.Session `json:"session"`
	SavedAt time.Time        `json:"saved_at"`
}

// SessionCache holds persisted sessions for up to MaxEntries accounts, evicting the
// least-recently-saved entry when full. Set MaxEntries to zero for an unbounded cache.
type SessionCache struct {
	MaxEntries int
	Accounts   map[string]Entry `json:"accounts"`
	lock       sync.Mutex
}

func New(maxEntries int) *SessionCache {
	return &SessionCache{
		MaxEntries: maxEntries,
		Accounts:   make(map[string]Entry),
	}
}

// Key derives the cache key for an account identity.
func Key(username string, brand bluelink.Brand, region bluelink.Region) string {
	return username + "|" + string(brand) + "|" + string(region)
}

// Import reads a SessionCache previously written with Export.
func Import(r io.Reader) (*SessionCache, error) {
	var cache SessionCache
	if err := json.NewDecoder(r).Decode(&cache); err != nil {
		return nil, err
	}
	if cache.Accounts == nil {
		cache.Accounts = make(map[string]Entry)
	}
	return &cache, nil
}

// ImportFromFile reads a SessionCache from disk.
func ImportFromFile(filename string) (*SessionCache, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Import(file)
}

// Export writes a serialized SessionCache to w.
func (c *SessionCache) Export(w io.Writer) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return json.NewEncoder(w).Encode(c)
}

// ExportToFile writes a SessionCache to disk. Sessions contain bearer tokens, so the file is
// created owner-readable only.
func (c *SessionCache) ExportToFile(filename string) error {
	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()
	return c.Export(file)
}

// Update stores the session for an account key.
func (c *SessionCache) Update(key string, s *session.Session) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.Accounts[key] = Entry{Session: s, SavedAt: time.Now()}
	if c.MaxEntries > 0 && len(c.Accounts) > c.MaxEntries {
		oldestKey := key
		oldestSavedAt := time.Now()
		for k, entry := range c.Accounts {
			if entry.SavedAt.Before(oldestSavedAt) {
				oldestKey = k
				oldestSavedAt = entry.SavedAt
			}
		}
		delete(c.Accounts, oldestKey)
	}
}

// Get returns the persisted session for an account key. Expired sessions are returned as-is;
// the account layer refreshes them on first use.
func (c *SessionCache) Get(key string) (*session.Session, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	entry, ok := c.Accounts[key]
	if !ok || entry.Session == nil {
		return nil, false
	}
	return entry.Session, true
}
