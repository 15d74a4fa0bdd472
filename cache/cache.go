// Package cache holds recent extraction outcomes so repeated requests
// for the same page do not burn provider credits.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/scraperlab/scraperlab/models"
)

// Cache is a bounded TTL cache of extraction outcomes, safe for
// concurrent use. Only successful outcomes belong here; failures must
// stay retryable and are never stored by the service layer.
type Cache struct {
	lru *expirable.LRU[string, *models.Outcome]
}

// New creates a Cache holding up to maxEntries outcomes for ttl each.
func New(maxEntries int, ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, *models.Outcome](maxEntries, nil, ttl),
	}
}

// Key derives the cache key from the URL and extraction type. The same
// page scraped as detail and as search are distinct entries.
func Key(url string, typ models.ExtractionType) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte("|"))
	h.Write([]byte(typ))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached outcome for key, if present and unexpired.
func (c *Cache) Get(key string) (*models.Outcome, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

// Set stores an outcome under key.
func (c *Cache) Set(key string, outcome *models.Outcome) {
	if c == nil {
		return
	}
	c.lru.Add(key, outcome)
}

// Len reports the current number of live entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// Purge drops every entry.
func (c *Cache) Purge() {
	if c != nil {
		c.lru.Purge()
	}
}
