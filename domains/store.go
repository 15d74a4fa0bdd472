// Package domains is the read-only boundary to the external per-site
// configuration store.
package domains

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/scraperlab/scraperlab/models"
)

// Store resolves the frozen DomainConfig for a site. The core only reads;
// ownership and persistence of the configuration live elsewhere.
type Store interface {
	Get(siteID string) (*models.DomainConfig, error)
}

// StaticStore is an in-memory Store seeded once at startup (from the
// config file in the default wiring). Safe for concurrent reads.
type StaticStore struct {
	mu      sync.RWMutex
	configs map[string]*models.DomainConfig
}

// NewStaticStore builds a store from the given configs, keyed by SiteID.
func NewStaticStore(configs []models.DomainConfig) *StaticStore {
	s := &StaticStore{configs: make(map[string]*models.DomainConfig, len(configs))}
	for i := range configs {
		cfg := configs[i]
		s.configs[strings.ToLower(cfg.SiteID)] = &cfg
	}
	return s
}

// Get returns the config for siteID. The returned value must be treated
// as frozen for the duration of one extraction call.
func (s *StaticStore) Get(siteID string) (*models.DomainConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[strings.ToLower(siteID)]
	if !ok {
		return nil, fmt.Errorf("no domain config for site %q", siteID)
	}
	return cfg, nil
}

// SiteIDFromURL extracts the site identifier (host without the www
// prefix) used as the registry and config key.
func SiteIDFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}
	return strings.TrimPrefix(host, "www."), nil
}
