// Package provider defines the page-fetch boundary of the extraction
// engine and its interchangeable anti-bot backend implementations.
package provider

import (
	"context"
	"fmt"

	"github.com/scraperlab/scraperlab/models"
)

// Provider is the interface every page-fetch backend implements.
//
// hints is sparse: a nil field means "do not send this option", never
// "use a sensible default". Only the calling strategy decides to set a
// hint, and only with a concrete reason (a site that needs JS rendering,
// a geo-locked catalog). Implementations must not invent values for
// absent hints.
type Provider interface {
	// Name returns the provider identifier (e.g. "scraperapi", "oxylabs").
	Name() string

	// Fetch retrieves the raw page markup for url.
	Fetch(ctx context.Context, url string, hints *models.ProviderOptions) (string, error)
}

// FetchError is the typed failure returned by providers. HTTPStatus is 0
// when the failure happened before any response arrived.
type FetchError struct {
	Provider   string
	HTTPStatus int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Registry maps provider IDs to constructed Provider instances.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a registry over the given providers, keyed by Name().
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get resolves a provider by ID.
func (r *Registry) Get(id string) (Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("unknown fetch provider %q", id)
	}
	return p, nil
}

// IDs lists the registered provider identifiers.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}
