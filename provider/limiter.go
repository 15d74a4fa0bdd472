package provider

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/scraperlab/scraperlab/models"
)

// limited wraps a Provider with a token bucket. Rate limiting is a
// collaborator around the fetch call, never logic inside a strategy; the
// per-site configured rate is advisory until someone wraps with this.
type limited struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit returns p wrapped so Fetch blocks until the bucket allows
// another call. perSecond <= 0 returns p unchanged.
func WithRateLimit(p Provider, perSecond float64) Provider {
	if perSecond <= 0 {
		return p
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &limited{inner: p, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *limited) Name() string { return l.inner.Name() }

func (l *limited) Fetch(ctx context.Context, url string, hints *models.ProviderOptions) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", &FetchError{Provider: l.inner.Name(), Message: "rate limit wait aborted", Err: err}
	}
	return l.inner.Fetch(ctx, url, hints)
}
