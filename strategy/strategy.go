// Package strategy holds the per-site extraction routines and the
// registry that routes a (site, extraction-type) pair to one of them.
//
// Every strategy runs an ordered fallback chain over fetched markup, from
// the most structured source (embedded product schema) down to a raw
// regex scan, and records which stage produced the result. Failures are
// returned as values inside the Outcome, never as errors, so batch loops
// can treat all items uniformly.
package strategy

import (
	"context"
	"log/slog"

	"github.com/scraperlab/scraperlab/match"
	"github.com/scraperlab/scraperlab/models"
	"github.com/scraperlab/scraperlab/provider"
)

// Strategy is one site-and-type extraction routine.
type Strategy interface {
	// Extract fetches url through the configured provider and runs the
	// site's fallback chain. The returned Outcome is never nil; fetch and
	// extraction failures are carried inside it.
	Extract(ctx context.Context, url string, cfg *models.DomainConfig) *models.Outcome
}

// Deps carries the collaborators a strategy factory may need. Provider is
// always set; Scorer only matters to searchSpecific strategies.
type Deps struct {
	Provider provider.Provider
	Scorer   *match.Scorer
}

// Factory builds a Strategy instance bound to its collaborators.
type Factory func(deps Deps) Strategy

// site is the shared base embedded by every site strategy.
type site struct {
	// name is the marketplace label used in logs and records.
	name string

	// currency is the ISO code reported in extracted products.
	currency string

	deps Deps
}

// fetch pulls the page markup through the provider. defaults are the
// strategy's own fetch hints; options from the stored domain config
// overlay them, so operators can always override what a strategy
// assumes. Everything is cloned so neither side leaks mutations.
func (s *site) fetch(ctx context.Context, url string, cfg *models.DomainConfig, defaults *models.ProviderOptions) (string, error) {
	var stored *models.ProviderOptions
	if cfg != nil {
		stored = cfg.ProviderOptions
	}
	var hints *models.ProviderOptions
	switch {
	case defaults == nil && stored == nil:
	case defaults == nil:
		hints = stored.Clone()
	case stored == nil:
		hints = defaults.Clone()
	default:
		hints = mergeHints(defaults, stored)
	}
	return s.deps.Provider.Fetch(ctx, url, hints)
}

// mergeHints overlays extra onto base, field by field. Only fields the
// strategy explicitly set are copied; absence stays absence.
func mergeHints(base, extra *models.ProviderOptions) *models.ProviderOptions {
	if base == nil {
		return extra.Clone()
	}
	out := base.Clone()
	if extra.Render != nil {
		out.Render = extra.Render
	}
	if extra.ResidentialProxy != nil {
		out.ResidentialProxy = extra.ResidentialProxy
	}
	if extra.DeviceType != nil {
		out.DeviceType = extra.DeviceType
	}
	if extra.CountryCode != nil {
		out.CountryCode = extra.CountryCode
	}
	if extra.WaitMs != nil {
		out.WaitMs = extra.WaitMs
	}
	if extra.WaitForSelector != nil {
		out.WaitForSelector = extra.WaitForSelector
	}
	for k, v := range extra.Headers {
		if out.Headers == nil {
			out.Headers = make(map[string]string)
		}
		out.Headers[k] = v
	}
	return out
}

// fetchFailure wraps a provider error into a failure outcome, tagged with
// the provider that raised it.
func (s *site) fetchFailure(err error, method string) *models.Outcome {
	slog.Warn("fetch failed", "marketplace", s.name, "provider", s.deps.Provider.Name(), "error", err)
	return failure(models.ErrCodeFetchFailed, err.Error(), method)
}

// detailSuccess builds a success outcome around one product record.
func (s *site) detailSuccess(r *stageResult, url, method string) *models.Outcome {
	current := r.currentPrice()
	original := r.originalPrice()
	if original == 0 {
		original = current
	}
	return &models.Outcome{
		Success: true,
		Product: &models.ProductRecord{
			Title:         r.title,
			CurrentPrice:  current,
			OriginalPrice: original,
			Currency:      s.currency,
			Availability:  r.availability,
			Image:         r.image,
			SourceURL:     url,
		},
		Method: method,
	}
}

// detailExtract is the shared detail pipeline: fetch, parse, run the
// site's fallback chain, fill title/image fallbacks, build the outcome.
func (s *site) detailExtract(ctx context.Context, url string, cfg *models.DomainConfig, defaults *models.ProviderOptions, stages []stage) *models.Outcome {
	html, err := s.fetch(ctx, url, cfg, defaults)
	if err != nil {
		return s.fetchFailure(err, stages[0].method)
	}
	pg, err := newPage(url, html)
	if err != nil {
		return failure(models.ErrCodeInternal, "parse html: "+err.Error(), stages[0].method)
	}
	r, method := runChain(pg, stages)
	if r == nil {
		return s.noPriceFailure(pg, method)
	}
	fillFallbacks(pg, r)
	return s.detailSuccess(r, url, method)
}

func failure(code, message, method string) *models.Outcome {
	return &models.Outcome{
		Success: false,
		Method:  method,
		Error:   &models.ErrorDetail{Code: code, Message: message},
	}
}

// Pointer helpers for building strategy-local fetch hints.
func boolHint(v bool) *bool       { return &v }
func stringHint(v string) *string { return &v }
func intHint(v int) *int          { return &v }

// noPriceFailure distinguishes a blocked page from a silently changed
// one: challenge markup gets its own code so triage can tell them apart.
func (s *site) noPriceFailure(pg *page, method string) *models.Outcome {
	if pg != nil && pg.hasChallenge() {
		slog.Warn("challenge page detected", "marketplace", s.name, "url", pg.url)
		return failure(models.ErrCodeChallenge, s.name+" served an anti-automation challenge", method)
	}
	return failure(models.ErrCodeNoPrice, "no price extracted", method)
}
