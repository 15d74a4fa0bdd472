// Package scraper orchestrates one extraction end to end: resolve the
// site, pick the provider, run the strategy, and record what happened.
package scraper

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/scraperlab/scraperlab/cache"
	"github.com/scraperlab/scraperlab/domains"
	"github.com/scraperlab/scraperlab/match"
	"github.com/scraperlab/scraperlab/models"
	"github.com/scraperlab/scraperlab/provider"
	"github.com/scraperlab/scraperlab/receipt"
	"github.com/scraperlab/scraperlab/runlog"
	"github.com/scraperlab/scraperlab/strategy"
)

// Service wires the registry, providers, and per-site configuration
// into the extraction flow the API and CLI share.
type Service struct {
	registry  *strategy.Registry
	providers *provider.Registry
	domains   domains.Store
	cache     *cache.Cache
	recorder  runlog.Recorder
	metrics   *Metrics
	scorer    *match.Scorer

	// defaultProviderID serves sites whose config names no provider.
	defaultProviderID string

	// limited holds one rate-limited provider wrapper per site, so the
	// token bucket persists across requests.
	limitedMu sync.Mutex
	limited   map[string]provider.Provider
}

// Options configures a Service. Registry, Providers and DefaultProvider
// are required; everything else degrades gracefully when absent.
type Options struct {
	Registry        *strategy.Registry
	Providers       *provider.Registry
	Domains         domains.Store
	Cache           *cache.Cache
	Recorder        runlog.Recorder
	Metrics         *Metrics
	Scorer          *match.Scorer
	DefaultProvider string
}

// New builds a Service from options.
func New(opts Options) *Service {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = runlog.SlogRecorder{}
	}
	scorer := opts.Scorer
	if scorer == nil {
		scorer = match.NewScorer(nil)
	}
	return &Service{
		registry:          opts.Registry,
		providers:         opts.Providers,
		domains:           opts.Domains,
		cache:             opts.Cache,
		recorder:          recorder,
		metrics:           opts.Metrics,
		scorer:            scorer,
		defaultProviderID: opts.DefaultProvider,
	}
}

// Extract runs one extraction. The response always comes back non-nil;
// every failure mode is carried inside it as a value.
func (s *Service) Extract(ctx context.Context, req *models.ExtractRequest) *models.ExtractResponse {
	started := time.Now()
	req.Defaults()

	if req.Type != models.TypeDefault && !models.IsValidType(req.Type) {
		return s.reject(req, models.ErrCodeInvalidInput,
			"unknown extraction type "+string(req.Type), started)
	}

	targetURL := req.URL
	if req.ReceiptLine != "" {
		sanitized := receipt.Sanitize(req.ReceiptLine)
		if problems := receipt.Validate(sanitized); len(problems) > 0 {
			return s.reject(req, models.ErrCodeInvalidInput,
				"receipt line: "+strings.Join(problems, "; "), started)
		}
		targetURL = receipt.BuildSearchURL(req.URL, sanitized)
	}

	siteID, err := domains.SiteIDFromURL(targetURL)
	if err != nil {
		return s.reject(req, models.ErrCodeInvalidInput, err.Error(), started)
	}

	key := cache.Key(targetURL, req.Type)
	cacheStatus := ""
	if s.cache != nil && !req.NoCache {
		if cached, ok := s.cache.Get(key); ok {
			s.metrics.IncCache(true)
			return &models.ExtractResponse{
				Outcome:     *cached,
				SiteID:      siteID,
				Type:        string(req.Type),
				DurationMs:  time.Since(started).Milliseconds(),
				CacheStatus: "hit",
			}
		}
		s.metrics.IncCache(false)
		cacheStatus = "miss"
	}

	factory, err := s.registry.Resolve(siteID, req.Type)
	if err != nil {
		return s.finish(req, siteID, "", failureFromError(err), started, "")
	}

	cfg := s.domainConfig(siteID)
	prov, provErr := s.provider(cfg)
	if provErr != nil {
		return s.finish(req, siteID, "", &models.Outcome{
			Success: false,
			Method:  "provider-select",
			Error:   &models.ErrorDetail{Code: models.ErrCodeInternal, Message: provErr.Error()},
		}, started, "")
	}
	providerID := prov.Name()
	if cfg != nil && cfg.RateLimitPerSecond > 0 {
		prov = s.limitedProvider(siteID, prov, cfg.RateLimitPerSecond)
	}

	strat := factory(strategy.Deps{Provider: prov, Scorer: s.scorer})
	outcome := strat.Extract(ctx, targetURL, cfg)

	if outcome.Success && s.cache != nil && !req.NoCache {
		s.cache.Set(key, outcome)
	}
	return s.finish(req, siteID, providerID, outcome, started, cacheStatus)
}

// ExtractBatch runs the items sequentially, in order. A failed item
// never stops the rest; its failure travels in its own result slot.
func (s *Service) ExtractBatch(ctx context.Context, req *models.BatchExtractRequest) *models.BatchExtractResponse {
	resp := &models.BatchExtractResponse{
		Results: make([]*models.ExtractResponse, 0, len(req.URLs)),
	}
	for _, u := range req.URLs {
		item := s.Extract(ctx, &models.ExtractRequest{URL: u, Type: req.Type})
		resp.Results = append(resp.Results, item)
		resp.Summary.Total++
		if item.Success {
			resp.Summary.Successful++
		} else {
			resp.Summary.Failed++
		}
	}
	return resp
}

// Metrics exposes the service's collector bundle for the metrics
// endpoint; nil when metrics are disabled.
func (s *Service) Metrics() *Metrics { return s.metrics }

func (s *Service) domainConfig(siteID string) *models.DomainConfig {
	if s.domains == nil {
		return nil
	}
	cfg, err := s.domains.Get(siteID)
	if err != nil {
		// Sites work without stored config; the strategy falls back to
		// its hardcoded chain and the default provider.
		slog.Debug("no domain config", "site", siteID)
		return nil
	}
	return cfg
}

// limitedProvider returns the site's rate-limited wrapper, created on
// first use so one token bucket serves every request for the site.
func (s *Service) limitedProvider(siteID string, p provider.Provider, perSecond float64) provider.Provider {
	s.limitedMu.Lock()
	defer s.limitedMu.Unlock()
	if s.limited == nil {
		s.limited = make(map[string]provider.Provider)
	}
	if lp, ok := s.limited[siteID]; ok {
		return lp
	}
	lp := provider.WithRateLimit(p, perSecond)
	s.limited[siteID] = lp
	return lp
}

func (s *Service) provider(cfg *models.DomainConfig) (provider.Provider, error) {
	id := s.defaultProviderID
	if cfg != nil && cfg.ProviderID != "" {
		id = cfg.ProviderID
	}
	return s.providers.Get(id)
}

func (s *Service) finish(req *models.ExtractRequest, siteID, providerID string, outcome *models.Outcome, started time.Time, cacheStatus string) *models.ExtractResponse {
	duration := time.Since(started)
	s.metrics.ObserveRun(siteID, string(req.Type), outcome.Success, outcome.Method, duration)

	rec := &runlog.Record{
		URL:        req.URL,
		SiteID:     siteID,
		Type:       string(req.Type),
		Provider:   providerID,
		Success:    outcome.Success,
		Method:     outcome.Method,
		DurationMs: duration.Milliseconds(),
	}
	if outcome.Error != nil {
		rec.ErrorCode = outcome.Error.Code
		rec.ErrorMessage = outcome.Error.Message
		s.metrics.IncError(outcome.Error.Code)
	}
	s.recorder.Record(context.Background(), rec)

	return &models.ExtractResponse{
		Outcome:     *outcome,
		SiteID:      siteID,
		Provider:    providerID,
		Type:        string(req.Type),
		DurationMs:  duration.Milliseconds(),
		CacheStatus: cacheStatus,
	}
}

func (s *Service) reject(req *models.ExtractRequest, code, message string, started time.Time) *models.ExtractResponse {
	outcome := &models.Outcome{
		Success: false,
		Method:  "validation",
		Error:   &models.ErrorDetail{Code: code, Message: message},
	}
	return s.finish(req, "", "", outcome, started, "")
}

// failureFromError converts a typed ScrapeError (or any error) into a
// failure outcome.
func failureFromError(err error) *models.Outcome {
	detail := &models.ErrorDetail{Code: models.ErrCodeInternal, Message: err.Error()}
	var scrapeErr *models.ScrapeError
	if errors.As(err, &scrapeErr) {
		detail = scrapeErr.ToDetail()
	}
	return &models.Outcome{
		Success: false,
		Method:  "registry-resolve",
		Error:   detail,
	}
}
