// Package runlog records the outcome of every extraction run for later
// triage: which site, which fallback stage, how long, and what failed.
package runlog

import (
	"context"
	"log/slog"
)

// Record is one finished extraction run.
type Record struct {
	URL        string `json:"url"`
	SiteID     string `json:"site_id"`
	Type       string `json:"type"`
	Provider   string `json:"provider"`
	Success    bool   `json:"success"`
	Method     string `json:"method"`
	DurationMs int64  `json:"duration_ms"`

	// ErrorCode and ErrorMessage are empty on success.
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Recorder receives finished run records. Implementations must not
// block the extraction path; slow sinks deliver asynchronously.
type Recorder interface {
	Record(ctx context.Context, rec *Record)
}

// SlogRecorder writes run records to structured logs.
type SlogRecorder struct{}

func (SlogRecorder) Record(_ context.Context, rec *Record) {
	if rec.Success {
		slog.Info("extraction completed",
			"site", rec.SiteID,
			"type", rec.Type,
			"provider", rec.Provider,
			"method", rec.Method,
			"duration_ms", rec.DurationMs,
		)
		return
	}
	slog.Warn("extraction failed",
		"site", rec.SiteID,
		"type", rec.Type,
		"provider", rec.Provider,
		"method", rec.Method,
		"duration_ms", rec.DurationMs,
		"error_code", rec.ErrorCode,
		"error", rec.ErrorMessage,
	)
}

// Multi fans a record out to several recorders in order.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, rec *Record) {
	for _, r := range m {
		r.Record(ctx, rec)
	}
}
