package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"HelpsResolver/internal/domain"
	"HelpsResolver/internal/ports"
)

// Reporters fans a failure out to every configured sink.
type Reporters []ports.ErrorReporter

var _ ports.ErrorReporter = Reporters(nil)

// ReportResourceError calls every sink, even after one of them fails.
func (r Reporters) ReportResourceError(ctx context.Context, ferr *domain.FetchError) error {
	var errs []error
	for i, reporter := range r {
		if reporter == nil {
			continue
		}
		if err := reporter.ReportResourceError(ctx, ferr); err != nil {
			errs = append(errs, fmt.Errorf("reporter %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Callback adapts the sinks to the session's failure callback. Sink errors
// are logged, never returned to the session.
func (r Reporters) Callback(ctx context.Context, log *slog.Logger) func(ferr *domain.FetchError) {
	return func(ferr *domain.FetchError) {
		if err := r.ReportResourceError(ctx, ferr); err != nil && log != nil {
			log.Error("report resource error", "link", ferr.Link, "error", err)
		}
	}
}

// LogReporter writes failures to a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

var _ ports.ErrorReporter = (*LogReporter)(nil)

func NewLogReporter(log *slog.Logger) *LogReporter {
	return &LogReporter{logger: log}
}

func (l *LogReporter) ReportResourceError(_ context.Context, ferr *domain.FetchError) error {
	if l.logger == nil || ferr == nil {
		return nil
	}
	l.logger.Error("resource error",
		"kind", string(ferr.Kind),
		"link", ferr.Link,
		"html", ferr.LinkHTML,
		"urls", ferr.AttemptedURLs,
		"http_status", ferr.HTTPStatus,
		"error", ferr,
	)
	return nil
}
