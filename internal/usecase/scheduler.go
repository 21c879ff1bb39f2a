package usecase

import (
	"context"
	"log/slog"
	"time"

	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/ports"
)

// SummarySource produces rolling performance summaries.
type SummarySource interface {
	PerformanceSummary(windowMinutes int) domain.PerformanceSummary
}

// PerformanceReporter wires the ticker driver with periodic summary logging.
type PerformanceReporter struct {
	driver        ports.Scheduler
	source        SummarySource
	windowMinutes int
	log           *slog.Logger
	last          chan domain.PerformanceSummary
}

// NewPerformanceReporter returns a helper to start/stop the recurring summary job.
func NewPerformanceReporter(driver ports.Scheduler, source SummarySource, windowMinutes int, log *slog.Logger) *PerformanceReporter {
	return &PerformanceReporter{
		driver:        driver,
		source:        source,
		windowMinutes: windowMinutes,
		log:           log,
		last:          make(chan domain.PerformanceSummary, 1),
	}
}

// Start registers the summary job with the provided scheduler.
func (r *PerformanceReporter) Start(ctx context.Context) error {
	if r.driver == nil || r.source == nil {
		return nil
	}

	job := func(trigger time.Time) {
		r.report(trigger)
	}

	return r.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (r *PerformanceReporter) Stop(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}

	return r.driver.Stop(ctx)
}

// Last returns the most recent summary, if one was produced since the previous call.
func (r *PerformanceReporter) Last() (domain.PerformanceSummary, bool) {
	select {
	case s := <-r.last:
		return s, true
	default:
		return domain.PerformanceSummary{}, false
	}
}

func (r *PerformanceReporter) report(trigger time.Time) {
	summary := r.source.PerformanceSummary(r.windowMinutes)

	select {
	case <-r.last:
	default:
	}
	r.last <- summary

	if r.log == nil {
		return
	}
	args := []any{
		"at", trigger,
		"window_minutes", summary.WindowMinutes,
		"samples", summary.SampleCount,
		"violations", len(summary.Violations),
	}
	for _, metric := range domain.AllMetrics {
		if avg, ok := summary.Averages[metric]; ok {
			args = append(args, string(metric)+"_avg", avg, string(metric)+"_p95", summary.P95[metric])
		}
	}
	if len(summary.Violations) > 0 {
		r.log.Warn("performance summary", args...)
		return
	}
	r.log.Info("performance summary", args...)
}
