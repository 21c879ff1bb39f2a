package monitor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/infrastructure/flags"
)

var baseTime = time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeDeployer struct {
	reasons []string
	err     error
}

func (d *fakeDeployer) RollbackDeployment(_ context.Context, reason string) error {
	d.reasons = append(d.reasons, reason)
	return d.err
}

func testThresholds() map[domain.Metric]domain.Threshold {
	return map[domain.Metric]domain.Threshold{
		domain.MetricLCP:       {Warning: 2500, Critical: 4000},
		domain.MetricFID:       {Warning: 100, Critical: 300},
		domain.MetricCLS:       {Warning: 0.1, Critical: 0.25},
		domain.MetricTTFB:      {Warning: 800, Critical: 1800},
		domain.MetricSEOScore:  {Warning: 80, Critical: 60},
		domain.MetricLoadTime:  {Warning: 3000, Critical: 5000},
		domain.MetricErrorRate: {Warning: 0.01, Critical: 0.05},
	}
}

func healthySample() domain.PerformanceSample {
	return domain.PerformanceSample{
		URL:       "/",
		LCP:       1200,
		FID:       40,
		CLS:       0.02,
		TTFB:      300,
		SEOScore:  92,
		LoadTime:  1500,
		ErrorRate: 0.001,
	}
}

func slowSample() domain.PerformanceSample {
	s := healthySample()
	s.LCP = 4500
	return s
}

func lcpTrigger() domain.RollbackTrigger {
	return domain.RollbackTrigger{
		Metric:              domain.MetricLCP,
		Level:               domain.LevelCritical,
		ConsecutiveFailures: 3,
		TimeWindowMinutes:   5,
		Action:              domain.ActionDisableFeature,
		FeatureFlag:         "hero-animations",
	}
}

func newTestMonitor(clock *fakeClock, store *flags.MemoryStore, triggers ...domain.RollbackTrigger) *Monitor {
	deps := Deps{
		Thresholds: testThresholds(),
		Triggers:   triggers,
		Clock:      clock.Now,
	}
	if store != nil {
		deps.Flags = store
	}
	return New(deps)
}

func record(t *testing.T, m *Monitor, samples ...domain.PerformanceSample) {
	t.Helper()
	for _, s := range samples {
		if err := m.RecordMetrics(context.Background(), s); err != nil {
			t.Fatalf("RecordMetrics error: %v", err)
		}
	}
}

func TestBufferKeepsNewestSamples(t *testing.T) {
	t.Parallel()

	m := newTestMonitor(&fakeClock{now: baseTime}, nil)
	for i := 0; i < DefaultCapacity+1; i++ {
		s := healthySample()
		s.URL = fmt.Sprintf("/page/%d", i)
		record(t, m, s)
	}

	samples := m.Samples()
	if len(samples) != DefaultCapacity {
		t.Fatalf("expected %d samples, got %d", DefaultCapacity, len(samples))
	}
	if samples[0].URL != "/page/1" {
		t.Fatalf("oldest sample should have been evicted, first is %s", samples[0].URL)
	}
	if samples[len(samples)-1].URL != fmt.Sprintf("/page/%d", DefaultCapacity) {
		t.Fatalf("unexpected newest sample %s", samples[len(samples)-1].URL)
	}
}

func TestRecordMetricsStampsMissingTimestamp(t *testing.T) {
	t.Parallel()

	m := newTestMonitor(&fakeClock{now: baseTime}, nil)
	record(t, m, healthySample())

	if got := m.Samples()[0].Timestamp; !got.Equal(baseTime) {
		t.Fatalf("expected clock timestamp, got %v", got)
	}
}

func TestTriggerDisablesFeatureAfterConsecutiveViolations(t *testing.T) {
	t.Parallel()

	store := flags.NewMemoryStore(map[string]bool{"hero-animations": true})
	m := newTestMonitor(&fakeClock{now: baseTime}, store, lcpTrigger())

	var alerts []domain.PerformanceAlert
	m.OnAlert(func(a domain.PerformanceAlert) { alerts = append(alerts, a) })

	record(t, m, slowSample(), slowSample())
	if len(alerts) != 0 {
		t.Fatalf("expected no alert before the third violation, got %d", len(alerts))
	}
	enabled, _ := store.IsEnabled(context.Background(), "hero-animations")
	if !enabled {
		t.Fatalf("flag disabled too early")
	}

	record(t, m, slowSample())
	if len(alerts) != 1 {
		t.Fatalf("expected one alert, got %d", len(alerts))
	}
	alert := alerts[0]
	if alert.Type != domain.AlertTypeThresholdViolation || alert.Metric != domain.MetricLCP ||
		alert.Level != domain.LevelCritical || alert.ViolationCount != 3 ||
		alert.Action != domain.ActionDisableFeature || alert.FeatureFlag != "hero-animations" {
		t.Fatalf("unexpected alert: %+v", alert)
	}
	if alert.ID == "" || !alert.Timestamp.Equal(baseTime) {
		t.Fatalf("alert missing id or timestamp: %+v", alert)
	}
	enabled, _ = store.IsEnabled(context.Background(), "hero-animations")
	if enabled {
		t.Fatalf("expected hero-animations to be disabled")
	}

	record(t, m, slowSample())
	if len(alerts) != 2 || alerts[1].ViolationCount != 4 {
		t.Fatalf("expected a re-fire with count 4, got %+v", alerts)
	}
}

func TestBrokenRunDoesNotFire(t *testing.T) {
	t.Parallel()

	m := newTestMonitor(&fakeClock{now: baseTime}, nil, lcpTrigger())
	fired := 0
	m.OnAlert(func(domain.PerformanceAlert) { fired++ })

	record(t, m, slowSample(), slowSample(), healthySample(), slowSample(), slowSample())
	if fired != 0 {
		t.Fatalf("a healthy sample should break the run, got %d alerts", fired)
	}
}

func TestSamplesOutsideWindowAreIgnored(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: baseTime}
	m := newTestMonitor(clock, nil, lcpTrigger())
	fired := 0
	m.OnAlert(func(domain.PerformanceAlert) { fired++ })

	old := slowSample()
	old.Timestamp = baseTime.Add(-10 * time.Minute)
	record(t, m, old, old, slowSample(), slowSample())
	if fired != 0 {
		t.Fatalf("stale samples must not count, got %d alerts", fired)
	}

	clock.Advance(time.Minute)
	record(t, m, slowSample())
	if fired != 1 {
		t.Fatalf("expected one alert once three fresh violations exist, got %d", fired)
	}
}

func TestSEOScoreViolatesWhenLow(t *testing.T) {
	t.Parallel()

	trigger := domain.RollbackTrigger{
		Metric:              domain.MetricSEOScore,
		Level:               domain.LevelCritical,
		ConsecutiveFailures: 1,
		TimeWindowMinutes:   30,
		Action:              domain.ActionAlertOnly,
	}
	m := newTestMonitor(&fakeClock{now: baseTime}, nil, trigger)
	var alerts []domain.PerformanceAlert
	m.OnAlert(func(a domain.PerformanceAlert) { alerts = append(alerts, a) })

	high := healthySample()
	high.SEOScore = 99
	record(t, m, high)
	if len(alerts) != 0 {
		t.Fatalf("a high SEO score is not a violation")
	}

	low := healthySample()
	low.SEOScore = 55
	record(t, m, low)
	if len(alerts) != 1 || alerts[0].Action != domain.ActionAlertOnly {
		t.Fatalf("expected one alert_only alert, got %+v", alerts)
	}
}

func TestFireOnceLatchesUntilRunBreaks(t *testing.T) {
	t.Parallel()

	trigger := lcpTrigger()
	trigger.FireOnce = true
	m := newTestMonitor(&fakeClock{now: baseTime}, nil, trigger)
	fired := 0
	m.OnAlert(func(domain.PerformanceAlert) { fired++ })

	record(t, m, slowSample(), slowSample(), slowSample(), slowSample(), slowSample())
	if fired != 1 {
		t.Fatalf("expected a single alert while latched, got %d", fired)
	}

	record(t, m, healthySample(), slowSample(), slowSample(), slowSample())
	if fired != 2 {
		t.Fatalf("expected the trigger to re-arm after the run broke, got %d", fired)
	}
}

func TestRollbackUsesDeployerAndJoinsErrors(t *testing.T) {
	t.Parallel()

	deployer := &fakeDeployer{err: errors.New("pipeline locked")}
	m := New(Deps{
		Thresholds: testThresholds(),
		Triggers: []domain.RollbackTrigger{{
			Metric:              domain.MetricErrorRate,
			Level:               domain.LevelCritical,
			ConsecutiveFailures: 1,
			TimeWindowMinutes:   10,
			Action:              domain.ActionRollbackDeployment,
		}},
		Deployer: deployer,
		Clock:    (&fakeClock{now: baseTime}).Now,
	})
	delivered := 0
	m.OnAlert(func(domain.PerformanceAlert) { delivered++ })

	s := healthySample()
	s.ErrorRate = 0.2
	err := m.RecordMetrics(context.Background(), s)
	if err == nil || !errors.Is(err, deployer.err) {
		t.Fatalf("expected deployer error, got %v", err)
	}
	if len(deployer.reasons) != 1 {
		t.Fatalf("expected one rollback request, got %d", len(deployer.reasons))
	}
	if delivered != 1 {
		t.Fatalf("alert should be delivered even when the action fails")
	}
}

func TestOffAlertStopsDelivery(t *testing.T) {
	t.Parallel()

	trigger := lcpTrigger()
	trigger.ConsecutiveFailures = 1
	m := newTestMonitor(&fakeClock{now: baseTime}, nil, trigger)

	var order []string
	first := m.OnAlert(func(domain.PerformanceAlert) { order = append(order, "first") })
	m.OnAlert(func(domain.PerformanceAlert) { order = append(order, "second") })

	record(t, m, slowSample())
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected delivery order: %v", order)
	}

	if !m.OffAlert(first) {
		t.Fatalf("expected subscription to be removed")
	}
	if m.OffAlert(first) {
		t.Fatalf("second removal should report false")
	}

	order = nil
	record(t, m, slowSample())
	if len(order) != 1 || order[0] != "second" {
		t.Fatalf("unexpected delivery after OffAlert: %v", order)
	}
}

func TestCallbackMayReenterMonitor(t *testing.T) {
	t.Parallel()

	trigger := lcpTrigger()
	trigger.ConsecutiveFailures = 1
	m := newTestMonitor(&fakeClock{now: baseTime}, nil, trigger)

	seen := 0
	m.OnAlert(func(domain.PerformanceAlert) {
		seen = len(m.Samples())
		_ = m.PerformanceSummary(5)
	})

	done := make(chan error, 1)
	go func() {
		done <- m.RecordMetrics(context.Background(), slowSample())
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RecordMetrics error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("callback deadlocked")
	}
	if seen != 1 {
		t.Fatalf("expected callback to observe one sample, got %d", seen)
	}
}

func TestPerformanceSummary(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: baseTime}
	m := newTestMonitor(clock, nil)

	stale := healthySample()
	stale.Timestamp = baseTime.Add(-time.Hour)
	stale.LCP = 99999
	record(t, m, stale)

	for i := 1; i <= 20; i++ {
		s := healthySample()
		s.LCP = float64(i * 100)
		record(t, m, s)
	}
	bad := healthySample()
	bad.LCP = 3000
	bad.SEOScore = 50
	bad.URL = "/slow"
	record(t, m, bad)

	summary := m.PerformanceSummary(5)
	if summary.SampleCount != 21 {
		t.Fatalf("expected 21 samples in window, got %d", summary.SampleCount)
	}
	wantMean := (21000.0 + 3000.0) / 21.0
	if math.Abs(summary.Averages[domain.MetricLCP]-wantMean) > 1e-9 {
		t.Fatalf("unexpected LCP mean %v, want %v", summary.Averages[domain.MetricLCP], wantMean)
	}
	// floor(21*0.95) = 19 -> second largest of 100..2000,3000
	if summary.P95[domain.MetricLCP] != 2000 {
		t.Fatalf("unexpected LCP p95 %v", summary.P95[domain.MetricLCP])
	}
	if len(summary.Averages) != len(domain.AllMetrics) || len(summary.P95) != len(domain.AllMetrics) {
		t.Fatalf("expected stats for every metric")
	}

	// LCP 3000 breaches warning only; seoScore 50 breaches warning and critical.
	if len(summary.Violations) != 3 {
		t.Fatalf("expected 3 violations, got %+v", summary.Violations)
	}
	for _, v := range summary.Violations {
		if v.URL != "/slow" {
			t.Fatalf("unexpected violating url %s", v.URL)
		}
	}
}

func TestPerformanceSummaryEmptyWindow(t *testing.T) {
	t.Parallel()

	m := newTestMonitor(&fakeClock{now: baseTime}, nil)
	summary := m.PerformanceSummary(5)
	if summary.SampleCount != 0 || len(summary.Averages) != 0 || summary.Violations == nil {
		t.Fatalf("unexpected empty summary: %+v", summary)
	}
}
