package monitor

import (
	"sort"
	"time"

	"ContentPublisher/internal/domain"
)

// violates reports whether sample breaches the metric's bound at level.
// seoScore is the only lower-is-worse metric.
func violates(thresholds map[domain.Metric]domain.Threshold, sample domain.PerformanceSample, metric domain.Metric, level domain.ThresholdLevel) (bool, float64, float64) {
	threshold, ok := thresholds[metric]
	if !ok {
		return false, 0, 0
	}
	value, ok := sample.Value(metric)
	if !ok {
		return false, 0, 0
	}

	bound := threshold.Bound(level)
	if metric.LowerIsWorse() {
		return value < bound, value, bound
	}
	return value > bound, value, bound
}

// within keeps samples no older than window relative to now.
func within(samples []domain.PerformanceSample, now time.Time, window time.Duration) []domain.PerformanceSample {
	cutoff := now.Add(-window)
	out := make([]domain.PerformanceSample, 0, len(samples))
	for _, s := range samples {
		if !s.Timestamp.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

// consecutiveViolations counts the unbroken run of violating samples, newest first.
// samples must be ordered oldest first.
func consecutiveViolations(thresholds map[domain.Metric]domain.Threshold, samples []domain.PerformanceSample, trigger domain.RollbackTrigger, now time.Time) int {
	window := within(samples, now, trigger.TimeWindow())

	newestFirst := make([]domain.PerformanceSample, len(window))
	for i, s := range window {
		newestFirst[len(window)-1-i] = s
	}
	sort.SliceStable(newestFirst, func(i, j int) bool {
		return newestFirst[i].Timestamp.After(newestFirst[j].Timestamp)
	})

	count := 0
	for _, s := range newestFirst {
		bad, _, _ := violates(thresholds, s, trigger.Metric, trigger.Level)
		if !bad {
			break
		}
		count++
	}
	return count
}
