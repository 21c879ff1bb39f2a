package monitor

import (
	"math"
	"sort"
	"time"

	"ContentPublisher/internal/domain"
)

var summaryLevels = []domain.ThresholdLevel{domain.LevelWarning, domain.LevelCritical}

// PerformanceSummary aggregates the samples recorded in the last windowMinutes.
func (m *Monitor) PerformanceSummary(windowMinutes int) domain.PerformanceSummary {
	m.mu.Lock()
	samples := within(m.buffer.ordered(), m.now(), time.Duration(windowMinutes)*time.Minute)
	thresholds := m.thresholds
	m.mu.Unlock()

	return summarize(thresholds, samples, windowMinutes)
}

func summarize(thresholds map[domain.Metric]domain.Threshold, samples []domain.PerformanceSample, windowMinutes int) domain.PerformanceSummary {
	summary := domain.PerformanceSummary{
		WindowMinutes: windowMinutes,
		SampleCount:   len(samples),
		Averages:      map[domain.Metric]float64{},
		P95:           map[domain.Metric]float64{},
		Violations:    []domain.Violation{},
	}
	if len(samples) == 0 {
		return summary
	}

	for _, metric := range domain.AllMetrics {
		values := make([]float64, 0, len(samples))
		for _, s := range samples {
			v, _ := s.Value(metric)
			values = append(values, v)
		}
		summary.Averages[metric] = mean(values)
		summary.P95[metric] = percentile95(values)
	}

	for _, s := range samples {
		for _, metric := range domain.AllMetrics {
			for _, level := range summaryLevels {
				bad, value, bound := violates(thresholds, s, metric, level)
				if !bad {
					continue
				}
				summary.Violations = append(summary.Violations, domain.Violation{
					Metric:    metric,
					Level:     level,
					Value:     value,
					Threshold: bound,
					URL:       s.URL,
					Timestamp: s.Timestamp,
				})
			}
		}
	}

	return summary
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// percentile95 uses the nearest-rank index floor(n*0.95) over ascending values.
func percentile95(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(math.Floor(float64(len(sorted)) * 0.95))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
