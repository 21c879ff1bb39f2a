package domain

import "time"

// Metric names a numeric field of a PerformanceSample.
type Metric string

const (
	MetricLCP       Metric = "lcp"
	MetricFID       Metric = "fid"
	MetricCLS       Metric = "cls"
	MetricTTFB      Metric = "ttfb"
	MetricSEOScore  Metric = "seoScore"
	MetricLoadTime  Metric = "loadTime"
	MetricErrorRate Metric = "errorRate"
)

// AllMetrics lists the numeric sample fields in reporting order.
var AllMetrics = []Metric{
	MetricLCP,
	MetricFID,
	MetricCLS,
	MetricTTFB,
	MetricSEOScore,
	MetricLoadTime,
	MetricErrorRate,
}

// LowerIsWorse reports whether a smaller value of the metric is the bad direction.
func (m Metric) LowerIsWorse() bool {
	return m == MetricSEOScore
}

// PerformanceSample is one telemetry observation for a page.
type PerformanceSample struct {
	URL       string    `json:"url" yaml:"url"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	LCP       float64   `json:"lcp" yaml:"lcp"`
	FID       float64   `json:"fid" yaml:"fid"`
	CLS       float64   `json:"cls" yaml:"cls"`
	TTFB      float64   `json:"ttfb" yaml:"ttfb"`
	SEOScore  float64   `json:"seoScore" yaml:"seoScore"`
	LoadTime  float64   `json:"loadTime" yaml:"loadTime"`
	ErrorRate float64   `json:"errorRate" yaml:"errorRate"`
	UserAgent string    `json:"userAgent" yaml:"userAgent"`
}

// Value returns the sample's reading for metric.
func (s PerformanceSample) Value(metric Metric) (float64, bool) {
	switch metric {
	case MetricLCP:
		return s.LCP, true
	case MetricFID:
		return s.FID, true
	case MetricCLS:
		return s.CLS, true
	case MetricTTFB:
		return s.TTFB, true
	case MetricSEOScore:
		return s.SEOScore, true
	case MetricLoadTime:
		return s.LoadTime, true
	case MetricErrorRate:
		return s.ErrorRate, true
	default:
		return 0, false
	}
}

// ThresholdLevel is the severity a threshold belongs to.
type ThresholdLevel string

const (
	LevelWarning  ThresholdLevel = "warning"
	LevelCritical ThresholdLevel = "critical"
)

// Threshold holds the warning and critical bounds of one metric.
type Threshold struct {
	Warning  float64 `yaml:"warning" json:"warning"`
	Critical float64 `yaml:"critical" json:"critical"`
}

// Bound returns the limit for level.
func (t Threshold) Bound(level ThresholdLevel) float64 {
	if level == LevelCritical {
		return t.Critical
	}
	return t.Warning
}

// TriggerAction is what a rollback trigger does once satisfied.
type TriggerAction string

const (
	ActionDisableFeature     TriggerAction = "disable_feature"
	ActionRollbackDeployment TriggerAction = "rollback_deployment"
	ActionAlertOnly          TriggerAction = "alert_only"
)

// RollbackTrigger fires when enough consecutive samples violate a threshold.
type RollbackTrigger struct {
	Metric              Metric         `yaml:"metric" json:"metric"`
	Level               ThresholdLevel `yaml:"level" json:"level"`
	ConsecutiveFailures int            `yaml:"consecutiveFailures" json:"consecutiveFailures"`
	TimeWindowMinutes   int            `yaml:"timeWindowMinutes" json:"timeWindowMinutes"`
	Action              TriggerAction  `yaml:"action" json:"action"`
	FeatureFlag         string         `yaml:"featureFlag,omitempty" json:"featureFlag,omitempty"`
	// FireOnce suppresses re-firing until a non-violating sample breaks the run.
	FireOnce bool `yaml:"fireOnce,omitempty" json:"fireOnce,omitempty"`
}

// TimeWindow converts the configured minutes into a duration.
func (t RollbackTrigger) TimeWindow() time.Duration {
	return time.Duration(t.TimeWindowMinutes) * time.Minute
}

// AlertTypeThresholdViolation tags alerts raised by rollback triggers.
const AlertTypeThresholdViolation = "threshold_violation"

// PerformanceAlert is broadcast to subscribers whenever a trigger acts.
type PerformanceAlert struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	Metric         Metric         `json:"metric"`
	Level          ThresholdLevel `json:"threshold"`
	ViolationCount int            `json:"violationCount"`
	Action         TriggerAction  `json:"action"`
	FeatureFlag    string         `json:"featureFlag,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Violation is one sample breaching one threshold level.
type Violation struct {
	Metric    Metric         `json:"metric"`
	Level     ThresholdLevel `json:"level"`
	Value     float64        `json:"value"`
	Threshold float64        `json:"threshold"`
	URL       string         `json:"url"`
	Timestamp time.Time      `json:"timestamp"`
}

// PerformanceSummary aggregates samples inside a time window.
type PerformanceSummary struct {
	WindowMinutes int                `json:"windowMinutes"`
	SampleCount   int                `json:"sampleCount"`
	Averages      map[Metric]float64 `json:"averages"`
	P95           map[Metric]float64 `json:"p95"`
	Violations    []Violation        `json:"violations"`
}
