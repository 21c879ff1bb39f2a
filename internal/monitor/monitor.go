package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/ports"
)

// DefaultCapacity is the number of samples kept when Deps.Capacity is not set.
const DefaultCapacity = 1000

// Deps wires the collaborators of a Monitor.
type Deps struct {
	Thresholds map[domain.Metric]domain.Threshold
	Triggers   []domain.RollbackTrigger
	Capacity   int
	Flags      ports.FlagStore
	Deployer   ports.Deployer
	Logger     *slog.Logger
	Clock      func() time.Time
}

// AlertSubscription identifies a callback registered with OnAlert.
type AlertSubscription uint64

type subscriber struct {
	id AlertSubscription
	fn func(domain.PerformanceAlert)
}

// Monitor buffers performance samples and fires rollback triggers on sustained violations.
type Monitor struct {
	mu          sync.Mutex
	buffer      *ring
	thresholds  map[domain.Metric]domain.Threshold
	triggers    []domain.RollbackTrigger
	latched     []bool
	subscribers []subscriber
	nextSubID   AlertSubscription

	flags    ports.FlagStore
	deployer ports.Deployer
	log      *slog.Logger
	clock    func() time.Time
}

// New constructs a monitor. Thresholds and triggers are copied.
func New(deps Deps) *Monitor {
	capacity := deps.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	thresholds := make(map[domain.Metric]domain.Threshold, len(deps.Thresholds))
	for metric, t := range deps.Thresholds {
		thresholds[metric] = t
	}
	triggers := append([]domain.RollbackTrigger(nil), deps.Triggers...)

	return &Monitor{
		buffer:     newRing(capacity),
		thresholds: thresholds,
		triggers:   triggers,
		latched:    make([]bool, len(triggers)),
		flags:      deps.Flags,
		deployer:   deps.Deployer,
		log:        deps.Logger,
		clock:      clock,
	}
}

type firing struct {
	trigger domain.RollbackTrigger
	alert   domain.PerformanceAlert
}

// RecordMetrics stores the sample and runs every trigger it satisfies.
// Errors from trigger actions are joined; alerts are still delivered.
func (m *Monitor) RecordMetrics(ctx context.Context, sample domain.PerformanceSample) error {
	m.mu.Lock()
	now := m.now()
	if sample.Timestamp.IsZero() {
		sample.Timestamp = now
	}
	m.buffer.push(sample)
	fired := m.evaluate(now)
	subs := append([]subscriber(nil), m.subscribers...)
	m.mu.Unlock()

	var errs []error
	for _, f := range fired {
		if err := m.act(ctx, f.trigger); err != nil {
			errs = append(errs, err)
		}
		for _, sub := range subs {
			sub.fn(f.alert)
		}
	}
	return errors.Join(errs...)
}

// evaluate must be called with m.mu held.
func (m *Monitor) evaluate(now time.Time) []firing {
	samples := m.buffer.ordered()

	var fired []firing
	for i, trigger := range m.triggers {
		count := consecutiveViolations(m.thresholds, samples, trigger, now)
		if count == 0 {
			m.latched[i] = false
		}
		if count < trigger.ConsecutiveFailures || count == 0 {
			continue
		}
		if trigger.FireOnce && m.latched[i] {
			continue
		}
		m.latched[i] = true

		fired = append(fired, firing{
			trigger: trigger,
			alert: domain.PerformanceAlert{
				ID:             uuid.NewString(),
				Type:           domain.AlertTypeThresholdViolation,
				Metric:         trigger.Metric,
				Level:          trigger.Level,
				ViolationCount: count,
				Action:         trigger.Action,
				FeatureFlag:    trigger.FeatureFlag,
				Timestamp:      now,
			},
		})
	}
	return fired
}

func (m *Monitor) act(ctx context.Context, trigger domain.RollbackTrigger) error {
	switch trigger.Action {
	case domain.ActionDisableFeature:
		m.warn("disabling feature flag", "flag", trigger.FeatureFlag, "metric", trigger.Metric)
		if m.flags == nil || trigger.FeatureFlag == "" {
			return nil
		}
		if err := m.flags.UpdateFlag(ctx, trigger.FeatureFlag, ports.FlagUpdate{Enabled: false}); err != nil {
			return fmt.Errorf("disable feature %s: %w", trigger.FeatureFlag, err)
		}
	case domain.ActionRollbackDeployment:
		m.warn("rollback requested", "metric", trigger.Metric, "level", trigger.Level)
		if m.deployer == nil {
			return nil
		}
		reason := fmt.Sprintf("%s exceeded %s threshold", trigger.Metric, trigger.Level)
		if err := m.deployer.RollbackDeployment(ctx, reason); err != nil {
			return fmt.Errorf("rollback deployment: %w", err)
		}
	case domain.ActionAlertOnly:
		m.warn("performance alert", "metric", trigger.Metric, "level", trigger.Level)
	}
	return nil
}

// OnAlert registers fn to receive every alert, in registration order.
func (m *Monitor) OnAlert(fn func(domain.PerformanceAlert)) AlertSubscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSubID++
	m.subscribers = append(m.subscribers, subscriber{id: m.nextSubID, fn: fn})
	return m.nextSubID
}

// OffAlert removes a subscription. It reports whether the subscription existed.
func (m *Monitor) OffAlert(sub AlertSubscription) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.subscribers {
		if s.id == sub {
			m.subscribers = append(m.subscribers[:i:i], m.subscribers[i+1:]...)
			return true
		}
	}
	return false
}

// Samples returns the buffered samples, oldest first.
func (m *Monitor) Samples() []domain.PerformanceSample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffer.ordered()
}

func (m *Monitor) now() time.Time {
	return m.clock()
}

func (m *Monitor) warn(msg string, args ...any) {
	if m.log == nil {
		return
	}
	m.log.Warn(msg, args...)
}
