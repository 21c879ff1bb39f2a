package monitor

import "ContentPublisher/internal/domain"

// ring is a fixed-capacity FIFO of samples; pushing beyond capacity evicts the oldest.
type ring struct {
	items []domain.PerformanceSample
	head  int
	size  int
}

func newRing(capacity int) *ring {
	return &ring{items: make([]domain.PerformanceSample, capacity)}
}

func (r *ring) push(sample domain.PerformanceSample) {
	idx := (r.head + r.size) % len(r.items)
	r.items[idx] = sample
	if r.size < len(r.items) {
		r.size++
		return
	}
	r.head = (r.head + 1) % len(r.items)
}

// ordered returns a copy, oldest first.
func (r *ring) ordered() []domain.PerformanceSample {
	out := make([]domain.PerformanceSample, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.items[(r.head+i)%len(r.items)]
	}
	return out
}
