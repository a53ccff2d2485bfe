package theme

// Tracker smooths a stream of values over a short rolling history so that a
// single outlier frame does not change the result.
type Tracker[T comparable] struct {
	capacity  int
	threshold float64
	history   []T
}

// NewTracker returns a tracker keeping the most recent capacity values. A
// value is accepted once its share of the history reaches threshold.
func NewTracker[T comparable](capacity int, threshold float64) *Tracker[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Tracker[T]{
		capacity:  capacity,
		threshold: threshold,
		history:   make([]T, 0, capacity+1),
	}
}

// Add appends v, evicting the oldest value once capacity is exceeded.
func (t *Tracker[T]) Add(v T) {
	t.history = append(t.history, v)
	if len(t.history) > t.capacity {
		copy(t.history, t.history[1:])
		t.history = t.history[:t.capacity]
	}
}

// Consensus returns the first value, in order of first appearance, whose
// share of the history is at least the threshold. With no such value the
// current value is returned unchanged.
func (t *Tracker[T]) Consensus(current T) T {
	if len(t.history) == 0 {
		return current
	}

	var order []T
	counts := make(map[T]int)
	for _, v := range t.history {
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}

	total := float64(len(t.history))
	for _, v := range order {
		if float64(counts[v])/total >= t.threshold {
			return v
		}
	}

	return current
}

// Ready is true once the history has been filled to capacity.
func (t *Tracker[T]) Ready() bool {
	return len(t.history) >= t.capacity
}

// Reset clears the history.
func (t *Tracker[T]) Reset() {
	t.history = t.history[:0]
}

// Len returns the number of values in the history.
func (t *Tracker[T]) Len() int {
	return len(t.history)
}
