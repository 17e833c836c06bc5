package lib

import "sync"

// Queue is a FIFO shared between the sequencer goroutine, which pushes,
// and the update loop, which pops.
type Queue[T any] struct {
	mu   sync.Mutex
	data []T
}

func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.data = append(q.data, item)
}

func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var none T
	if len(q.data) == 0 {
		return none, false
	}
	item := q.data[0]
	q.data[0] = none
	q.data = q.data[1:]
	return item, true
}

// Drain removes and returns everything queued so far.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.data
	q.data = nil
	return items
}

func (q *Queue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

func (q *Queue[T]) IsEmpty() bool { return q.Size() == 0 }
