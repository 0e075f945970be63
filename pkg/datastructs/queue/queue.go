package queue

// Queue is a generic interface for unbounded FIFO queues with blocking consumption.
type Queue[T any] interface {
	// Enqueue adds an item at the tail. It never blocks.
	// Returns ErrClosed if the queue is not active.
	Enqueue(item T) error

	// Dequeue removes and returns the head item, blocking until one is
	// available and it is the caller's turn.
	Dequeue() (T, error)

	// TryDequeue removes and returns the head item without blocking.
	// Returns (zero, false) if nothing can be taken right now.
	TryDequeue() (T, bool)

	// Size returns the number of queued items.
	Size() int64
}

// Observer exposes the queue counters without giving access to the items.
type Observer interface {
	Size() int64
	Waiting() int64
	Visited() uint64
	Stats() Stats
	IsActive() bool
}
