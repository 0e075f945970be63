package queue

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var _ Queue[int] = (*FairQueue[int])(nil)
var _ Observer = (*FairQueue[int])(nil)

// FairQueue is an unbounded, concurrency-safe FIFO with fair blocking consumption.
//
// Blocked Dequeue calls are served strictly in the order they started waiting:
// each parked call owns a private wake handle and only the longest-waiting one is
// signaled, which then relays to the next when more items are ready. TryDequeue
// never overtakes a parked consumer.
//
// Two locks are used: mu guards the item list and the lifecycle state, and the
// waiter list has its own lock that is always taken after mu.
//
// The zero value is not active; call Init (or construct via New) before use.
type FairQueue[T any] struct {
	mu      sync.Mutex
	items   itemList[T]
	waiters waiterList

	active atomic.Bool // written under mu
	stats  counters
	log    *zap.Logger
}

// New creates an active queue.
func New[T any](opts ...Option) *FairQueue[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	q := &FairQueue[T]{log: o.logger}
	q.Init()
	return q
}

func (q *FairQueue[T]) logger() *zap.Logger {
	if q.log == nil {
		return zap.NewNop()
	}
	return q.log
}

// Init activates the queue with empty lists and zeroed counters.
// Calling Init on an active queue is a no-op.
func (q *FairQueue[T]) Init() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.active.Load() {
		return
	}

	q.items.release()
	q.items.resetCounters()
	q.waiters.abortAll()
	q.stats.reset()
	q.active.Store(true)

	q.logger().Debug("queue initialized")
}

// Close tears the queue down. Queued values are dropped without being handed
// to anyone, and every parked Dequeue call is woken and returns ErrClosed.
// Calling Close on an inactive queue is a no-op. Visited and the other
// counters keep their values until the next Init.
func (q *FairQueue[T]) Close() {
	q.mu.Lock()
	if !q.active.Load() {
		q.mu.Unlock()
		return
	}

	q.active.Store(false)
	aborted := q.waiters.abortAll()
	dropped := q.items.release()
	q.stats.aborted.Add(uint64(aborted))
	q.mu.Unlock()

	q.logger().Info("queue closed",
		zap.Int("dropped_items", dropped),
		zap.Int("aborted_waiters", aborted),
		zap.Uint64("visited", q.items.visited.Load()),
	)
}

// IsActive reports whether the queue accepts operations.
func (q *FairQueue[T]) IsActive() bool {
	return q.active.Load()
}

// Enqueue appends item at the tail and wakes the longest-waiting consumer, if any.
// It never blocks. Returns ErrClosed if the queue is not active.
func (q *FairQueue[T]) Enqueue(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.active.Load() {
		return ErrClosed
	}

	q.items.pushBack(item)
	q.stats.enqueued.Add(1)
	q.waiters.signalFront()
	return nil
}

// Dequeue removes and returns the head item.
//
// If the queue is empty, or other consumers are already waiting, the call parks
// behind them and returns once an item is available and it is at the head of the
// waiter list. There is no timeout; only Close releases a parked call early, in
// which case ErrClosed is returned.
func (q *FairQueue[T]) Dequeue() (T, error) {
	var zero T

	q.mu.Lock()
	if !q.active.Load() {
		q.mu.Unlock()
		return zero, ErrClosed
	}

	if !q.items.isEmpty() && q.waiters.len() == 0 {
		v, _ := q.items.popFront()
		q.mu.Unlock()
		q.stats.fastDequeues.Add(1)
		return v, nil
	}

	w := q.waiters.park()
	wakes := 0
	for !q.eligible(w) {
		q.mu.Unlock()
		<-w.wake
		q.mu.Lock()

		if w.aborted {
			q.mu.Unlock()
			return zero, ErrClosed
		}
		wakes++
	}
	if wakes > 1 {
		q.stats.spuriousWakeups.Add(uint64(wakes - 1))
	}

	q.waiters.popFront()
	v, _ := q.items.popFront()

	// Chain to the next waiter only when there is something left for it.
	if !q.items.isEmpty() && q.waiters.signalFront() {
		q.stats.relays.Add(1)
	}
	q.mu.Unlock()

	q.stats.parkedDequeues.Add(1)
	return v, nil
}

// eligible reports whether w may take the next item. Caller holds mu.
func (q *FairQueue[T]) eligible(w *waiter) bool {
	return !q.items.isEmpty() && q.waiters.front() == w
}

// TryDequeue removes and returns the head item without blocking.
//
// It returns (zero, false) when the queue is empty, when any consumer is parked
// in Dequeue (parked consumers always go first, however many items are queued),
// when the item lock is busy, or when the queue is not active.
func (q *FairQueue[T]) TryDequeue() (T, bool) {
	var zero T

	if miss := q.refusal(); miss != nil {
		miss.Add(1)
		return zero, false
	}

	if !q.mu.TryLock() {
		q.stats.tryMissContended.Add(1)
		return zero, false
	}
	defer q.mu.Unlock()

	if miss := q.refusal(); miss != nil {
		miss.Add(1)
		return zero, false
	}

	v, _ := q.items.popFront()
	return v, true
}

// refusal returns the counter for the reason TryDequeue must refuse, or nil.
func (q *FairQueue[T]) refusal() *atomic.Uint64 {
	switch {
	case !q.active.Load():
		return &q.stats.tryMissClosed
	case q.items.len() == 0:
		return &q.stats.tryMissEmpty
	case q.waiters.len() > 0:
		return &q.stats.tryMissWaiters
	}
	return nil
}

// Size returns the number of queued items.
func (q *FairQueue[T]) Size() int64 { return q.items.len() }

// Waiting returns the number of Dequeue calls currently parked.
func (q *FairQueue[T]) Waiting() int64 { return q.waiters.len() }

// Visited returns the number of items removed since the last Init.
func (q *FairQueue[T]) Visited() uint64 { return q.items.visited.Load() }

// Stats returns a snapshot of all counters. Fields are read independently,
// so the snapshot is only consistent when the queue is quiescent.
func (q *FairQueue[T]) Stats() Stats {
	return Stats{
		Size:     q.Size(),
		Waiting:  q.Waiting(),
		Visited:  q.Visited(),
		Enqueued: q.stats.enqueued.Load(),

		FastDequeues:    q.stats.fastDequeues.Load(),
		ParkedDequeues:  q.stats.parkedDequeues.Load(),
		Relays:          q.stats.relays.Load(),
		SpuriousWakeups: q.stats.spuriousWakeups.Load(),
		Aborted:         q.stats.aborted.Load(),

		TryMissEmpty:     q.stats.tryMissEmpty.Load(),
		TryMissWaiters:   q.stats.tryMissWaiters.Load(),
		TryMissContended: q.stats.tryMissContended.Load(),
		TryMissClosed:    q.stats.tryMissClosed.Load(),
	}
}
