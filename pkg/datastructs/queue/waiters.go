package queue

import (
	"sync"
	"sync/atomic"
)

// waiter describes one parked Dequeue call.
// wake has a single slot so a signal sent before the owner starts receiving is not lost.
type waiter struct {
	wake    chan struct{}
	next    *waiter
	aborted bool // set by abortAll; read by the owner under the item lock
}

// signal wakes the owner of w. Extra signals coalesce.
func (w *waiter) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// waiterList is the FIFO of parked consumers.
// Callers must hold the item lock; mu is always taken after it.
type waiterList struct {
	mu   sync.Mutex
	head *waiter
	tail *waiter
	size atomic.Int64
}

// park appends a fresh descriptor at the tail and returns it.
func (l *waiterList) park() *waiter {
	w := &waiter{wake: make(chan struct{}, 1)}

	l.mu.Lock()
	if l.tail == nil {
		l.head = w
	} else {
		l.tail.next = w
	}
	l.tail = w
	l.size.Add(1)
	l.mu.Unlock()

	return w
}

// front returns the waiter allowed to take the next item, or nil.
func (l *waiterList) front() *waiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.head
}

// popFront unlinks the head descriptor.
func (l *waiterList) popFront() *waiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.head
	if w == nil {
		return nil
	}
	l.head = w.next
	if l.head == nil {
		l.tail = nil
	}
	w.next = nil
	l.size.Add(-1)
	return w
}

// signalFront wakes the head waiter only. Returns false when nobody is parked.
func (l *waiterList) signalFront() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.head == nil {
		return false
	}
	l.head.signal()
	return true
}

// abortAll detaches every descriptor, marks it aborted and wakes its owner.
// Returns the number of aborted waiters.
func (l *waiterList) abortAll() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	aborted := 0
	for w := l.head; w != nil; {
		next := w.next
		w.next = nil
		w.aborted = true
		w.signal()
		w = next
		aborted++
	}
	l.head = nil
	l.tail = nil
	l.size.Store(0)
	return aborted
}

// len returns the advisory number of parked waiters.
func (l *waiterList) len() int64 {
	return l.size.Load()
}
