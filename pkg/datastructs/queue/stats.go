package queue

import "sync/atomic"

// Stats is a point-in-time snapshot of the queue counters.
// Counters are reset by Init.
//
// SpuriousWakeups counts wakes after which a parked Dequeue was still not
// eligible and parked again. Signals only go to the head waiter, so this grows
// only on stale or coalesced wakes and normally reads 0; a zero says nothing
// about the health of the wake protocol.
type Stats struct {
	Size     int64  `json:"size"`
	Waiting  int64  `json:"waiting"`
	Visited  uint64 `json:"visited"`
	Enqueued uint64 `json:"enqueued"`

	FastDequeues    uint64 `json:"fast_dequeues"`
	ParkedDequeues  uint64 `json:"parked_dequeues"`
	Relays          uint64 `json:"relays"`
	SpuriousWakeups uint64 `json:"spurious_wakeups"`
	Aborted         uint64 `json:"aborted"`

	TryMissEmpty     uint64 `json:"try_miss_empty"`
	TryMissWaiters   uint64 `json:"try_miss_waiters"`
	TryMissContended uint64 `json:"try_miss_contended"`
	TryMissClosed    uint64 `json:"try_miss_closed"`
}

// counters holds the diagnostic counters that are not owned by a list.
type counters struct {
	enqueued atomic.Uint64

	fastDequeues    atomic.Uint64
	parkedDequeues  atomic.Uint64
	relays          atomic.Uint64
	spuriousWakeups atomic.Uint64
	aborted         atomic.Uint64

	tryMissEmpty     atomic.Uint64
	tryMissWaiters   atomic.Uint64
	tryMissContended atomic.Uint64
	tryMissClosed    atomic.Uint64
}

func (c *counters) reset() {
	c.enqueued.Store(0)
	c.fastDequeues.Store(0)
	c.parkedDequeues.Store(0)
	c.relays.Store(0)
	c.spuriousWakeups.Store(0)
	c.aborted.Store(0)
	c.tryMissEmpty.Store(0)
	c.tryMissWaiters.Store(0)
	c.tryMissContended.Store(0)
	c.tryMissClosed.Store(0)
}
