package queue

import (
	"sync"
	"sync/atomic"
)

// itemNode represents a single node in the item list.
type itemNode[T any] struct {
	value T
	next  *itemNode[T]
}

// itemList is a singly linked FIFO of caller values.
// It is NOT thread-safe: the owning FairQueue guards it with its item lock.
// size and visited are atomics so they can be read without that lock.
type itemList[T any] struct {
	head *itemNode[T]
	tail *itemNode[T]

	size    atomic.Int64  // current number of nodes
	visited atomic.Uint64 // total nodes ever popped since the last resetCounters

	nodes sync.Pool
}

// newNode takes a node from the pool, allocating on a miss.
func (l *itemList[T]) newNode(v T) *itemNode[T] {
	n, _ := l.nodes.Get().(*itemNode[T])
	if n == nil {
		n = &itemNode[T]{}
	}
	n.value = v
	n.next = nil
	return n
}

// freeNode clears the node and returns it to the pool.
func (l *itemList[T]) freeNode(n *itemNode[T]) {
	var zero T
	n.value = zero
	n.next = nil
	l.nodes.Put(n)
}

// pushBack adds v at the tail.
func (l *itemList[T]) pushBack(v T) {
	n := l.newNode(v)
	if l.tail == nil {
		l.head = n
	} else {
		l.tail.next = n
	}
	l.tail = n
	l.size.Add(1)
}

// popFront removes the head and hands its value to the caller.
func (l *itemList[T]) popFront() (T, bool) {
	front := l.head
	if front == nil {
		var zero T
		return zero, false
	}

	l.head = front.next
	if l.head == nil {
		l.tail = nil
	}

	v := front.value
	l.freeNode(front)
	l.size.Add(-1)
	l.visited.Add(1)
	return v, true
}

// len returns the advisory node count.
func (l *itemList[T]) len() int64 {
	return l.size.Load()
}

// isEmpty reports whether the list holds no nodes.
func (l *itemList[T]) isEmpty() bool {
	return l.head == nil
}

// release drops every node without handing out the values.
// visited is left untouched. Returns the number of dropped nodes.
func (l *itemList[T]) release() int {
	dropped := 0
	for current := l.head; current != nil; {
		next := current.next
		l.freeNode(current)
		current = next
		dropped++
	}
	l.head = nil
	l.tail = nil
	l.size.Store(0)
	return dropped
}

// resetCounters zeroes visited. size follows the nodes and is reset by release.
func (l *itemList[T]) resetCounters() {
	l.visited.Store(0)
}
