package queue

import "github.com/pkg/errors"

// ErrClosed is returned by operations on a queue that is not active:
// never initialized, or torn down by Close. Dequeue calls parked at the
// time of Close also return it.
var ErrClosed = errors.New("queue: closed")
