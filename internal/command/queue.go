package command

import (
	"context"
)

// DefaultQueueSize is used when NewQueue is given a non-positive capacity.
const DefaultQueueSize = 256

// Queue is a bounded channel between the listener goroutines (producers)
// and the simulation goroutine (single consumer).
type Queue struct {
	ch chan Command
}

// NewQueue creates a queue holding up to size pending commands.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Command, size)}
}

// Push enqueues cmd, blocking until there is room or ctx is done.
func (q *Queue) Push(ctx context.Context, cmd Command) error {
	select {
	case q.ch <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPush enqueues cmd if there is room and reports whether it did.
func (q *Queue) TryPush(cmd Command) bool {
	select {
	case q.ch <- cmd:
		return true
	default:
		return false
	}
}

// Drain removes and returns every pending command without blocking.
func (q *Queue) Drain() []Command {
	var out []Command
	for {
		select {
		case cmd := <-q.ch:
			out = append(out, cmd)
		default:
			return out
		}
	}
}

// Len returns the number of pending commands.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return cap(q.ch)
}
