package notify

import (
	"sync/atomic"

	"cabin_boarding/internal/models"
)

const sinkBuffer = 1024

// eventQueue is the non-blocking buffer shared by the broker publishers.
type eventQueue struct {
	ch      chan models.Event
	dropped atomic.Int64
}

func newEventQueue(size int) *eventQueue {
	return &eventQueue{ch: make(chan models.Event, size)}
}

func (q *eventQueue) offer(ev models.Event) {
	select {
	case q.ch <- ev:
	default:
		q.dropped.Add(1)
	}
}

func (q *eventQueue) Dropped() int64 {
	return q.dropped.Load()
}
