package notify

import (
	"context"
	"sync"
)

const DefaultHistory = 50

// Recorder keeps the most recent notifications in a fixed-size ring.
type Recorder struct {
	mu   sync.Mutex
	buf  []Notification
	next int
	full bool
}

func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = DefaultHistory
	}
	return &Recorder{buf: make([]Notification, size)}
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf[r.next] = n
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

// Recent returns the retained notifications, oldest first.
func (r *Recorder) Recent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		out := make([]Notification, r.next)
		copy(out, r.buf[:r.next])
		return out
	}
	out := make([]Notification, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	out = append(out, r.buf[:r.next]...)
	return out
}

func (r *Recorder) ByCorrelationID(id string) []Notification {
	out := []Notification{}
	for _, n := range r.Recent() {
		if n.CorrelationID == id {
			out = append(out, n)
		}
	}
	return out
}
