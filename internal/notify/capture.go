package notify

import (
	"context"
	"sync"
)

type captureKey struct{}

type capture struct {
	mu   sync.Mutex
	list []Notification
}

// Capture returns a context under which every notification a Hub delivers is
// also collected, and a function listing what was collected so far. Captures
// are scoped to the context, so two requests sharing a correlation id never
// see each other's notifications.
func Capture(ctx context.Context) (context.Context, func() []Notification) {
	c := &capture{}
	return context.WithValue(ctx, captureKey{}, c), func() []Notification {
		c.mu.Lock()
		defer c.mu.Unlock()
		out := make([]Notification, len(c.list))
		copy(out, c.list)
		return out
	}
}

func captured(ctx context.Context, n Notification) {
	c, ok := ctx.Value(captureKey{}).(*capture)
	if !ok {
		return
	}
	c.mu.Lock()
	c.list = append(c.list, n)
	c.mu.Unlock()
}
