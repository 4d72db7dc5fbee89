// Package notify delivers view preference notifications. A Collector attached
// to the request context gathers them for the response; otherwise they are
// written to the logger.
package notify

import (
	"context"
	"sync"

	"github.com/cynergists/go-viewprefs/pkg/types"
)

type collectorKey struct{}

// Collector gathers notifications raised while handling one request.
type Collector struct {
	mu            sync.Mutex
	notifications []types.Notification
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Notify implements types.Notifier.
func (c *Collector) Notify(_ context.Context, n types.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = append(c.notifications, n)
}

// Notifications returns a copy of the collected notifications in order.
func (c *Collector) Notifications() []types.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

// WithCollector attaches c to ctx.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, collectorKey{}, c)
}

// CollectorFromContext returns the collector attached to ctx, if any.
func CollectorFromContext(ctx context.Context) (*Collector, bool) {
	if ctx == nil {
		return nil, false
	}
	c, ok := ctx.Value(collectorKey{}).(*Collector)
	return c, ok && c != nil
}

// ContextNotifier routes notifications to the context collector when present
// and to Fallback otherwise.
type ContextNotifier struct {
	Fallback types.Notifier
}

// Notify implements types.Notifier.
func (n ContextNotifier) Notify(ctx context.Context, notification types.Notification) {
	if c, ok := CollectorFromContext(ctx); ok {
		c.Notify(ctx, notification)
		return
	}
	if n.Fallback != nil {
		n.Fallback.Notify(ctx, notification)
	}
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Logger types.Logger
}

// Notify implements types.Notifier.
func (n LogNotifier) Notify(_ context.Context, notification types.Notification) {
	if n.Logger == nil {
		return
	}
	fields := []any{"title", notification.Title, "description", notification.Description}
	if notification.Level == types.NotificationError {
		n.Logger.Error("view preference notification", nil, fields...)
		return
	}
	n.Logger.Info("view preference notification", fields...)
}
