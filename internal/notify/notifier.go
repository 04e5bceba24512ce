// Package notify decouples notification side effects from the request
// path. Callers enqueue and move on; a single background goroutine drains
// the queue to the notification service, so a slow or down peer never
// adds latency or failure risk to the transactional flow.
package notify

import (
	"context"
	"sync"
	"time"

	"ev-service-center/internal/client"
	"ev-service-center/internal/metrics"

	"go.uber.org/zap"
)

// Publisher is the narrow surface usecases depend on.
type Publisher interface {
	Publish(n client.Notification)
}

type Notifier struct {
	client  client.NotificationClient
	log     *zap.Logger
	queue   chan client.Notification
	timeout time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

const defaultQueueSize = 256

func NewNotifier(nc client.NotificationClient, log *zap.Logger) *Notifier {
	n := &Notifier{
		client:  nc,
		log:     log.With(zap.String("component", "notifier")),
		queue:   make(chan client.Notification, defaultQueueSize),
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}

	go n.run()
	return n
}

// Publish enqueues without blocking. When the queue is saturated the
// notification is dropped, which is acceptable for fire-and-forget
// delivery; the drop is logged and counted.
func (n *Notifier) Publish(notification client.Notification) {
	select {
	case n.queue <- notification:
	default:
		metrics.IncNotificationDropped()
		n.log.Warn("Notification queue full, dropping",
			zap.String("user_id", notification.UserID.String()),
			zap.String("title", notification.Title),
		)
	}
}

func (n *Notifier) run() {
	defer close(n.done)

	for notification := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		if err := n.client.Create(ctx, notification); err != nil {
			// Failures never propagate to the caller.
			n.log.Warn("Failed to deliver notification",
				zap.Error(err),
				zap.String("user_id", notification.UserID.String()),
				zap.String("title", notification.Title),
			)
		}
		cancel()
	}
}

// Close stops intake and waits for the queue to drain.
func (n *Notifier) Close() {
	n.closeOnce.Do(func() {
		close(n.queue)
	})
	<-n.done
}
