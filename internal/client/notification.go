package client

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notification is the one-way create-notification payload consumed by
// the notification service.
type Notification struct {
	UserID            uuid.UUID  `json:"user_id"`
	NotificationType  string     `json:"notification_type"`
	Title             string     `json:"title"`
	Message           string     `json:"message"`
	Channel           string     `json:"channel"`
	Priority          string     `json:"priority"`
	RelatedEntityType string     `json:"related_entity_type,omitempty"`
	RelatedEntityID   *uuid.UUID `json:"related_entity_id,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

type NotificationClient interface {
	Create(ctx context.Context, n Notification) error
}

type notificationClient struct {
	internal *Internal
}

func NewNotificationClient(baseURL, token string, timeout time.Duration, log *zap.Logger) NotificationClient {
	return &notificationClient{
		internal: NewInternal(baseURL, token, timeout, log.With(zap.String("peer", "notification"))),
	}
}

func (c *notificationClient) Create(ctx context.Context, n Notification) error {
	return c.internal.do(ctx, http.MethodPost, "/internal/notifications/create", n, nil)
}
