package services

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
)

// NotificationPublisher pushes named events to users and the admin group.
// Delivery is best-effort and never blocks the caller.
type NotificationPublisher interface {
	EmitToUser(ctx context.Context, userID, name string, payload any)
	EmitToAdmins(ctx context.Context, name string, payload any)
}

// EventStreamSvc hands out live event subscriptions.
type EventStreamSvc interface {
	// Subscribe returns a channel receiving events for the given channels and a cancel func.
	Subscribe(channels ...domain.Channel) (<-chan domain.Event, func())
}

// MailMessage is a rendered email.
type MailMessage struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers email.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// TaskQueue runs background work without blocking the caller.
type TaskQueue interface {
	// Submit enqueues fn. It returns false when the queue is full and the task was dropped.
	Submit(name string, fn func(ctx context.Context) error) bool
}
