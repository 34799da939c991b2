package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind is the severity of a [Notification].
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

// Notification is a transient message for the user.
type Notification struct {
	ID        string
	Kind      NotificationKind
	Message   string
	CreatedAt time.Time
}

// NewNotification stamps a notification with an id and the current time.
func NewNotification(kind NotificationKind, message string) Notification {
	return Notification{
		ID:        uuid.New().String(),
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	}
}
