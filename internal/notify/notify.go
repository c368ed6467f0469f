// Package notify delivers user facing notifications of the workforce service.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Kind is the routing key of a notification.
type Kind string

// Notification kinds.
const (
	KindRecertificationDue  Kind = "certification.recertification_due"
	KindCertificationIssued Kind = "certification.issued"
	KindProjectLaunched     Kind = "project.launched"
)

// Notification is a message for one user.
type Notification struct {
	Kind    Kind      `json:"kind"`
	UserID  string    `json:"userId"`
	Email   string    `json:"email,omitempty"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	At      time.Time `json:"at"`
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log instead of delivering them.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(_ context.Context, n Notification) error {
	log.Info().
		Str("kind", string(n.Kind)).
		Str("user", n.UserID).
		Str("email", n.Email).
		Str("subject", n.Subject).
		Msg("notification")

	return nil
}
