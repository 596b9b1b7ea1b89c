// Package events carries dashboard change notifications over NATS so that
// open list screens can refresh when records change elsewhere.
package events

import (
	"context"
	"time"
)

// SubjectPrefix roots every dashboard subject.
const SubjectPrefix = "dashboard"

// Change actions
const (
	ActionCreated     = "created"
	ActionUpdated     = "updated"
	ActionDeleted     = "deleted"
	ActionActivated   = "activated"
	ActionDeactivated = "deactivated"
)

// Subject returns the subject a change to one of screen's records is sent on,
// e.g. "dashboard.clients.created".
func Subject(screen, action string) string {
	return SubjectPrefix + "." + screen + "." + action
}

// ScreenSubject matches every change to screen's records.
func ScreenSubject(screen string) string {
	return SubjectPrefix + "." + screen + ".>"
}

// Change reports that a record shown on a screen was modified.
type Change struct {
	Screen string    `json:"screen"`
	Action string    `json:"action"`
	ID     string    `json:"id"`
	At     time.Time `json:"at"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// PublishChange sends c on its screen and action subject, stamping it with
// the current time when At is unset.
func PublishChange(ctx context.Context, pub Publisher, c Change) error {
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}
	return pub.Publish(ctx, Subject(c.Screen, c.Action), c)
}
