/*
notify.go - Notification port

PURPOSE:
  The engine only needs an abstract "notify" capability: tell the manager a
  request arrived, tell the submitter a decision landed. Delivery (email,
  chat, push) lives outside this module.

CONTRACT:
  Notify is fire-and-forget. Implementations must not return delivery
  failures in a way that changes the outcome of the triggering operation;
  the engine never inspects an error from this path.
*/
package request

import (
	"context"
	"log"
)

// Event classifies what happened to a request.
type Event string

const (
	EventSubmitted Event = "submitted"
	EventApproved  Event = "approved"
	EventRejected  Event = "rejected"
)

// Notification is the payload handed to the notifier.
type Notification struct {
	Request     *Request
	RecipientID string
	Event       Event
}

// Notifier delivers notifications. Failures are the implementation's problem.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the process log. The default wiring.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) {
	log.Printf("notify %s: request %s (%s) %s", n.RecipientID, n.Request.ID, n.Request.Type, n.Event)
}

// NopNotifier drops notifications. Used in tests.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) {}
