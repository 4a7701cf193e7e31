package testutil

import (
	"sync"

	"github.com/HerbHall/tradeboard/pkg/listquery"
)

// Compile-time interface check.
var _ listquery.Notifier = (*Notifier)(nil)

// Notification is one recorded Notify call.
type Notification struct {
	Level   listquery.Level
	Message string
}

// Notifier is a thread-safe listquery.Notifier that records every call.
type Notifier struct {
	mu    sync.Mutex
	notes []Notification
}

// NewNotifier returns an empty recorder.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Notify records the notification.
func (n *Notifier) Notify(level listquery.Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, Notification{Level: level, Message: message})
}

// Notifications returns a copy of all recorded notifications.
func (n *Notifier) Notifications() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.notes))
	copy(out, n.notes)
	return out
}

// Reset clears recorded notifications.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = nil
}
