// Package notifytest provides a notification sink for tests.
package notifytest

import (
	"sync"

	"github.com/aoideee/inventory-console/internal/notify"
)

// Recorder is a notify.Sink that keeps every notification it receives.
// The zero value is ready to use.
type Recorder struct {
	mu  sync.Mutex
	all []notify.Notification
}

// Success records a success notification.
func (r *Recorder) Success(msg string) { r.add(notify.LevelSuccess, msg) }

// Error records an error notification.
func (r *Recorder) Error(msg string) { r.add(notify.LevelError, msg) }

func (r *Recorder) add(level notify.Level, msg string) {
	r.mu.Lock()
	r.all = append(r.all, notify.Notification{Level: level, Message: msg})
	r.mu.Unlock()
}

// All returns every notification recorded so far, in arrival order.
func (r *Recorder) All() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.all...)
}

// Errors returns the messages of recorded error notifications.
func (r *Recorder) Errors() []string { return r.messages(notify.LevelError) }

// Successes returns the messages of recorded success notifications.
func (r *Recorder) Successes() []string { return r.messages(notify.LevelSuccess) }

func (r *Recorder) messages(level notify.Level) []string {
	var out []string
	for _, n := range r.All() {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}
