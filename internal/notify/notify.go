// Package notify carries the console's success and error notifications.
//
// Producers (table controllers, dialogs, auth handlers) write to a [Sink] and
// move on. The console queues notifications on the user's session and shows
// them on the next page render.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Level is the kind of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is one message shown to the user.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Sink receives notifications. Implementations must not block.
type Sink interface {
	Success(msg string)
	Error(msg string)
}

// genericFailure is shown in place of raw transport errors.
const genericFailure = "Something went wrong. Please try again."

// Message returns the user-facing text for v. Errors never surface their own
// text: it may contain URLs or low-level detail. A value that wraps a
// [Public] message shows that message instead.
func Message(v any) string {
	switch t := v.(type) {
	case nil:
		return genericFailure
	case string:
		return t
	case Public:
		return string(t)
	case error:
		var p Public
		if errors.As(t, &p) {
			return string(p)
		}
		return genericFailure
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Public is an error whose text is safe to show to the user as is.
type Public string

func (p Public) Error() string { return string(p) }

// Queue is a concurrency-safe FIFO Sink. The zero value is ready to use.
type Queue struct {
	mu      sync.Mutex
	items   []Notification
	changes uint64
}

// Success appends a success notification.
func (q *Queue) Success(msg string) { q.push(LevelSuccess, msg) }

// Error appends an error notification.
func (q *Queue) Error(msg string) { q.push(LevelError, msg) }

func (q *Queue) push(level Level, msg string) {
	q.mu.Lock()
	q.items = append(q.items, Notification{Level: level, Message: msg})
	q.changes++
	q.mu.Unlock()
}

// Drain returns the queued notifications in arrival order and empties q.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	if len(out) > 0 {
		q.changes++
	}
	q.items = nil
	return out
}

// Peek returns a copy of the queued notifications without removing them.
func (q *Queue) Peek() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Notification(nil), q.items...)
}

// Changes counts the pushes and non-empty drains q has seen. Two equal
// readings mean the contents did not change in between.
func (q *Queue) Changes() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.changes
}

// Len returns the number of queued notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Logging wraps next so every notification is also logged at DEBUG.
func Logging(logger *slog.Logger, next Sink) Sink {
	return &logSink{logger: logger, next: next}
}

type logSink struct {
	logger *slog.Logger
	next   Sink
}

func (s *logSink) Success(msg string) {
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "notification", slog.String("level", string(LevelSuccess)), slog.String("message", msg))
	s.next.Success(msg)
}

func (s *logSink) Error(msg string) {
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "notification", slog.String("level", string(LevelError)), slog.String("message", msg))
	s.next.Error(msg)
}
