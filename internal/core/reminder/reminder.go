// Package reminder defines the draft records collected from users and renders
// the notification text delivered when a reminder fires.
package reminder

import (
	"strings"
	"time"

	"github.com/hay-kot/remindme/internal/core/temporal"
)

// DefaultTimerName is used when a timer is created or unset without a name.
const DefaultTimerName = "timer"

// jobSuffix separates scheduled job keys from other per-chat keys.
const jobSuffix = "_job"

// Kind distinguishes events from timers.
type Kind string

const (
	KindEvent Kind = "event"
	KindTimer Kind = "timer"
)

// Event is a reminder due at an absolute local time.
type Event struct {
	Name     string
	DueAt    time.Time
	Location *string // nil when skipped
	Message  *string // nil when skipped
}

// Timer is a reminder due after a relative duration of whole seconds.
type Timer struct {
	Name    string
	Due     time.Duration
	Message *string // nil when skipped
}

// JobKey returns the per-chat lookup key for a scheduled reminder.
func JobKey(name string) string {
	return name + jobSuffix
}

// Text renders the notification sent when the event fires.
func (e Event) Text() string {
	var b strings.Builder
	b.WriteString("Event: ")
	b.WriteString(e.Name)
	b.WriteString("\nDate: ")
	b.WriteString(temporal.FormatEventTime(e.DueAt))
	if e.Location != nil {
		b.WriteString("\nLocation: ")
		b.WriteString(*e.Location)
	}
	if e.Message != nil {
		b.WriteString("\nMessage: ")
		b.WriteString(*e.Message)
	}
	return b.String()
}

// Text renders the notification sent when the timer fires.
func (t Timer) Text() string {
	text := "Timer: " + t.Name
	if t.Message != nil {
		text += "\nMessage: " + *t.Message
	}
	return text
}

// Ptr returns a pointer to s, for filling optional draft fields.
func Ptr(s string) *string {
	return &s
}
