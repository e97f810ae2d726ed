// Package oneshot parses the single-message /new_event and /new_timer
// commands into complete reminder drafts.
package oneshot

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/hay-kot/remindme/internal/core/reminder"
	"github.com/hay-kot/remindme/internal/core/temporal"
)

var (
	ErrMissingArgument   = errors.New("missing argument")
	ErrUnterminatedQuote = errors.New("unterminated quote")
)

// Usage lines for the one-shot commands.
const (
	EventUsage = "Usage: /new_event <date \"" + temporal.DateHint + "\"> <time \"" + temporal.TimeHint + "\"> " +
		"<event_name> [event_loc] [event_msg]\nAll data must be in the correct order!"
	TimerUsage = "Usage: /new_timer <seconds> [timer_name] [timer_message]"
)

// Tokenize splits a command argument string on whitespace. A double quote at
// the start of an argument groups words up to the closing quote; the quotes
// themselves are dropped. Quotes inside a word and apostrophes are literal.
func Tokenize(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		inToken bool
	)

	for _, r := range line {
		switch {
		case quoted:
			if r == '"' {
				quoted = false
				continue
			}
			cur.WriteRune(r)
		case r == '"' && !inToken:
			quoted = true
			inToken = true
		case unicode.IsSpace(r):
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}

	if quoted {
		return nil, ErrUnterminatedQuote
	}
	if inToken {
		args = append(args, cur.String())
	}
	return args, nil
}

// ParseEvent builds an event from `date time name [location] [message...]`.
// The date is validated before the name so a past date is reported even when
// the name is missing.
func ParseEvent(args []string, now time.Time) (reminder.Event, error) {
	if len(args) < 2 {
		return reminder.Event{}, ErrMissingArgument
	}

	due, err := temporal.ParseEventTime(args[0]+" "+args[1], now)
	if err != nil {
		return reminder.Event{}, err
	}

	if len(args) < 3 {
		return reminder.Event{}, ErrMissingArgument
	}

	ev := reminder.Event{Name: args[2], DueAt: due}
	if len(args) > 3 {
		ev.Location = reminder.Ptr(args[3])
	}
	if len(args) > 4 {
		ev.Message = reminder.Ptr(strings.Join(args[4:], " "))
	}
	return ev, nil
}

// ParseTimer builds a timer from `seconds [name] [message...]`.
func ParseTimer(args []string) (reminder.Timer, error) {
	if len(args) == 0 {
		return reminder.Timer{}, ErrMissingArgument
	}

	due, err := temporal.ParseSeconds(args[0])
	if err != nil {
		return reminder.Timer{}, err
	}

	tm := reminder.Timer{Name: reminder.DefaultTimerName, Due: due}
	if len(args) > 1 {
		tm.Name = args[1]
	}
	if len(args) > 2 {
		tm.Message = reminder.Ptr(strings.Join(args[2:], " "))
	}
	return tm, nil
}
