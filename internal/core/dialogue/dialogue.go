// Package dialogue implements the guided multi-turn conversation that collects
// an event or timer one field at a time.
package dialogue

import (
	"errors"
	"fmt"
	"time"

	"github.com/hay-kot/remindme/internal/core/reminder"
	"github.com/hay-kot/remindme/internal/core/temporal"
)

var (
	ErrNotSkippable = errors.New("step can not be skipped")
	ErrFinished     = errors.New("dialogue already finished")
)

// Step is the field a dialogue is currently waiting for.
type Step int

const (
	StepName Step = iota
	StepDate
	StepDue
	StepLocation
	StepMessage
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepName:
		return "name"
	case StepDate:
		return "date"
	case StepDue:
		return "due"
	case StepLocation:
		return "location"
	case StepMessage:
		return "message"
	case StepDone:
		return "done"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Input is one user turn. Skip is set when the user sent the skip command
// instead of text.
type Input struct {
	Text string
	Skip bool
}

// Outcome is the result of a turn. Done is set once the draft is complete and
// ready to be scheduled.
type Outcome struct {
	Replies []string
	Done    bool
}

// ReplyPast is sent when a date or duration points backwards in time.
const ReplyPast = "Sorry we can not go back to future!"

type transition func(d *Dialogue, in Input) (Outcome, error)

var (
	eventSteps = map[Step]transition{
		StepName:     (*Dialogue).eventName,
		StepDate:     (*Dialogue).eventDate,
		StepLocation: (*Dialogue).eventLocation,
		StepMessage:  (*Dialogue).eventMessage,
	}
	timerSteps = map[Step]transition{
		StepName:    (*Dialogue).timerName,
		StepDue:     (*Dialogue).timerDue,
		StepMessage: (*Dialogue).timerMessage,
	}
)

// Dialogue is the state of one in-progress conversation. It is not safe for
// concurrent use; the owning chat serializes access.
type Dialogue struct {
	kind  reminder.Kind
	step  Step
	now   func() time.Time
	steps map[Step]transition

	event reminder.Event
	timer reminder.Timer
}

// NewEvent starts an event dialogue. now is used to reject past dates.
func NewEvent(now func() time.Time) *Dialogue {
	return &Dialogue{kind: reminder.KindEvent, step: StepName, now: now, steps: eventSteps}
}

// NewTimer starts a timer dialogue.
func NewTimer() *Dialogue {
	return &Dialogue{kind: reminder.KindTimer, step: StepName, steps: timerSteps}
}

// Kind reports whether the dialogue collects an event or a timer.
func (d *Dialogue) Kind() reminder.Kind { return d.kind }

// Step returns the field the dialogue is waiting for.
func (d *Dialogue) Step() Step { return d.step }

// Intro is the first prompt shown when the dialogue opens.
func (d *Dialogue) Intro() string {
	if d.kind == reminder.KindEvent {
		return "Ok. Let's create a new event!\n" +
			"Send /cancel to cancel the command.\n" +
			"Enter the name of the event you want me to write down:"
	}
	return "Ok. Let's create a new timer!\n" +
		"Send /cancel to cancel the command.\n" +
		"Enter the name of the timer:"
}

// CancelReply is the confirmation shown when the user cancels the dialogue.
func (d *Dialogue) CancelReply() string {
	return fmt.Sprintf("Ok, I canceled the new %s entry!", d.kind)
}

// Event returns the collected event once the dialogue is done.
func (d *Dialogue) Event() (reminder.Event, bool) {
	return d.event, d.kind == reminder.KindEvent && d.step == StepDone
}

// Timer returns the collected timer once the dialogue is done.
func (d *Dialogue) Timer() (reminder.Timer, bool) {
	return d.timer, d.kind == reminder.KindTimer && d.step == StepDone
}

// Advance feeds one user turn into the current step. Invalid input keeps the
// dialogue on the same step and returns a re-prompt, not an error. Errors are
// reserved for input the step can not accept at all.
func (d *Dialogue) Advance(in Input) (Outcome, error) {
	fn, ok := d.steps[d.step]
	if !ok {
		return Outcome{}, ErrFinished
	}
	return fn(d, in)
}

func (d *Dialogue) eventName(in Input) (Outcome, error) {
	if in.Skip {
		return Outcome{}, ErrNotSkippable
	}
	d.event.Name = in.Text
	d.step = StepDate
	return reply(fmt.Sprintf("Ok. Now, please, enter the date and time of the %s.\n"+
		"Please, enter date in the %q format!", in.Text, temporal.DateTimeHint)), nil
}

func (d *Dialogue) eventDate(in Input) (Outcome, error) {
	if in.Skip {
		return Outcome{}, ErrNotSkippable
	}

	hint := fmt.Sprintf("Please, enter date in the %q format!", temporal.DateTimeHint)

	due, err := temporal.ParseEventTime(in.Text, d.now())
	switch {
	case errors.Is(err, temporal.ErrInThePast):
		return reply(ReplyPast, hint), nil
	case err != nil:
		return reply(hint), nil
	}

	d.event.DueAt = due
	d.step = StepLocation
	return reply("Done! Now send me the location of the event or /skip:"), nil
}

func (d *Dialogue) eventLocation(in Input) (Outcome, error) {
	d.step = StepMessage
	if in.Skip {
		return reply("Ok! Now send me the message you want me to send to you as a reminder for the event or /skip:"), nil
	}
	d.event.Location = reminder.Ptr(in.Text)
	return reply("Ok! I've written down the location of the event!\n" +
		"Now send me the message you want me to send you as a reminder for the event or /skip:"), nil
}

func (d *Dialogue) eventMessage(in Input) (Outcome, error) {
	if !in.Skip {
		d.event.Message = reminder.Ptr(in.Text)
	}
	d.step = StepDone
	return Outcome{Replies: []string{"Done! I wrote down all the info about the event!"}, Done: true}, nil
}

func (d *Dialogue) timerName(in Input) (Outcome, error) {
	if in.Skip {
		return Outcome{}, ErrNotSkippable
	}
	d.timer.Name = in.Text
	d.step = StepDue
	return reply(fmt.Sprintf("Ok. Now, please, enter the due of the timer in the %q format!", temporal.DurationHint)), nil
}

func (d *Dialogue) timerDue(in Input) (Outcome, error) {
	if in.Skip {
		return Outcome{}, ErrNotSkippable
	}

	hint := fmt.Sprintf("Please, enter due in the %q format!", temporal.DurationHint)

	due, err := temporal.ParseDuration(in.Text)
	switch {
	case errors.Is(err, temporal.ErrNegative):
		return reply(ReplyPast, hint), nil
	case err != nil:
		return reply(hint), nil
	}

	d.timer.Due = due
	d.step = StepMessage
	return reply("Done! Now send me the message you want me to send you as a reminder for the timer or /skip:"), nil
}

func (d *Dialogue) timerMessage(in Input) (Outcome, error) {
	if !in.Skip {
		d.timer.Message = reminder.Ptr(in.Text)
	}
	d.step = StepDone
	return Outcome{Replies: []string{"Done! I wrote down all the info about the timer!"}, Done: true}, nil
}

func reply(lines ...string) Outcome {
	return Outcome{Replies: lines}
}
