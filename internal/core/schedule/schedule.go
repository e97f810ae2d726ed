// Package schedule arms one-shot callbacks that deliver reminder
// notifications at a wall-clock time or after a delay.
package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Payload is captured when a reminder is scheduled and handed back to the
// callback when it fires.
type Payload struct {
	ChatID string
	Name   string
	Text   string
}

// Func is invoked once when a scheduled job fires.
type Func func(ctx context.Context, p Payload) error

// Handle is the cancel capability for an armed job.
type Handle interface {
	// Cancel disarms the job. It reports false when the job already fired or
	// was cancelled before, in which case it does nothing.
	Cancel() bool
	// FireAt is the time the job is due.
	FireAt() time.Time
	// Fired reports whether the callback has been started.
	Fired() bool
}

// Scheduler arms one-shot jobs.
type Scheduler interface {
	At(at time.Time, p Payload, fn Func) Handle
	After(d time.Duration, p Payload, fn Func) Handle
}

const (
	statePending int32 = iota
	stateFired
	stateCancelled
)

// Runtime is a Scheduler backed by Go runtime timers.
type Runtime struct {
	ctx context.Context
	log zerolog.Logger
	now func() time.Time

	// Held for reading by running callbacks.
	inflight sync.RWMutex
}

// NewRuntime creates a scheduler whose callbacks run with ctx. Once ctx is
// done, jobs that come due are dropped instead of delivered.
func NewRuntime(ctx context.Context, log zerolog.Logger) *Runtime {
	return &Runtime{
		ctx: ctx,
		log: log,
		now: time.Now,
	}
}

// At arms fn to run at the given time. Times in the past fire immediately.
func (r *Runtime) At(at time.Time, p Payload, fn Func) Handle {
	return r.arm(at, at.Sub(r.now()), p, fn)
}

// After arms fn to run once d has elapsed.
func (r *Runtime) After(d time.Duration, p Payload, fn Func) Handle {
	return r.arm(r.now().Add(d), d, p, fn)
}

// Wait blocks until all callbacks that already started have returned.
func (r *Runtime) Wait() {
	r.inflight.Lock()
	defer r.inflight.Unlock()
}

func (r *Runtime) arm(at time.Time, d time.Duration, p Payload, fn Func) Handle {
	if d < 0 {
		d = 0
	}

	h := &timerHandle{fireAt: at}
	h.timer = time.AfterFunc(d, func() {
		if !h.state.CompareAndSwap(statePending, stateFired) {
			return
		}

		r.inflight.RLock()
		defer r.inflight.RUnlock()

		if err := r.ctx.Err(); err != nil {
			r.log.Debug().Str("chat_id", p.ChatID).Str("name", p.Name).Msg("scheduler stopped, dropping job")
			return
		}

		r.log.Debug().Str("chat_id", p.ChatID).Str("name", p.Name).Msg("job fired")
		if err := fn(r.ctx, p); err != nil {
			r.log.Error().Err(err).Str("chat_id", p.ChatID).Str("name", p.Name).Msg("failed to deliver notification")
		}
	})

	r.log.Debug().Str("chat_id", p.ChatID).Str("name", p.Name).Time("fire_at", at).Msg("job armed")
	return h
}

type timerHandle struct {
	timer  *time.Timer
	fireAt time.Time
	state  atomic.Int32
}

func (h *timerHandle) Cancel() bool {
	if !h.state.CompareAndSwap(statePending, stateCancelled) {
		return false
	}
	h.timer.Stop()
	return true
}

func (h *timerHandle) FireAt() time.Time { return h.fireAt }

func (h *timerHandle) Fired() bool { return h.state.Load() == stateFired }

var _ Scheduler = (*Runtime)(nil)
