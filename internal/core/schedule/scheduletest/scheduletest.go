// Package scheduletest provides a manually driven scheduler for tests.
package scheduletest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hay-kot/remindme/internal/core/schedule"
)

// Job is a job armed on a Manual scheduler.
type Job struct {
	Payload schedule.Payload

	fn     schedule.Func
	fireAt time.Time
	seq    int

	mu        sync.Mutex
	fired     bool
	cancelled bool
}

func (j *Job) Cancel() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fired || j.cancelled {
		return false
	}
	j.cancelled = true
	return true
}

func (j *Job) FireAt() time.Time { return j.fireAt }

func (j *Job) Fired() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fired
}

// Cancelled reports whether Cancel disarmed the job.
func (j *Job) Cancelled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelled
}

// Manual is a Scheduler driven by an explicit clock. Jobs only run when the
// test calls Advance.
type Manual struct {
	mu   sync.Mutex
	now  time.Time
	jobs []*Job
}

// New creates a Manual scheduler whose clock starts at now.
func New(now time.Time) *Manual {
	return &Manual{now: now}
}

// Now returns the scheduler clock. It can be passed where a clock func is
// expected.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) At(at time.Time, p schedule.Payload, fn schedule.Func) schedule.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(at, p, fn)
}

func (m *Manual) After(d time.Duration, p schedule.Payload, fn schedule.Func) schedule.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(m.now.Add(d), p, fn)
}

func (m *Manual) add(at time.Time, p schedule.Payload, fn schedule.Func) *Job {
	j := &Job{Payload: p, fn: fn, fireAt: at, seq: len(m.jobs)}
	m.jobs = append(m.jobs, j)
	return j
}

// Jobs returns every job ever armed, in arming order.
func (m *Manual) Jobs() []*Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Job(nil), m.jobs...)
}

// Live returns the jobs that are neither fired nor cancelled.
func (m *Manual) Live() []*Job {
	var live []*Job
	for _, j := range m.Jobs() {
		if !j.Fired() && !j.Cancelled() {
			live = append(live, j)
		}
	}
	return live
}

// Advance moves the clock forward by d and runs every live job that came due,
// in fire time order. Callback errors are returned in the same order.
func (m *Manual) Advance(ctx context.Context, d time.Duration) []error {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now
	m.mu.Unlock()

	due := make([]*Job, 0)
	for _, j := range m.Live() {
		if !j.fireAt.After(now) {
			due = append(due, j)
		}
	}
	sort.Slice(due, func(a, b int) bool {
		if due[a].fireAt.Equal(due[b].fireAt) {
			return due[a].seq < due[b].seq
		}
		return due[a].fireAt.Before(due[b].fireAt)
	})

	var errs []error
	for _, j := range due {
		j.mu.Lock()
		if j.cancelled || j.fired {
			j.mu.Unlock()
			continue
		}
		j.fired = true
		j.mu.Unlock()

		if err := j.fn(ctx, j.Payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

var _ schedule.Scheduler = (*Manual)(nil)
