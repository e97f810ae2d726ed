package chat

import (
	"sort"
	"time"

	"github.com/hay-kot/remindme/internal/core/reminder"
	"github.com/hay-kot/remindme/internal/core/schedule"
	"github.com/hay-kot/remindme/pkg/kv"
)

// Job is a committed reminder with a live handle in the scheduler.
type Job struct {
	Key    string
	Name   string
	Kind   reminder.Kind
	Text   string
	Handle schedule.Handle
}

// FireAt is when the job is due.
func (j *Job) FireAt() time.Time { return j.Handle.FireAt() }

// Fired reports whether the notification was already sent.
func (j *Job) Fired() bool { return j.Handle.Fired() }

// Jobs maps reminder names to their scheduled jobs for a single chat. At most
// one job exists per name. Safe for concurrent use.
type Jobs struct {
	store *kv.Store[string, *Job]
}

// NewJobs creates an empty job store.
func NewJobs() *Jobs {
	return &Jobs{store: kv.New[string, *Job]()}
}

// Get returns the job registered under name.
func (j *Jobs) Get(name string) (*Job, bool) {
	return j.store.Get(reminder.JobKey(name))
}

// Put registers job under its name. A job already registered under the same
// name is cancelled and returned.
func (j *Jobs) Put(job *Job) (*Job, bool) {
	job.Key = reminder.JobKey(job.Name)
	prev, ok := j.store.Swap(job.Key, job)
	if ok {
		prev.Handle.Cancel()
	}
	return prev, ok
}

// Remove cancels and removes the job registered under name.
func (j *Jobs) Remove(name string) (*Job, bool) {
	job, ok := j.store.Pop(reminder.JobKey(name))
	if ok {
		job.Handle.Cancel()
	}
	return job, ok
}

// CancelAll cancels and removes every job, returning how many were still
// pending.
func (j *Jobs) CancelAll() int {
	n := 0
	for _, job := range j.store.Drain() {
		if job.Handle.Cancel() {
			n++
		}
	}
	return n
}

// List returns the jobs ordered by fire time, then name.
func (j *Jobs) List() []*Job {
	jobs := j.store.Values()
	sort.Slice(jobs, func(a, b int) bool {
		fa, fb := jobs[a].FireAt(), jobs[b].FireAt()
		if fa.Equal(fb) {
			return jobs[a].Name < jobs[b].Name
		}
		return fa.Before(fb)
	})
	return jobs
}

// Len returns the number of registered jobs, fired or not.
func (j *Jobs) Len() int { return j.store.Len() }
