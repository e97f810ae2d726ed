// Package chat holds the per-chat state: the dialogue currently open in a
// chat and the reminders scheduled from it.
package chat

import (
	"sync"

	"github.com/hay-kot/remindme/internal/core/dialogue"
	"github.com/hay-kot/remindme/pkg/kv"
)

// State is everything the bot tracks for one chat. The dialogue fields are
// guarded by the state lock, obtained through Registry.Acquire.
type State struct {
	ID string

	mu       sync.Mutex
	ended    bool
	dialogue *dialogue.Dialogue
	jobs     *Jobs
}

func newState(id string) *State {
	return &State{ID: id, jobs: NewJobs()}
}

// Release unlocks a state returned by Registry.Acquire.
func (s *State) Release() { s.mu.Unlock() }

// Dialogue returns the open dialogue, or nil.
func (s *State) Dialogue() *dialogue.Dialogue { return s.dialogue }

// StartDialogue opens d, silently discarding any dialogue already open.
func (s *State) StartDialogue(d *dialogue.Dialogue) { s.dialogue = d }

// EndDialogue closes the open dialogue and returns it, or nil if none was open.
func (s *State) EndDialogue() *dialogue.Dialogue {
	d := s.dialogue
	s.dialogue = nil
	return d
}

// Jobs returns the chat's scheduled reminders. Unlike the dialogue, the job
// store may be read without holding the state lock.
func (s *State) Jobs() *Jobs { return s.jobs }

// Registry tracks the state of every active chat.
type Registry struct {
	chats *kv.Store[string, *State]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{chats: kv.New[string, *State]()}
}

// Get returns the state for id, creating it on first contact.
func (r *Registry) Get(id string) *State {
	return r.chats.GetOrCreate(id, func() *State { return newState(id) })
}

// Lookup returns the state for id without creating it.
func (r *Registry) Lookup(id string) (*State, bool) {
	return r.chats.Get(id)
}

// Acquire returns the locked state for id. The caller must call Release.
func (r *Registry) Acquire(id string) *State {
	for {
		s := r.Get(id)
		s.mu.Lock()
		if !s.ended {
			return s
		}
		// ended between Get and Lock; the next Get creates a fresh state
		s.mu.Unlock()
	}
}

// End tears down the chat session: the open dialogue is dropped and every
// pending reminder cancelled. It returns the number of cancelled reminders.
func (r *Registry) End(id string) int {
	s, ok := r.chats.Pop(id)
	if !ok {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	s.dialogue = nil
	return s.jobs.CancelAll()
}

// Len returns the number of tracked chats.
func (r *Registry) Len() int { return r.chats.Len() }
