package scheduling

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/schedulr/internal/interval"
)

// Store keeps scheduling requests in memory for the lifetime of the process.
// All access is serialised by a single mutex. Records handed out are copies.
type Store struct {
	mu       sync.Mutex
	requests map[string]*Request
	now      func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the clock used for creation timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		requests: make(map[string]*Request),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records a new pending request and returns its id.
func (s *Store) Create(targetEmail, targetName, senderName string, slots []interval.Interval) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.requests[id] = &Request{
		ID:           id,
		TargetEmail:  targetEmail,
		TargetName:   targetName,
		SenderName:   senderName,
		OfferedSlots: slices.Clone(slots),
		Status:       StatusPending,
		CreatedAt:    s.now().UTC(),
	}
	return id
}

// Get returns a copy of the request with the given id.
func (s *Store) Get(id string) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return Request{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.clone(), nil
}

// SelectSlot marks the slot at index as selected and the request as scheduled.
// A second call on the same request overwrites the first selection.
func (s *Store) SelectSlot(id string, index int) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return Request{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.selectSlot(index)
}

// SelectPendingSlot is SelectSlot for a request that is still pending.
// A scheduled request yields ErrAlreadyScheduled and one in the error state
// ErrRequestFailed; neither is modified.
func (s *Store) SelectPendingSlot(id string, index int) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return Request{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	switch r.Status {
	case StatusScheduled:
		return Request{}, fmt.Errorf("%w: %s", ErrAlreadyScheduled, id)
	case StatusError:
		return Request{}, fmt.Errorf("%w: %s", ErrRequestFailed, id)
	}
	return r.selectSlot(index)
}

// selectSlot must be called with the store lock held.
func (r *Request) selectSlot(index int) (Request, error) {
	if index < 0 || index >= len(r.OfferedSlots) {
		return Request{}, fmt.Errorf("%w: %d (request offers %d slots)", ErrInvalidIndex, index, len(r.OfferedSlots))
	}

	selected := r.OfferedSlots[index]
	r.SelectedSlot = &selected
	r.Status = StatusScheduled
	return r.clone(), nil
}

// MarkError moves a pending request to the error state and reports whether
// it did. Requests in any other state and unknown ids are left alone.
func (s *Store) MarkError(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok || r.Status != StatusPending {
		return false
	}
	r.Status = StatusError
	return true
}

// MarkPersisted flags the request's meeting as recorded. Unknown ids are ignored.
func (s *Store) MarkPersisted(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.requests[id]; ok {
		r.Persisted = true
	}
}

// List returns copies of all requests, oldest first.
func (s *Store) List() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, 0, len(s.requests))
	for _, r := range s.requests {
		out = append(out, r.clone())
	}
	slices.SortFunc(out, func(a, b Request) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}
