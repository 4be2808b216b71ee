// Package history records executed rolls so later rolls can correlate with
// them, such as a damage roll adopting the context of the attack that
// preceded it.
package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RollKind classifies a roll within an entry.
type RollKind string

const (
	RollCheck  RollKind = "check"
	RollDamage RollKind = "damage"
)

// Roll is one executed roll.
type Roll struct {
	Kind    RollKind `json:"kind"`
	Formula string   `json:"formula,omitempty"`
	Total   int      `json:"total"`
}

// ItemRef identifies the item a roll was made with.
type ItemRef struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Type  string `json:"type"`
	Melee bool   `json:"melee"`
}

// Substitution is an alternative roll result offered for a check, such as
// a fixed value replacing the d20.
type Substitution struct {
	Slug     string `json:"slug"`
	Label    string `json:"label,omitempty"`
	Value    int    `json:"value"`
	Selected bool   `json:"selected"`
}

// ContextFlag is the roll context stored with a check.
type ContextFlag struct {
	Type          string         `json:"type"`
	ActorID       string         `json:"actor_id,omitempty"`
	Domains       []string       `json:"domains,omitempty"`
	Options       []string       `json:"options,omitempty"`
	Traits        []string       `json:"traits,omitempty"`
	Outcome       string         `json:"outcome,omitempty"`
	Substitutions []Substitution `json:"substitutions,omitempty"`
	TargetTokenID string         `json:"target_token_id,omitempty"`
	Against       string         `json:"against,omitempty"`
	DC            *int           `json:"dc,omitempty"`
}

// SelectedSubstitution returns the substitution chosen for the roll, or nil.
func (f *ContextFlag) SelectedSubstitution() *Substitution {
	if f == nil {
		return nil
	}
	for i := range f.Substitutions {
		if f.Substitutions[i].Selected {
			return &f.Substitutions[i]
		}
	}
	return nil
}

// Entry is one message in the roll history.
type Entry struct {
	ID            string       `json:"id"`
	CreatedAt     time.Time    `json:"created_at"`
	ActorID       string       `json:"actor_id"`
	TokenID       string       `json:"token_id,omitempty"`
	TargetTokenID string       `json:"target_token_id,omitempty"`
	Item          *ItemRef     `json:"item,omitempty"`
	Rolls         []Roll       `json:"rolls"`
	Context       *ContextFlag `json:"context,omitempty"`
}

// HasCheckRoll reports whether the entry carries a check roll.
func (e Entry) HasCheckRoll() bool {
	for _, r := range e.Rolls {
		if r.Kind == RollCheck {
			return true
		}
	}
	return false
}

// NewEntryID returns a fresh random entry id.
func NewEntryID() string { return uuid.NewString() }

// Store is the roll history.
type Store interface {
	// Append records e. An empty e.ID is assigned; a zero CreatedAt is set to now.
	Append(ctx context.Context, e Entry) error
	// Recent returns at most n entries, newest first.
	Recent(ctx context.Context, n int) ([]Entry, error)
}

// ErrInvalidCapacity is returned by NewMemoryStore for a non-positive capacity.
var ErrInvalidCapacity = errors.New("history capacity must be positive")

// MemoryStore is a bounded in-memory Store. The oldest entries are dropped
// once capacity is reached.
//
// All methods are safe for concurrent use.
type MemoryStore struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
}

// NewMemoryStore creates a MemoryStore holding at most capacity entries.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &MemoryStore{capacity: capacity}, nil
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	Normalize(&e)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	if over := len(s.entries) - s.capacity; over > 0 {
		s.entries = append([]Entry(nil), s.entries[over:]...)
	}
	return nil
}

// Recent implements Store.
func (s *MemoryStore) Recent(ctx context.Context, n int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]Entry, 0, max(n, 0))
	for i := len(s.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

// Normalize assigns a missing ID and CreatedAt.
func Normalize(e *Entry) {
	if e.ID == "" {
		e.ID = NewEntryID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
}
