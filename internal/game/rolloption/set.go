// Package rolloption implements the roll option set: an insertion-ordered,
// deduplicated collection of namespaced string tags (e.g. "self:flanking")
// that every predicate in the rules engine is evaluated against.
package rolloption

import (
	"sort"
	"strings"
)

// Set is an insertion-ordered set of roll options.
//
// The zero value is not usable; construct with New.
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	order []string
	index map[string]struct{}
}

// New returns a Set seeded with options. Empty strings are discarded.
//
// Postcondition: Len() equals the number of distinct non-empty options.
func New(options ...string) *Set {
	s := &Set{index: make(map[string]struct{}, len(options))}
	s.AddAll(options...)
	return s
}

// Add inserts option, reporting whether it was not already present.
// Empty options are ignored.
func (s *Set) Add(option string) bool {
	if option == "" {
		return false
	}
	if _, ok := s.index[option]; ok {
		return false
	}
	s.index[option] = struct{}{}
	s.order = append(s.order, option)
	return true
}

// AddAll inserts every option in order.
func (s *Set) AddAll(options ...string) {
	for _, o := range options {
		s.Add(o)
	}
}

// Has reports whether option is present. A nil Set contains nothing.
func (s *Set) Has(option string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[option]
	return ok
}

// WithPrefix returns every option that starts with prefix, in insertion order.
func (s *Set) WithPrefix(prefix string) []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, o := range s.order {
		if strings.HasPrefix(o, prefix) {
			out = append(out, o)
		}
	}
	return out
}

// Len returns the number of options in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Values returns a copy of the options in insertion order.
func (s *Set) Values() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Sorted returns a copy of the options sorted ascending.
//
// Postcondition: the result is sorted and contains no duplicates.
func (s *Set) Sorted() []string {
	out := s.Values()
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	if s == nil {
		return New()
	}
	return New(s.order...)
}

// Prefixed returns "<prefix>:<v>" for each non-empty value.
func Prefixed(prefix string, values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		out = append(out, prefix+":"+v)
	}
	return out
}

// Dedupe returns the distinct non-empty values of options sorted ascending.
//
// Postcondition: the result is sorted and contains no duplicates.
func Dedupe(options []string) []string {
	return New(options...).Sorted()
}
