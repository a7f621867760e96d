// Package dedup tracks account identifiers that have already been accepted,
// so a candidate is never counted as a discovery twice.
package dedup

import "strings"

// Set is a case-insensitive membership set of account identifiers. It is
// seeded from persisted acceptances at run start and lives purely in memory
// for the duration of the run.
type Set struct {
	members map[string]struct{}
}

// NewSet returns a set seeded with the given identifiers.
func NewSet(identifiers []string) *Set {
	s := &Set{members: make(map[string]struct{}, len(identifiers))}
	for _, id := range identifiers {
		s.Add(id)
	}
	return s
}

// Contains reports whether the identifier is a member, ignoring case.
func (s *Set) Contains(identifier string) bool {
	_, ok := s.members[strings.ToLower(identifier)]
	return ok
}

// Add marks an identifier as a member. Adding an existing member is a no-op.
func (s *Set) Add(identifier string) {
	s.members[strings.ToLower(identifier)] = struct{}{}
}

// Len returns the number of distinct identifiers.
func (s *Set) Len() int {
	return len(s.members)
}
