// Package set provides a minimal generic set used to enforce
// uniqueness of step names during saga construction.
package set

type Set[T comparable] struct {
	set map[T]struct{}
}

// New creates a Set seeded with the given members.
func New[T comparable](members ...T) *Set[T] {
	s := &Set[T]{}
	for _, m := range members {
		s.Insert(m)
	}
	return s
}

func (s *Set[T]) Insert(k T) {
	if s.set == nil {
		s.set = make(map[T]struct{})
	}
	s.set[k] = struct{}{}
}

func (s *Set[T]) Contains(k T) bool {
	_, ok := s.set[k]
	return ok
}
