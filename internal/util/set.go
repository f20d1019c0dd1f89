package util

// Set is a generic set implementation for comparable values
type Set[K comparable] map[K]struct{}

// SetOf creates a new set containing the given elements
func SetOf[K comparable](elements ...K) Set[K] {
	s := make(Set[K], len(elements))
	for _, elem := range elements {
		s[elem] = struct{}{}
	}
	return s
}

// Add adds an element to the set, reporting whether it was absent
func (s Set[K]) Add(key K) bool {
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}

// Contains returns true if the element exists in the set
func (s Set[K]) Contains(key K) bool {
	_, exists := s[key]
	return exists
}
