package collections

// Contains reports whether elem is one of elements.
func Contains[T comparable](elem T, elements []T) bool {
	for _, e := range elements {
		if elem == e {
			return true
		}
	}
	return false
}

// FirstDuplicate returns the first element which appears more than once in elements.
func FirstDuplicate[T comparable](elements []T) (T, bool) {
	seen := make(map[T]struct{}, len(elements))
	for _, e := range elements {
		if _, ok := seen[e]; ok {
			return e, true
		}
		seen[e] = struct{}{}
	}

	var zero T
	return zero, false
}
