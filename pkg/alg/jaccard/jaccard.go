// Package jaccard scores the overlap of two sets.
package jaccard

// Score returns |a ∩ b| / |a ∪ b|. It returns 0 when either set is empty,
// so two empty sets are dissimilar rather than identical.
func Score[T comparable](a, b map[T]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	intersection := 0

	for k := range small {
		if _, ok := large[k]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection

	return float64(intersection) / float64(union)
}

// Set builds a set from items.
func Set[T comparable](items ...T) map[T]struct{} {
	s := make(map[T]struct{}, len(items))

	for _, it := range items {
		s[it] = struct{}{}
	}

	return s
}
