package utils

import "fmt"

// ValidatePermutation checks that requested is exactly a reordering of current:
// the same ids, each present once, none added or dropped.
func ValidatePermutation(current, requested []int) error {
	if len(current) != len(requested) {
		return fmt.Errorf("expected %d ids, got %d", len(current), len(requested))
	}

	known := make(map[int]bool, len(current))
	for _, id := range current {
		known[id] = false
	}

	for _, id := range requested {
		seen, ok := known[id]
		if !ok {
			return fmt.Errorf("id %d is not in the current set", id)
		}
		if seen {
			return fmt.Errorf("id %d appears more than once", id)
		}
		known[id] = true
	}

	return nil
}
