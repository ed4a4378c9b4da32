package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSelection turns a step selection like "1,3,5-7" or "all" into
// zero-based step indices, preserving order and dropping duplicates.
// Selections are one-based to match the listing shown by -list.
func ParseSelection(selection string, stepCount int) ([]int, error) {
	selection = strings.TrimSpace(selection)
	if selection == "" || strings.EqualFold(selection, "all") {
		indices := make([]int, stepCount)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	seen := make(map[int]bool)
	var indices []int
	add := func(n int) error {
		if n < 1 || n > stepCount {
			return fmt.Errorf("step %d is out of range (1-%d)", n, stepCount)
		}
		if !seen[n] {
			seen[n] = true
			indices = append(indices, n-1)
		}
		return nil
	}

	for _, part := range strings.Split(selection, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("invalid step range %q", part)
			}
			end, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid step range %q", part)
			}
			if end < start {
				return nil, fmt.Errorf("invalid step range %q", part)
			}
			for n := start; n <= end; n++ {
				if err := add(n); err != nil {
					return nil, err
				}
			}
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid step selection %q", part)
		}
		if err := add(n); err != nil {
			return nil, err
		}
	}

	if len(indices) == 0 {
		return nil, fmt.Errorf("selection %q matches no steps", selection)
	}
	return indices, nil
}
