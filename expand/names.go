package expand

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MatchNames selects enum names from available by the given patterns.
// Patterns without glob metacharacters must name an existing enum; glob
// patterns (doublestar syntax) must match at least one. Empty patterns
// select everything. Results keep the order of available and contain no
// duplicates.
func MatchNames(available []string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return append([]string(nil), available...), nil
	}

	selected := make([]string, 0, len(available))
	seen := make(map[string]bool, len(available))
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			selected = append(selected, name)
		}
	}

	index := make(map[string]bool, len(available))
	for _, name := range available {
		index[name] = true
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			if !index[pattern] {
				return nil, &UnknownEnumReferenceError{Ref: pattern}
			}
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid enum pattern: %q", pattern)
		}
	}

	for _, name := range available {
		for _, pattern := range patterns {
			ok, err := doublestar.Match(pattern, name)
			if err != nil {
				return nil, fmt.Errorf("enum pattern %q: %w", pattern, err)
			}
			if ok {
				add(name)
				break
			}
		}
	}

	for _, pattern := range patterns {
		if strings.ContainsAny(pattern, "*?[{") {
			matched := false
			for _, name := range selected {
				if ok, _ := doublestar.Match(pattern, name); ok {
					matched = true
					break
				}
			}
			if !matched {
				return nil, fmt.Errorf("enum pattern %q matched nothing", pattern)
			}
		}
	}

	return selected, nil
}
