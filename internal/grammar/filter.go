package grammar

import "path"

// ValidatePatterns checks allow/skip patterns up front so a malformed
// pattern fails the grammar entry instead of surfacing mid-enumeration.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return &GlobError{Pattern: p}
		}
	}
	return nil
}

// Accepts applies shell-style glob filtering to a generated identifier.
// Any skip match rejects, regardless of allow. An empty allow list allows
// everything; a non-empty one requires at least one match.
func Accepts(code string, allow, skip []string) (bool, error) {
	for _, pattern := range skip {
		matched, err := path.Match(pattern, code)
		if err != nil {
			return false, &GlobError{Pattern: pattern}
		}
		if matched {
			return false, nil
		}
	}
	if len(allow) == 0 {
		return true, nil
	}
	for _, pattern := range allow {
		matched, err := path.Match(pattern, code)
		if err != nil {
			return false, &GlobError{Pattern: pattern}
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
