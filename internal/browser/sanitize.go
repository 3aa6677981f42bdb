package browser

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "catalog-browser/internal/common/errors"
)

// AppliedFilters maps a facet key to the values requested for it. Keys only
// appear after passing sanitization, and never with an empty value list.
type AppliedFilters map[string][]string

// Clone returns a deep copy.
func (a AppliedFilters) Clone() AppliedFilters {
	out := make(AppliedFilters, len(a))
	for k, v := range a {
		vals := make([]string, len(v))
		copy(vals, v)
		out[k] = vals
	}
	return out
}

// Sanitize validates and normalizes raw query parameters against the schema.
//
// Unknown keys are dropped silently so stale URLs keep working. The text
// facet is trimmed as a whole; every other facet is split on commas with each
// piece trimmed. A value longer than maxQueryLength rejects the entire
// request with a client error before anything reaches the engine.
func (s *Schema) Sanitize(raw map[string]string, maxQueryLength int) (AppliedFilters, error) {
	applied := AppliedFilters{}

	for key, rawValue := range raw {
		def, ok := s.byKey[key]
		if !ok {
			continue
		}

		if def.Kind == FacetText {
			value := strings.TrimSpace(rawValue)
			if len(value) > maxQueryLength {
				return nil, apperrors.NewInvalidQueryError(
					fmt.Sprintf("query for %q exceeds %d characters", key, maxQueryLength))
			}
			if value != "" {
				applied[key] = []string{value}
			}
			continue
		}

		var values []string
		for _, piece := range strings.Split(rawValue, ",") {
			piece = strings.TrimSpace(piece)
			if len(piece) > maxQueryLength {
				return nil, apperrors.NewInvalidQueryError(
					fmt.Sprintf("value for %q exceeds %d characters", key, maxQueryLength))
			}
			if piece != "" {
				values = append(values, piece)
			}
		}
		if len(values) > 0 {
			applied[key] = values
		}
	}

	return applied, nil
}

// ParsePageNumber returns the value as a positive integer, or 1 when it is
// missing, malformed, or less than one.
func ParsePageNumber(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
