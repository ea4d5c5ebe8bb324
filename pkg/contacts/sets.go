package contacts

import (
	"sort"
	"strings"
)

// Set is a plain string set used for field comparison.
type Set map[string]struct{}

func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if _, ok := other[v]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the set's values in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Join renders the set as the canonical comma-joined pivot field.
func (s Set) Join() string {
	return strings.Join(s.Sorted(), ", ")
}

// ValuesToSet normalizes a stored field that may arrive as a
// comma-delimited string, a list of strings, or nothing at all into a
// set of trimmed non-empty tokens.
func ValuesToSet(v any) Set {
	out := make(Set)
	for _, raw := range rawStrings(v) {
		for _, token := range strings.Split(raw, ",") {
			token = strings.TrimSpace(token)
			if token != "" {
				out[token] = struct{}{}
			}
		}
	}
	return out
}

// PhonesToSet normalizes a stored phone field of either shape into a
// set of canonical numbers.
func PhonesToSet(v any) Set {
	out := make(Set)
	for _, raw := range rawStrings(v) {
		for _, p := range SplitPhones(raw) {
			out[p] = struct{}{}
		}
	}
	return out
}

// SurnameToString degrades a previous-surname field to a single
// string: first element if it is a list, the raw value if it is a
// string, empty otherwise.
func SurnameToString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		if len(t) == 0 {
			return ""
		}
		return t[0]
	case []any:
		if len(t) == 0 {
			return ""
		}
		if s, ok := t[0].(string); ok {
			return s
		}
		return ""
	default:
		return ""
	}
}

func rawStrings(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
