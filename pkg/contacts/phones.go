package contacts

import (
	"fmt"
	"sort"
	"strings"
)

// NormalizePhone canonicalizes a single raw phone string.
// Mobiles come out as +7 followed by 10 digits, seven-digit
// landlines as NNN-NN-NN. Anything else is rejected.
func NormalizePhone(raw string) (string, bool) {
	digits := onlyDigits(raw)

	switch {
	case len(digits) == 11 && digits[0] == '8':
		return "+7" + digits[1:], true
	case len(digits) == 11 && digits[0] == '7':
		return "+" + digits, true
	case len(digits) == 10:
		return "+7" + digits, true
	case len(digits) == 7:
		return fmt.Sprintf("%s-%s-%s", digits[:3], digits[3:5], digits[5:]), true
	default:
		return "", false
	}
}

// IsMobile reports whether p is a canonical mobile number: +7 prefix
// and exactly 11 digits. Landlines and garbage never qualify.
func IsMobile(p string) bool {
	return strings.HasPrefix(p, "+7") && len(onlyDigits(p)) == 11
}

// SplitPhones extracts every phone found in a free-text field such as
// "+7 911 111-11-11, 911-22-33". Parts are split on commas and
// semicolons first; a part that does not parse as a whole and is not a
// spaced-out landline is re-split on whitespace.
func SplitPhones(raw string) []string {
	found := make(map[string]struct{})

	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if p, ok := NormalizePhone(part); ok {
			found[p] = struct{}{}
			continue
		}
		if len(onlyDigits(part)) == 7 {
			continue
		}
		for _, token := range strings.Fields(part) {
			if p, ok := NormalizePhone(token); ok {
				found[p] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(found))
	for p := range found {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
