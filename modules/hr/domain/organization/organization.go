package organization

import (
	"strings"
)

// Segment is the business-unit classification derived from the set of
// companies an employee works for. Values are the exact strings the
// pivot table stores.
type Segment string

const (
	SegmentMavis   Segment = "МАВИС"
	SegmentVotonya Segment = "ВОТОНЯ"
	SegmentBoth    Segment = "ОБА"
)

type Department struct {
	ID    string
	Title string
}

type Company struct {
	ID      string
	Title   string
	Segment Segment
}

// SlugID derives the lightweight id used for companies and
// departments: lower-cased title with spaces replaced by underscores.
// Uniqueness across different display names is not enforced.
func SlugID(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "_")
}

// Known legal entities of the МАВИС group whose names do not contain
// the brand keyword.
var mavisCompanies = map[string]struct{}{
	"соцстрой":           {},
	"мавис-монтаж":       {},
	"мавис-недвижимость": {},
	"мавис-монолит":      {},
	"стройарсенал":       {},
	"мавис-инновации":    {},
	"мавис-град":         {},
	"мавис-строй":        {},
	"мавис-бетон":        {},
	"графстрой":          {},
	"стройтек":           {},
	"петергофстрой":      {},
	"новаград":           {},
	"лигастрой":          {},
	"мавис":              {},
}

var quoteReplacer = strings.NewReplacer(`"`, "", "'", "", "«", "", "»", "")

func cleanName(name string) string {
	return strings.ToLower(strings.TrimSpace(quoteReplacer.Replace(name)))
}

func isMavis(name string) bool {
	cleaned := cleanName(name)
	if _, ok := mavisCompanies[cleaned]; ok {
		return true
	}
	return strings.Contains(cleaned, "мавис")
}

// DetectSegment classifies an employee by their set of company names:
// a single company containing the ВОТОНЯ keyword wins; otherwise, if
// every company belongs to the МАВИС group, МАВИС; otherwise ОБА.
// An empty set defaults to МАВИС.
func DetectSegment(companyNames []string) Segment {
	cleaned := make([]string, 0, len(companyNames))
	for _, name := range companyNames {
		if name != "" {
			cleaned = append(cleaned, cleanName(name))
		}
	}
	if len(cleaned) == 0 {
		return SegmentMavis
	}

	if len(cleaned) == 1 && strings.Contains(cleaned[0], "вотоня") {
		return SegmentVotonya
	}

	for _, name := range cleaned {
		if !isMavis(name) {
			return SegmentBoth
		}
	}
	return SegmentMavis
}
