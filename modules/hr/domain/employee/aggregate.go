package employee

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mavis-digital/hrbot/modules/hr/domain/organization"
	"github.com/mavis-digital/hrbot/pkg/contacts"
	"github.com/mavis-digital/hrbot/pkg/recordstore"
)

// SourceRepository reads the raw per-employment rows exported from the
// HR system of record.
type SourceRepository interface {
	GetAll(ctx context.Context) ([]recordstore.Fields, error)
}

// Aggregate folds raw source rows into one Employee per identity.
// Rows without an identity key are dropped; an identity whose first row
// lacks a full name is dropped entirely. The result is independent of
// row order except for the Employments slice, whose derived projections
// are all set-based.
func Aggregate(rows []recordstore.Fields) map[string]*Employee {
	grouped := make(map[string][]recordstore.Fields)
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		identity := strings.TrimSpace(row.Str("Name"))
		if identity == "" {
			continue
		}
		if _, seen := grouped[identity]; !seen {
			order = append(order, identity)
		}
		grouped[identity] = append(grouped[identity], row)
	}

	out := make(map[string]*Employee, len(grouped))
	for _, identity := range order {
		group := grouped[identity]
		fullName := strings.TrimSpace(group[0].Str("FIO"))
		if fullName == "" {
			continue
		}

		emp := &Employee{
			Identity:         identity,
			FullName:         fullName,
			PreviousSurnames: make(contacts.Set),
			Phones:           make(contacts.Set),
			ComparisonTokens: make(contacts.Set),
		}

		for _, row := range group {
			hireDate := ParseDate(row.Str("Date_employment"))
			if !hireDate.IsZero() && (emp.HireDate.IsZero() || hireDate.Before(emp.HireDate)) {
				emp.HireDate = hireDate
			}

			if prev := strings.TrimSpace(row.Str("Previous_surname")); prev != "" {
				emp.PreviousSurnames[prev] = struct{}{}
			}

			rowPhones := contacts.SplitPhones(row.Str("Phone_private"))
			for _, p := range rowPhones {
				emp.Phones[p] = struct{}{}
			}

			emp.Employments = append(emp.Employments, employmentFromRow(row, hireDate))
			addTokens(emp.ComparisonTokens, row, rowPhones)
		}

		out[identity] = emp
	}
	return out
}

func employmentFromRow(row recordstore.Fields, hireDate time.Time) Employment {
	e := Employment{
		Position: strings.TrimSpace(row.Str("Position")),
		HireDate: hireDate,
		IsMain:   strings.TrimSpace(row.Str("Is_main")) == "Да",
	}
	if title := strings.TrimSpace(row.Str("Company")); title != "" {
		e.Company = &organization.Company{
			ID:      organization.SlugID(title),
			Title:   title,
			Segment: organization.SegmentBoth,
		}
	}
	if title := strings.TrimSpace(row.Str("Department")); title != "" {
		e.Department = &organization.Department{
			ID:    organization.SlugID(title),
			Title: title,
		}
	}
	return e
}

// addTokens materializes one comparison token per (row, phone) pair.
// A row with no phones still yields a token with an empty phone slot,
// so losing the last phone registers as a change.
func addTokens(tokens contacts.Set, row recordstore.Fields, phones []string) {
	if len(phones) == 0 {
		phones = []string{""}
	}
	company := strings.TrimSpace(row.Str("Company"))
	department := strings.TrimSpace(row.Str("Department"))
	position := strings.TrimSpace(row.Str("Position"))
	fio := strings.TrimSpace(row.Str("FIO"))
	prev := strings.TrimSpace(row.Str("Previous_surname"))
	for _, phone := range phones {
		token := fmt.Sprintf("%s|%s|%s|%s|%s|%s", company, department, position, fio, prev, phone)
		tokens[token] = struct{}{}
	}
}

// ParseDate parses the bare ISO date the source exports, tolerating a
// trailing timestamp some exports attach. Unparseable input becomes the
// zero time.
func ParseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
