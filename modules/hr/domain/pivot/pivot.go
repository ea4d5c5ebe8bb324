package pivot

import (
	"context"
	"strings"

	"github.com/mavis-digital/hrbot/modules/hr/domain/employee"
	"github.com/mavis-digital/hrbot/modules/hr/domain/organization"
	"github.com/mavis-digital/hrbot/pkg/contacts"
)

// Record is one row of the consolidated employee table keyed by
// identity. String set fields are stored comma-joined in sorted order.
type Record struct {
	ID              string
	Identity        string
	FullName        string
	PreviousSurname string
	Segment         organization.Segment
	Companies       string
	Departments     string
	Positions       string
	HireDate        string // ISO date or empty
	Phones          []string
	Archived        bool
}

// Repository is the consolidated table storage. GetAll returns rows
// keyed by identity, archived ones included.
type Repository interface {
	GetAll(ctx context.Context) (map[string]Record, error)
	Create(ctx context.Context, rec Record) error
	Update(ctx context.Context, rec Record) error
	Archive(ctx context.Context, rec Record) error
}

// FromEmployee projects an aggregate onto a pivot row. The row id and
// archived flag belong to the stored copy and stay zero here.
func FromEmployee(e *employee.Employee) Record {
	rec := Record{
		Identity:    e.Identity,
		FullName:    e.FullName,
		Segment:     organization.DetectSegment(e.CompanyTitles()),
		Companies:   strings.Join(e.CompanyTitles(), ", "),
		Departments: strings.Join(e.DepartmentTitles(), ", "),
		Positions:   strings.Join(e.PositionTitles(), ", "),
		Phones:      e.Phones.Sorted(),
	}
	if surnames := e.PreviousSurnames.Sorted(); len(surnames) > 0 {
		rec.PreviousSurname = surnames[0]
	}
	if !e.HireDate.IsZero() {
		rec.HireDate = e.HireDate.Format(employee.DateLayout)
	}
	return rec
}

// Changed reports whether candidate differs from existing in any field
// the sync is allowed to rewrite. Hire date is deliberately excluded:
// it is sticky and handled separately.
func Changed(existing, candidate Record) bool {
	if existing.FullName != candidate.FullName {
		return true
	}
	if existing.PreviousSurname != candidate.PreviousSurname {
		return true
	}
	if !contacts.ValuesToSet(existing.Companies).Equal(contacts.ValuesToSet(candidate.Companies)) {
		return true
	}
	if !contacts.ValuesToSet(existing.Departments).Equal(contacts.ValuesToSet(candidate.Departments)) {
		return true
	}
	if !contacts.ValuesToSet(existing.Positions).Equal(contacts.ValuesToSet(candidate.Positions)) {
		return true
	}
	if !contacts.PhonesToSet(existing.Phones).Equal(contacts.PhonesToSet(candidate.Phones)) {
		return true
	}
	return false
}
