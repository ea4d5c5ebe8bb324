package employee

import (
	"time"

	"github.com/mavis-digital/hrbot/modules/hr/domain/organization"
	"github.com/mavis-digital/hrbot/pkg/contacts"
)

// DateLayout is the wire format of every date the HR source and the
// pivot table exchange.
const DateLayout = "2006-01-02"

// Employment is one concurrent position held by an employee. A person
// working for several group companies arrives as several source rows
// and ends up with several employments.
type Employment struct {
	Company    *organization.Company
	Department *organization.Department
	Position   string
	HireDate   time.Time // zero when the source row carried no parseable date
	IsMain     bool
}

// Employee is the per-identity aggregate folded from all raw source
// rows sharing one identity key.
type Employee struct {
	Identity         string
	FullName         string
	PreviousSurnames contacts.Set
	Phones           contacts.Set
	Employments      []Employment
	// HireDate is the minimum non-zero hire date across all
	// employments, recomputed on every aggregation pass.
	HireDate time.Time
	// ComparisonTokens carries one string per (row, phone) pair so two
	// aggregates can be compared row-for-row. Not persisted.
	ComparisonTokens contacts.Set
}

// CompanyTitles returns the distinct non-empty company display names.
func (e *Employee) CompanyTitles() []string {
	set := make(contacts.Set)
	for _, emp := range e.Employments {
		if emp.Company != nil && emp.Company.Title != "" {
			set[emp.Company.Title] = struct{}{}
		}
	}
	return set.Sorted()
}

// DepartmentTitles returns the distinct non-empty department names.
func (e *Employee) DepartmentTitles() []string {
	set := make(contacts.Set)
	for _, emp := range e.Employments {
		if emp.Department != nil && emp.Department.Title != "" {
			set[emp.Department.Title] = struct{}{}
		}
	}
	return set.Sorted()
}

// PositionTitles returns the distinct non-empty position names.
func (e *Employee) PositionTitles() []string {
	set := make(contacts.Set)
	for _, emp := range e.Employments {
		if emp.Position != "" {
			set[emp.Position] = struct{}{}
		}
	}
	return set.Sorted()
}

// MainDepartment picks the department shown on pulse tasks: the first
// employment that has one.
func (e *Employee) MainDepartment() string {
	for _, emp := range e.Employments {
		if emp.Department != nil {
			return emp.Department.Title
		}
	}
	return ""
}

// MainPosition picks the position shown on pulse tasks.
func (e *Employee) MainPosition() string {
	for _, emp := range e.Employments {
		if emp.Position != "" {
			return emp.Position
		}
	}
	return ""
}
