package pulse

import (
	"context"
	"time"
)

// SurveyType names one tenure milestone survey. Values are the exact
// strings the task table stores.
type SurveyType string

const (
	SurveyOneWeek     SurveyType = "1_week"
	SurveyOneMonth    SurveyType = "1_month"
	SurveyThreeMonths SurveyType = "3_months"
	SurveySixMonths   SurveyType = "6_months"
	SurveyOneYear     SurveyType = "1_year"
)

// Milestone pairs a survey type with its offset from the hire date.
type Milestone struct {
	Type SurveyType
	Days int
}

// Milestones returns the schedule in ascending order. The one-year
// entry doubles as the eligibility horizon: nobody past it gets tasks.
func Milestones() []Milestone {
	return []Milestone{
		{SurveyOneWeek, 7},
		{SurveyOneMonth, 30},
		{SurveyThreeMonths, 91},
		{SurveySixMonths, 183},
		{SurveyOneYear, 365},
	}
}

// HorizonDays is the tenure in days after which no new tasks are due.
const HorizonDays = 365

// Status is the delivery state of a task.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusSent     Status = "sent"
	StatusDeclined Status = "declined"
)

// Task is one scheduled survey for one employee.
type Task struct {
	Identity     string
	FullName     string
	Department   string
	Position     string
	Type         SurveyType
	Status       Status
	HireDate     time.Time
	DueDate      time.Time
	DateAdjusted bool
	CreatedAt    time.Time
}

// Repository is the survey task table storage.
type Repository interface {
	// Exists reports whether a task of this type was ever created for
	// the identity, regardless of status.
	Exists(ctx context.Context, identity string, t SurveyType) (bool, error)
	Create(ctx context.Context, task Task) error
}

// ScheduledEvent fires for every task written.
type ScheduledEvent struct {
	Task Task
}
