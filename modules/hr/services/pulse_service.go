package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mavis-digital/hrbot/modules/hr/domain/employee"
	"github.com/mavis-digital/hrbot/modules/hr/domain/pulse"
	"github.com/mavis-digital/hrbot/pkg/eventbus"
	"github.com/mavis-digital/hrbot/pkg/recordstore"
	"github.com/mavis-digital/hrbot/pkg/workcal"
)

const pulseWriteAttempts = 3

// PulseService schedules tenure milestone surveys for employees whose
// hire date became known within the last year.
type PulseService struct {
	repo       pulse.Repository
	bus        eventbus.EventBus
	log        *logrus.Logger
	cal        *workcal.Calendar
	retryDelay time.Duration
	now        func() time.Time
}

func NewPulseService(
	repo pulse.Repository,
	bus eventbus.EventBus,
	log *logrus.Logger,
	cal *workcal.Calendar,
	retryDelay time.Duration,
) *PulseService {
	return &PulseService{
		repo:       repo,
		bus:        bus,
		log:        log,
		cal:        cal,
		retryDelay: retryDelay,
		now:        time.Now,
	}
}

// ScheduleFor creates one task per milestone whose due date is still in
// the future, skipping milestones that already have a task. Returns the
// number of tasks written; per-task failures are logged and do not
// abort the rest.
func (s *PulseService) ScheduleFor(ctx context.Context, e *employee.Employee) int {
	entry := s.log.WithFields(logrus.Fields{"identity": e.Identity, "name": e.FullName})

	if e.HireDate.IsZero() {
		entry.Info("no hire date, surveys not scheduled")
		return 0
	}

	today := dateOnly(s.now())
	if today.After(e.HireDate.AddDate(0, 0, pulse.HorizonDays)) {
		entry.Info("tenure past one year, surveys not scheduled")
		return 0
	}

	created := 0
	for _, m := range pulse.Milestones() {
		due := e.HireDate.AddDate(0, 0, m.Days)
		if !due.After(today) {
			continue
		}

		exists, err := s.repo.Exists(ctx, e.Identity, m.Type)
		if err != nil {
			entry.WithError(err).WithField("type", m.Type).Error("survey task existence check failed")
			continue
		}
		if exists {
			entry.WithField("type", m.Type).Debug("survey task already exists")
			continue
		}

		adjusted, wasAdjusted := s.cal.Adjust(due)
		if wasAdjusted {
			entry.WithFields(logrus.Fields{
				"type": m.Type,
				"from": due.Format(employee.DateLayout),
				"to":   adjusted.Format(employee.DateLayout),
			}).Info("survey date moved to next working day")
		}

		task := pulse.Task{
			Identity:     e.Identity,
			FullName:     e.FullName,
			Department:   e.MainDepartment(),
			Position:     e.MainPosition(),
			Type:         m.Type,
			Status:       pulse.StatusWaiting,
			HireDate:     e.HireDate,
			DueDate:      adjusted,
			DateAdjusted: wasAdjusted,
			CreatedAt:    s.now(),
		}

		err = recordstore.Retry(ctx, pulseWriteAttempts, s.retryDelay, func() error {
			return s.repo.Create(ctx, task)
		})
		if err != nil {
			entry.WithError(err).WithField("type", m.Type).Error("survey task write failed")
			continue
		}

		created++
		s.bus.Publish(pulse.ScheduledEvent{Task: task})
	}

	entry.WithField("created", created).Info("survey scheduling done")
	return created
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
