package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mavis-digital/hrbot/modules/hr/domain/employee"
	"github.com/mavis-digital/hrbot/modules/hr/domain/pivot"
	"github.com/mavis-digital/hrbot/pkg/eventbus"
)

// Report summarizes one pivot sync run.
type Report struct {
	Created   int
	Updated   int
	Unchanged int
	Archived  int
	Errors    int
}

// SyncService reconciles the consolidated employee table with the HR
// source export. Runs are serialized: the scheduler and the manual
// trigger share one mutex.
type SyncService struct {
	mu     sync.Mutex
	source employee.SourceRepository
	pivot  pivot.Repository
	pulses *PulseService
	bus    eventbus.EventBus
	log    *logrus.Logger
	now    func() time.Time
}

func NewSyncService(
	source employee.SourceRepository,
	pivotRepo pivot.Repository,
	pulses *PulseService,
	bus eventbus.EventBus,
	log *logrus.Logger,
) *SyncService {
	return &SyncService{
		source: source,
		pivot:  pivotRepo,
		pulses: pulses,
		bus:    bus,
		log:    log,
		now:    time.Now,
	}
}

// SyncNow runs one full reconciliation pass. Per-identity failures are
// counted and skipped; only a failure to fetch either table aborts.
func (s *SyncService) SyncNow(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.log.WithField("run_id", uuid.NewString())
	entry.Info("pivot sync started")

	rows, err := s.source.GetAll(ctx)
	if err != nil {
		return Report{}, errors.Wrap(err, "fetch source")
	}
	if len(rows) == 0 {
		entry.Warn("source export is empty, nothing to sync")
		return Report{}, nil
	}

	aggregates := employee.Aggregate(rows)
	existing, err := s.pivot.GetAll(ctx)
	if err != nil {
		return Report{}, errors.Wrap(err, "fetch pivot")
	}

	var report Report
	oneYearAgo := dateOnly(s.now()).AddDate(-1, 0, 0)

	identities := make([]string, 0, len(aggregates))
	for identity := range aggregates {
		identities = append(identities, identity)
	}
	sort.Strings(identities)

	for _, identity := range identities {
		emp := aggregates[identity]
		if err := s.syncOne(ctx, entry, emp, existing, oneYearAgo, &report); err != nil {
			report.Errors++
			s.bus.Publish(pivot.SyncErrorEvent{Identity: identity})
			entry.WithError(err).WithField("identity", identity).Error("identity sync failed")
		}
	}

	s.archiveMissing(ctx, entry, aggregates, existing, &report)

	entry.WithFields(logrus.Fields{
		"created":   report.Created,
		"updated":   report.Updated,
		"unchanged": report.Unchanged,
		"archived":  report.Archived,
		"errors":    report.Errors,
	}).Info("pivot sync finished")
	return report, nil
}

func (s *SyncService) syncOne(
	ctx context.Context,
	entry *logrus.Entry,
	emp *employee.Employee,
	existing map[string]pivot.Record,
	oneYearAgo time.Time,
	report *Report,
) error {
	candidate := pivot.FromEmployee(emp)

	current, known := existing[emp.Identity]
	if !known {
		if err := s.pivot.Create(ctx, candidate); err != nil {
			return err
		}
		report.Created++
		s.bus.Publish(pivot.CreatedEvent{Record: candidate})
		entry.WithField("identity", emp.Identity).Info("pivot row created")

		if s.pulseEligible(emp.HireDate, oneYearAgo) {
			s.pulses.ScheduleFor(ctx, emp)
		}
		return nil
	}

	candidate.ID = current.ID

	// The stored hire date is sticky: a different date from the source
	// never overwrites it. It is only adopted when the stored one is
	// empty.
	dateAddedNow := false
	if current.HireDate != "" {
		candidate.HireDate = current.HireDate
	} else if candidate.HireDate != "" {
		dateAddedNow = true
	}

	if !pivot.Changed(current, candidate) && !dateAddedNow {
		report.Unchanged++
		return nil
	}

	if err := s.pivot.Update(ctx, candidate); err != nil {
		return err
	}
	report.Updated++
	s.bus.Publish(pivot.UpdatedEvent{Record: candidate})
	entry.WithField("identity", emp.Identity).Info("pivot row updated")

	if dateAddedNow && s.pulseEligible(emp.HireDate, oneYearAgo) {
		s.pulses.ScheduleFor(ctx, emp)
	}
	return nil
}

func (s *SyncService) pulseEligible(hireDate, oneYearAgo time.Time) bool {
	return !hireDate.IsZero() && !hireDate.Before(oneYearAgo)
}

func (s *SyncService) archiveMissing(
	ctx context.Context,
	entry *logrus.Entry,
	aggregates map[string]*employee.Employee,
	existing map[string]pivot.Record,
	report *Report,
) {
	identities := make([]string, 0, len(existing))
	for identity := range existing {
		identities = append(identities, identity)
	}
	sort.Strings(identities)

	for _, identity := range identities {
		current := existing[identity]
		if _, present := aggregates[identity]; present || current.Archived {
			continue
		}
		if err := s.pivot.Archive(ctx, current); err != nil {
			report.Errors++
			s.bus.Publish(pivot.SyncErrorEvent{Identity: identity})
			entry.WithError(err).WithField("identity", identity).Error("archive failed")
			continue
		}
		report.Archived++
		s.bus.Publish(pivot.ArchivedEvent{Identity: identity})
		entry.WithField("identity", identity).Info("pivot row archived")
	}
}
