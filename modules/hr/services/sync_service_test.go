package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/mavis-digital/hrbot/modules/hr/domain/pivot"
	"github.com/mavis-digital/hrbot/pkg/eventbus"
	"github.com/mavis-digital/hrbot/pkg/recordstore"
	"github.com/mavis-digital/hrbot/pkg/workcal"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newSyncFixture(t *testing.T, source *fakeSource, pivotRepo *fakePivot) (*SyncService, *fakePulse) {
	t.Helper()
	log := testLogger()
	bus := eventbus.NewEventPublisher(log)
	pulseRepo := newFakePulse()
	pulses := NewPulseService(pulseRepo, bus, log, workcal.Default(), time.Millisecond)
	pulses.now = func() time.Time { return testNow }

	svc := NewSyncService(source, pivotRepo, pulses, bus, log)
	svc.now = func() time.Time { return testNow }
	return svc, pulseRepo
}

func sourceRow(identity, fio, phone, date, company string) recordstore.Fields {
	return recordstore.Fields{
		"Name":            identity,
		"FIO":             fio,
		"Phone_private":   phone,
		"Date_employment": date,
		"Company":         company,
		"Department":      "Отдел продаж",
		"Position":        "Менеджер",
		"Is_main":         "Да",
	}
}

func TestSyncCreatesNewEmployeeWithSurveys(t *testing.T) {
	source := &fakeSource{rows: []recordstore.Fields{
		sourceRow("111", "Иванов Иван", "+79991234567", "2026-08-20", "Мавис-Строй"),
	}}
	pivotRepo := newFakePivot()
	svc, pulseRepo := newSyncFixture(t, source, pivotRepo)

	report, err := svc.SyncNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, Report{Created: 1}, report)
	require.Equal(t, []string{"111"}, pivotRepo.creates)

	created := pivotRepo.records["111"]
	require.Equal(t, "Иванов Иван", created.FullName)
	require.Equal(t, "2026-08-20", created.HireDate)
	require.False(t, created.Archived)

	// Hired 12 days before the run: only the 1-week milestone is past.
	require.Len(t, pulseRepo.created, 4)
}

func TestSyncHireDateIsSticky(t *testing.T) {
	source := &fakeSource{rows: []recordstore.Fields{
		sourceRow("111", "Иванов Пётр", "+79991234567", "2026-05-01", "Мавис-Строй"),
	}}
	pivotRepo := newFakePivot(pivot.Record{
		Identity:    "111",
		FullName:    "Иванов Иван",
		Companies:   "Мавис-Строй",
		Departments: "Отдел продаж",
		Positions:   "Менеджер",
		HireDate:    "2020-01-15",
		Phones:      []string{"+79991234567"},
	})
	svc, pulseRepo := newSyncFixture(t, source, pivotRepo)

	report, err := svc.SyncNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, Report{Updated: 1}, report)
	require.Equal(t, "2020-01-15", pivotRepo.records["111"].HireDate)
	require.Equal(t, "Иванов Пётр", pivotRepo.records["111"].FullName)
	require.Empty(t, pulseRepo.created)
}

func TestSyncAdoptsDateWhenMissingAndSchedulesSurveys(t *testing.T) {
	source := &fakeSource{rows: []recordstore.Fields{
		sourceRow("111", "Иванов Иван", "+79991234567", "2026-08-20", "Мавис-Строй"),
	}}
	pivotRepo := newFakePivot(pivot.Record{
		Identity:    "111",
		FullName:    "Иванов Иван",
		Companies:   "Мавис-Строй",
		Departments: "Отдел продаж",
		Positions:   "Менеджер",
		HireDate:    "",
		Phones:      []string{"+79991234567"},
	})
	svc, pulseRepo := newSyncFixture(t, source, pivotRepo)

	report, err := svc.SyncNow(context.Background())
	require.NoError(t, err)
	// Nothing else changed, but the freshly adopted date forces the
	// update and triggers survey scheduling.
	require.Equal(t, Report{Updated: 1}, report)
	require.Equal(t, "2026-08-20", pivotRepo.records["111"].HireDate)
	require.NotEmpty(t, pulseRepo.created)
}

func TestSyncUnchangedEmployeeIsSkipped(t *testing.T) {
	source := &fakeSource{rows: []recordstore.Fields{
		sourceRow("111", "Иванов Иван", "+79991234567", "2020-01-15", "Мавис-Строй"),
	}}
	pivotRepo := newFakePivot(pivot.Record{
		Identity:    "111",
		FullName:    "Иванов Иван",
		Companies:   "Мавис-Строй",
		Departments: "Отдел продаж",
		Positions:   "Менеджер",
		HireDate:    "2020-01-15",
		Phones:      []string{"+79991234567"},
	})
	svc, _ := newSyncFixture(t, source, pivotRepo)

	report, err := svc.SyncNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, Report{Unchanged: 1}, report)
	require.Empty(t, pivotRepo.updates)
}

func TestSyncArchivesMissingEmployee(t *testing.T) {
	source := &fakeSource{rows: []recordstore.Fields{
		sourceRow("111", "Иванов Иван", "+79991234567", "2020-01-15", "Мавис-Строй"),
	}}
	pivotRepo := newFakePivot(
		pivot.Record{
			Identity:    "111",
			FullName:    "Иванов Иван",
			Companies:   "Мавис-Строй",
			Departments: "Отдел продаж",
			Positions:   "Менеджер",
			HireDate:    "2020-01-15",
			Phones:      []string{"+79991234567"},
		},
		pivot.Record{
			Identity: "222",
			FullName: "Уволенный Сотрудник",
			HireDate: "2019-03-01",
		},
		pivot.Record{
			Identity: "333",
			HireDate: "2018-01-01",
			Archived: true,
		},
	)
	svc, _ := newSyncFixture(t, source, pivotRepo)

	report, err := svc.SyncNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, Report{Unchanged: 1, Archived: 1}, report)
	require.Equal(t, []string{"222"}, pivotRepo.archives)

	archived := pivotRepo.records["222"]
	require.True(t, archived.Archived)
	require.Equal(t, "2019-03-01", archived.HireDate)
	require.Empty(t, archived.FullName)
}

func TestSyncReactivatesArchivedWithOldHireDate(t *testing.T) {
	// Archived row keeps its old hire date; when the person reappears
	// with a new date the stored one wins and the row is reactivated.
	source := &fakeSource{rows: []recordstore.Fields{
		sourceRow("111", "Иванов Иван", "+79991234567", "2026-08-01", "Мавис-Строй"),
	}}
	pivotRepo := newFakePivot(pivot.Record{
		Identity: "111",
		HireDate: "2019-03-01",
		Archived: true,
	})
	svc, pulseRepo := newSyncFixture(t, source, pivotRepo)

	report, err := svc.SyncNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, Report{Updated: 1}, report)

	reactivated := pivotRepo.records["111"]
	require.False(t, reactivated.Archived)
	require.Equal(t, "2019-03-01", reactivated.HireDate)
	require.Equal(t, "Иванов Иван", reactivated.FullName)
	// The onboarding timer was not restarted, so no new surveys.
	require.Empty(t, pulseRepo.created)
}

func TestSyncEmptySourceIsNoOp(t *testing.T) {
	pivotRepo := newFakePivot(pivot.Record{
		Identity: "111",
		FullName: "Иванов Иван",
		HireDate: "2020-01-15",
	})
	svc, _ := newSyncFixture(t, &fakeSource{}, pivotRepo)

	report, err := svc.SyncNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, Report{}, report)
	require.Empty(t, pivotRepo.archives)
}

func TestSyncIsolatesPerIdentityFailures(t *testing.T) {
	source := &fakeSource{rows: []recordstore.Fields{
		sourceRow("111", "Падающий Сотрудник", "+79991234567", "2020-01-15", "Мавис-Строй"),
		sourceRow("222", "Здоровый Сотрудник", "+79990000001", "2020-01-15", "Мавис-Строй"),
	}}
	pivotRepo := newFakePivot()
	pivotRepo.failOn["111"] = errRecordStore
	svc, _ := newSyncFixture(t, source, pivotRepo)

	report, err := svc.SyncNow(context.Background())
	require.NoError(t, err)
	require.Equal(t, Report{Created: 1, Errors: 1}, report)
	require.Equal(t, []string{"222"}, pivotRepo.creates)
}
