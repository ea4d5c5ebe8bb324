package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/mavis-digital/hrbot/modules/hr/domain/access"
	"github.com/mavis-digital/hrbot/modules/hr/domain/pivot"
	"github.com/mavis-digital/hrbot/modules/hr/domain/pulse"
	"github.com/mavis-digital/hrbot/pkg/recordstore"
)

var errRecordStore = errors.New("record store unavailable")

type fakeSource struct {
	rows []recordstore.Fields
	err  error
}

func (f *fakeSource) GetAll(context.Context) ([]recordstore.Fields, error) {
	return f.rows, f.err
}

type fakePivot struct {
	records  map[string]pivot.Record
	nextID   int
	failOn   map[string]error
	creates  []string
	updates  []string
	archives []string
}

func newFakePivot(records ...pivot.Record) *fakePivot {
	f := &fakePivot{records: make(map[string]pivot.Record), failOn: make(map[string]error)}
	for _, rec := range records {
		f.nextID++
		if rec.ID == "" {
			rec.ID = strconv.Itoa(f.nextID)
		}
		f.records[rec.Identity] = rec
	}
	return f
}

func (f *fakePivot) GetAll(context.Context) (map[string]pivot.Record, error) {
	out := make(map[string]pivot.Record, len(f.records))
	for k, v := range f.records {
		out[k] = v
	}
	return out, nil
}

func (f *fakePivot) Create(_ context.Context, rec pivot.Record) error {
	if err := f.failOn[rec.Identity]; err != nil {
		return err
	}
	f.nextID++
	rec.ID = strconv.Itoa(f.nextID)
	rec.Archived = false
	f.records[rec.Identity] = rec
	f.creates = append(f.creates, rec.Identity)
	return nil
}

func (f *fakePivot) Update(_ context.Context, rec pivot.Record) error {
	if err := f.failOn[rec.Identity]; err != nil {
		return err
	}
	rec.Archived = false
	f.records[rec.Identity] = rec
	f.updates = append(f.updates, rec.Identity)
	return nil
}

func (f *fakePivot) Archive(_ context.Context, rec pivot.Record) error {
	if err := f.failOn[rec.Identity]; err != nil {
		return err
	}
	f.records[rec.Identity] = pivot.Record{
		ID:       rec.ID,
		Identity: rec.Identity,
		HireDate: rec.HireDate,
		Archived: true,
	}
	f.archives = append(f.archives, rec.Identity)
	return nil
}

type fakeAccess struct {
	rows   map[string]access.Record // keyed by row id
	nextID int
}

func newFakeAccess(rows ...access.Record) *fakeAccess {
	f := &fakeAccess{rows: make(map[string]access.Record)}
	for _, row := range rows {
		f.nextID++
		if row.ID == "" {
			row.ID = strconv.Itoa(f.nextID)
		}
		f.rows[row.ID] = row
	}
	return f
}

func (f *fakeAccess) GetAllGrouped(context.Context) (map[string][]access.Record, error) {
	out := make(map[string][]access.Record)
	for _, row := range f.rows {
		out[row.Identity] = append(out[row.Identity], row)
	}
	return out, nil
}

func (f *fakeAccess) GetByRole(_ context.Context, role access.Role) ([]access.Record, error) {
	var out []access.Record
	for _, row := range f.rows {
		if row.Role == role {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeAccess) Create(_ context.Context, rec access.Record) error {
	f.nextID++
	rec.ID = strconv.Itoa(f.nextID)
	f.rows[rec.ID] = rec
	return nil
}

func (f *fakeAccess) UpdateProfile(_ context.Context, recordID, fullName string, role access.Role) error {
	row, ok := f.rows[recordID]
	if !ok {
		return errors.Errorf("no row %s", recordID)
	}
	row.FullName = fullName
	row.Role = role
	f.rows[recordID] = row
	return nil
}

func (f *fakeAccess) SetRole(_ context.Context, recordID string, role access.Role) error {
	row, ok := f.rows[recordID]
	if !ok {
		return errors.Errorf("no row %s", recordID)
	}
	row.Role = role
	f.rows[recordID] = row
	return nil
}

func (f *fakeAccess) Register(_ context.Context, recordID, messengerID, registeredAt string) error {
	row, ok := f.rows[recordID]
	if !ok {
		return errors.Errorf("no row %s", recordID)
	}
	row.MessengerID = messengerID
	row.RegisteredAt = registeredAt
	f.rows[recordID] = row
	return nil
}

func (f *fakeAccess) Delete(_ context.Context, recordID string) error {
	delete(f.rows, recordID)
	return nil
}

func (f *fakeAccess) FindByPhone(_ context.Context, phone string) (access.Record, error) {
	for _, row := range f.rows {
		if row.Phone == phone {
			return row, nil
		}
	}
	return access.Record{}, access.ErrNotFound
}

func (f *fakeAccess) FindByMessenger(_ context.Context, messengerID string) (access.Record, error) {
	for _, row := range f.rows {
		if row.MessengerID == messengerID {
			return row, nil
		}
	}
	return access.Record{}, access.ErrNotFound
}

func (f *fakeAccess) FindByIdentity(_ context.Context, identity string) ([]access.Record, error) {
	return f.byIdentity(identity), nil
}

func (f *fakeAccess) byIdentity(identity string) []access.Record {
	var out []access.Record
	for _, row := range f.rows {
		if row.Identity == identity {
			out = append(out, row)
		}
	}
	return out
}

type fakePulse struct {
	existing map[string]struct{}
	created  []pulse.Task
	failures int // fail this many Create calls before succeeding
}

func newFakePulse() *fakePulse {
	return &fakePulse{existing: make(map[string]struct{})}
}

func pulseKey(identity string, t pulse.SurveyType) string {
	return fmt.Sprintf("%s/%s", identity, t)
}

func (f *fakePulse) Exists(_ context.Context, identity string, t pulse.SurveyType) (bool, error) {
	_, ok := f.existing[pulseKey(identity, t)]
	return ok, nil
}

func (f *fakePulse) Create(_ context.Context, task pulse.Task) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("transient store failure")
	}
	f.existing[pulseKey(task.Identity, task.Type)] = struct{}{}
	f.created = append(f.created, task)
	return nil
}
