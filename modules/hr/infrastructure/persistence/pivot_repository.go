package persistence

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/mavis-digital/hrbot/modules/hr/domain/organization"
	"github.com/mavis-digital/hrbot/modules/hr/domain/pivot"
	"github.com/mavis-digital/hrbot/pkg/contacts"
	"github.com/mavis-digital/hrbot/pkg/recordstore"
)

// PivotRepository stores the consolidated employee table.
type PivotRepository struct {
	client  *recordstore.Client
	tableID string
}

func NewPivotRepository(client *recordstore.Client, tableID string) *PivotRepository {
	return &PivotRepository{client: client, tableID: tableID}
}

func (r *PivotRepository) GetAll(ctx context.Context) (map[string]pivot.Record, error) {
	records, err := r.client.GetAll(ctx, r.tableID, recordstore.Query{})
	if err != nil {
		return nil, errors.Wrap(err, "fetch pivot rows")
	}
	out := make(map[string]pivot.Record, len(records))
	for _, rec := range records {
		mapped := recordToPivot(rec)
		if mapped.Identity == "" {
			continue
		}
		out[mapped.Identity] = mapped
	}
	return out, nil
}

func (r *PivotRepository) Create(ctx context.Context, rec pivot.Record) error {
	_, err := r.client.Create(ctx, r.tableID, pivotToFields(rec))
	return errors.Wrapf(err, "create pivot row %s", rec.Identity)
}

// Update rewrites the tracked fields and clears the archived flag: any
// update means the employee is currently active.
func (r *PivotRepository) Update(ctx context.Context, rec pivot.Record) error {
	err := r.client.Update(ctx, r.tableID, rec.ID, pivotToFields(rec))
	return errors.Wrapf(err, "update pivot row %s", rec.Identity)
}

// Archive blanks everything except the identity and the hire date. The
// hire date survives so a re-hire elsewhere in the group does not
// restart the onboarding timer.
func (r *PivotRepository) Archive(ctx context.Context, rec pivot.Record) error {
	fields := recordstore.Fields{
		"Name":             rec.Identity,
		"Date_employment":  nilIfEmpty(rec.HireDate),
		"FIO":              nil,
		"Previous_surname": nil,
		"Company_segment":  nil,
		"Companies":        nil,
		"Departments":      nil,
		"Positions":        nil,
		"Internal_numbers": nil,
		"Email_mavis":      nil,
		"Email_other":      nil,
		"Email_votonia":    nil,
		"Phones":           nil,
		"Location":         nil,
		"Photo":            nil,
		"Is_archived":      true,
	}
	err := r.client.Update(ctx, r.tableID, rec.ID, fields)
	return errors.Wrapf(err, "archive pivot row %s", rec.Identity)
}

func recordToPivot(rec recordstore.Record) pivot.Record {
	f := rec.Fields
	return pivot.Record{
		ID:              rec.ID,
		Identity:        strings.TrimSpace(f.Str("Name")),
		FullName:        strings.TrimSpace(f.Str("FIO")),
		PreviousSurname: contacts.SurnameToString(f["Previous_surname"]),
		Segment:         organization.Segment(f.Str("Company_segment")),
		Companies:       f.Str("Companies"),
		Departments:     f.Str("Departments"),
		Positions:       f.Str("Positions"),
		HireDate:        f.Str("Date_employment"),
		Phones:          contacts.PhonesToSet(f["Phones"]).Sorted(),
		Archived:        f.Bool("Is_archived"),
	}
}

func pivotToFields(rec pivot.Record) recordstore.Fields {
	return recordstore.Fields{
		"Name":             rec.Identity,
		"FIO":              rec.FullName,
		"Previous_surname": nilIfEmpty(rec.PreviousSurname),
		"Company_segment":  string(rec.Segment),
		"Companies":        rec.Companies,
		"Departments":      rec.Departments,
		"Positions":        rec.Positions,
		"Date_employment":  nilIfEmpty(rec.HireDate),
		"Phones":           strings.Join(rec.Phones, ", "),
		"Is_archived":      false,
	}
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
