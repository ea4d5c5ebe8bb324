package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/mavis-digital/hrbot/modules/hr/domain/access"
	"github.com/mavis-digital/hrbot/pkg/recordstore"
)

// AccessRepository stores the phone-keyed authorization table.
type AccessRepository struct {
	client  *recordstore.Client
	tableID string
}

func NewAccessRepository(client *recordstore.Client, tableID string) *AccessRepository {
	return &AccessRepository{client: client, tableID: tableID}
}

func (r *AccessRepository) GetAllGrouped(ctx context.Context) (map[string][]access.Record, error) {
	records, err := r.client.GetAll(ctx, r.tableID, recordstore.Query{})
	if err != nil {
		return nil, errors.Wrap(err, "fetch authorization rows")
	}
	out := make(map[string][]access.Record)
	for _, rec := range records {
		mapped := recordToAccess(rec)
		if mapped.Identity == "" {
			continue
		}
		out[mapped.Identity] = append(out[mapped.Identity], mapped)
	}
	return out, nil
}

func (r *AccessRepository) GetByRole(ctx context.Context, role access.Role) ([]access.Record, error) {
	records, err := r.client.GetAll(ctx, r.tableID, recordstore.Query{
		Where: fmt.Sprintf("(Role,eq,%s)", role),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetch authorization rows with role %s", role)
	}
	out := make([]access.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, recordToAccess(rec))
	}
	return out, nil
}

func (r *AccessRepository) Create(ctx context.Context, rec access.Record) error {
	_, err := r.client.Create(ctx, r.tableID, recordstore.Fields{
		"Name":         rec.Identity,
		"FIO":          rec.FullName,
		"Phone":        rec.Phone,
		"Role":         string(rec.Role),
		"ID_messenger": rec.MessengerID,
	})
	return errors.Wrapf(err, "create authorization row for %s", rec.Identity)
}

func (r *AccessRepository) UpdateProfile(ctx context.Context, recordID, fullName string, role access.Role) error {
	err := r.client.Update(ctx, r.tableID, recordID, recordstore.Fields{
		"FIO":  fullName,
		"Role": string(role),
	})
	return errors.Wrapf(err, "update authorization row %s", recordID)
}

func (r *AccessRepository) SetRole(ctx context.Context, recordID string, role access.Role) error {
	err := r.client.Update(ctx, r.tableID, recordID, recordstore.Fields{
		"Role": string(role),
	})
	return errors.Wrapf(err, "set role on authorization row %s", recordID)
}

func (r *AccessRepository) Register(ctx context.Context, recordID, messengerID, registeredAt string) error {
	err := r.client.Update(ctx, r.tableID, recordID, recordstore.Fields{
		"ID_messenger":      messengerID,
		"Date_registration": registeredAt,
	})
	return errors.Wrapf(err, "register messenger on authorization row %s", recordID)
}

func (r *AccessRepository) Delete(ctx context.Context, recordID string) error {
	err := r.client.Delete(ctx, r.tableID, recordID)
	return errors.Wrapf(err, "delete authorization row %s", recordID)
}

func (r *AccessRepository) FindByPhone(ctx context.Context, phone string) (access.Record, error) {
	return r.findOne(ctx, fmt.Sprintf("(Phone,eq,%s)", phone))
}

func (r *AccessRepository) FindByMessenger(ctx context.Context, messengerID string) (access.Record, error) {
	return r.findOne(ctx, fmt.Sprintf("(ID_messenger,eq,%s)", messengerID))
}

func (r *AccessRepository) FindByIdentity(ctx context.Context, identity string) ([]access.Record, error) {
	records, err := r.client.GetAll(ctx, r.tableID, recordstore.Query{
		Where: fmt.Sprintf("(Name,eq,%s)", identity),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "lookup authorization rows for %s", identity)
	}
	out := make([]access.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, recordToAccess(rec))
	}
	return out, nil
}

func (r *AccessRepository) findOne(ctx context.Context, where string) (access.Record, error) {
	records, err := r.client.GetAll(ctx, r.tableID, recordstore.Query{Where: where, Limit: 1})
	if err != nil {
		return access.Record{}, errors.Wrap(err, "lookup authorization row")
	}
	if len(records) == 0 {
		return access.Record{}, access.ErrNotFound
	}
	return recordToAccess(records[0]), nil
}

func recordToAccess(rec recordstore.Record) access.Record {
	f := rec.Fields
	return access.Record{
		ID:           rec.ID,
		Identity:     strings.TrimSpace(f.Str("Name")),
		FullName:     strings.TrimSpace(f.Str("FIO")),
		Phone:        strings.TrimSpace(f.Str("Phone")),
		Role:         access.Role(f.Str("Role")),
		MessengerID:  strings.TrimSpace(f.Str("ID_messenger")),
		RegisteredAt: f.Str("Date_registration"),
	}
}
