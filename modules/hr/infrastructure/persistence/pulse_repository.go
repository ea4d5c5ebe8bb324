package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/mavis-digital/hrbot/modules/hr/domain/employee"
	"github.com/mavis-digital/hrbot/modules/hr/domain/pulse"
	"github.com/mavis-digital/hrbot/pkg/recordstore"
)

// PulseRepository stores the scheduled survey task table.
type PulseRepository struct {
	client  *recordstore.Client
	tableID string
}

func NewPulseRepository(client *recordstore.Client, tableID string) *PulseRepository {
	return &PulseRepository{client: client, tableID: tableID}
}

func (r *PulseRepository) Exists(ctx context.Context, identity string, t pulse.SurveyType) (bool, error) {
	records, err := r.client.GetAll(ctx, r.tableID, recordstore.Query{
		Where: fmt.Sprintf("(SNILS,eq,%s)~and(Type,eq,%s)", identity, t),
		Limit: 1,
	})
	if err != nil {
		return false, errors.Wrapf(err, "check survey task %s/%s", identity, t)
	}
	return len(records) > 0, nil
}

func (r *PulseRepository) Create(ctx context.Context, task pulse.Task) error {
	_, err := r.client.Create(ctx, r.tableID, recordstore.Fields{
		"SNILS":           task.Identity,
		"FIO":             task.FullName,
		"Department":      nilIfEmpty(task.Department),
		"Position":        nilIfEmpty(task.Position),
		"Data_employment": task.HireDate.Format(employee.DateLayout),
		"Data_poll":       task.DueDate.Format(employee.DateLayout),
		"Type":            string(task.Type),
		"Status":          string(task.Status),
		"ID_messenger":    "",
		"Date_adjusted":   task.DateAdjusted,
		"Created_at":      task.CreatedAt.Format(time.RFC3339),
	})
	return errors.Wrapf(err, "create survey task %s/%s", task.Identity, task.Type)
}
