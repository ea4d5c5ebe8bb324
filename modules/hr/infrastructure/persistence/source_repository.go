package persistence

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/mavis-digital/hrbot/pkg/recordstore"
)

// SourceRepository reads the raw per-employment export table.
type SourceRepository struct {
	client  *recordstore.Client
	tableID string
}

func NewSourceRepository(client *recordstore.Client, tableID string) *SourceRepository {
	return &SourceRepository{client: client, tableID: tableID}
}

func (r *SourceRepository) GetAll(ctx context.Context) ([]recordstore.Fields, error) {
	records, err := r.client.GetAll(ctx, r.tableID, recordstore.Query{})
	if err != nil {
		return nil, errors.Wrap(err, "fetch source rows")
	}
	out := make([]recordstore.Fields, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Fields)
	}
	return out, nil
}
