package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/sensor-status-relay/internal/model"
	"github.com/iliyamo/sensor-status-relay/internal/rowstore"
)

// RowStore is the subset of *rowstore.Client the repository needs.
type RowStore interface {
	Update(ctx context.Context, table string, values map[string]any, filters ...rowstore.Filter) (rowstore.Result, error)
	Select(ctx context.Context, table string, filters ...rowstore.Filter) (rowstore.Result, error)
}

// SensorRepo reads and writes the single sensor row the device reports to.
type SensorRepo struct {
	Store  RowStore
	Table  string // remote table, "sensor"
	Column string // status column, "status"
	RowID  int64  // fixed row id, 1
}

func NewSensorRepo(store RowStore, table, column string, rowID int64) *SensorRepo {
	return &SensorRepo{Store: store, Table: table, Column: column, RowID: rowID}
}

// SetStatus overwrites the status column of the fixed row and returns the
// remote result unchanged.
func (r *SensorRepo) SetStatus(ctx context.Context, status model.Status) (rowstore.Result, error) {
	return r.Store.Update(ctx, r.Table, map[string]any{r.Column: status}, rowstore.Eq("id", r.RowID))
}

// Get fetches the fixed row.  ErrNotFound is returned when it does not exist.
func (r *SensorRepo) Get(ctx context.Context) (model.SensorRow, error) {
	res, err := r.Store.Select(ctx, r.Table, rowstore.Eq("id", r.RowID))
	if err != nil {
		return model.SensorRow{}, err
	}
	if len(res.Data) == 0 {
		return model.SensorRow{}, ErrNotFound
	}
	row := model.SensorRow{ID: r.RowID}
	switch v := res.Data[0][r.Column].(type) {
	case nil:
	case string:
		row.Status = &v
	default:
		s := fmt.Sprint(v)
		row.Status = &s
	}
	return row, nil
}
