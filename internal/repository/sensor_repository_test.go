package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/sensor-status-relay/internal/model"
	"github.com/iliyamo/sensor-status-relay/internal/rowstore"
	"github.com/iliyamo/sensor-status-relay/internal/rowstore/rowstoretest"
)

func newTestRepo(t *testing.T) (*SensorRepo, *rowstoretest.Server) {
	t.Helper()
	srv := rowstoretest.NewServer("k")
	t.Cleanup(srv.Close)
	srv.Seed("sensor", rowstore.Row{"id": 1, "status": "free"}, rowstore.Row{"id": 2, "status": "free"})

	c, err := rowstore.New(rowstore.Config{BaseURL: srv.URL, APIKey: "k", Timeout: time.Second})
	require.NoError(t, err)
	return NewSensorRepo(c, "sensor", "status", 1), srv
}

func TestSetStatusReadBack(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	for _, v := range []string{"parked", "free", "", "ünïcode & spaces", "a=b&c"} {
		_, err := repo.SetStatus(ctx, model.StatusOf(v))
		require.NoError(t, err)

		row, err := repo.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, row.Status, "value %q", v)
		assert.Equal(t, v, *row.Status)
	}
}

func TestSetStatusAbsentWritesNull(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.SetStatus(ctx, model.NoStatus())
	require.NoError(t, err)

	row, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, row.Status)
}

func TestSetStatusOnlyTouchesFixedRow(t *testing.T) {
	repo, srv := newTestRepo(t)

	_, err := repo.SetStatus(context.Background(), model.StatusOf("parked"))
	require.NoError(t, err)

	other, ok := srv.Row("sensor", "id", 2)
	require.True(t, ok)
	assert.Equal(t, "free", other["status"])
}

func TestSetStatusIdempotent(t *testing.T) {
	repo, srv := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.SetStatus(ctx, model.StatusOf("parked"))
	require.NoError(t, err)
	second, err := repo.SetStatus(ctx, model.StatusOf("parked"))
	require.NoError(t, err)

	assert.Equal(t, first.String(), second.String())
	row, _ := srv.Row("sensor", "id", 1)
	assert.Equal(t, "parked", row["status"])
}

func TestGetMissingRow(t *testing.T) {
	repo, _ := newTestRepo(t)
	repo.RowID = 42

	_, err := repo.Get(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}
