package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/modernsales/pawnshop/pkg/config"
	"github.com/modernsales/pawnshop/pkg/db"
	pkgerrors "github.com/modernsales/pawnshop/pkg/errors"
	"github.com/modernsales/pawnshop/pkg/logger"
	"github.com/modernsales/pawnshop/pkg/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *service {
	t.Helper()
	ctx := context.Background()
	client, err := db.New(ctx, config.DBConfig{
		Path:         filepath.Join(t.TempDir(), "sales.sqlite"),
		BusyTimeout:  time.Second,
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, migrate.EnsureSchema(ctx, client, logger.Nop(), migrate.Options{}))

	svc, err := NewService(ServiceParams{Repo: NewRepository(client.DB()), Logger: logger.Nop()})
	require.NoError(t, err)
	return svc.(*service)
}

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(ServiceParams{Logger: logger.Nop()})
	require.Error(t, err)
}

func TestGetAllOrdersByNameIgnoringCase(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	zebra, err := svc.Create(ctx, ItemInput{ItemName: "vòng", DefaultWeightChi: 2})
	require.NoError(t, err)
	ring, err := svc.Create(ctx, ItemInput{ItemName: "Nhẫn", DefaultWeightChi: 1, Note: "18k"})
	require.NoError(t, err)
	anklet, err := svc.Create(ctx, ItemInput{ItemName: "lắc", DefaultWeightChi: 0.5})
	require.NoError(t, err)
	ringTwin, err := svc.Create(ctx, ItemInput{ItemName: "NHẪN", DefaultWeightChi: 1})
	require.NoError(t, err)

	items, err := svc.GetAll(ctx)
	require.NoError(t, err)
	var got []int64
	for _, item := range items {
		got = append(got, item.ID)
	}
	// "NHẪN" and "Nhẫn" tie under NOCASE only for ASCII; both still precede "vòng"
	assert.Equal(t, anklet, got[0])
	assert.ElementsMatch(t, []int64{ring, ringTwin}, got[1:3])
	assert.Equal(t, zebra, got[3])
	assert.Equal(t, "18k", items[1].Note+items[2].Note)
}

func TestCreateValidates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, ItemInput{ItemName: "  ", DefaultWeightChi: 1})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, MsgNameRequired, pkgerrors.UserMessage(err))

	_, err = svc.Create(ctx, ItemInput{ItemName: "Nhẫn", DefaultWeightChi: -1})
	require.Error(t, err)
	assert.Equal(t, MsgWeightInvalid, pkgerrors.UserMessage(err))

	items, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, ItemInput{ItemName: "Nhẫn", DefaultWeightChi: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, id, ItemInput{ItemName: " Nhẫn cưới ", DefaultWeightChi: 2.5, Note: "đôi"}))
	items, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Nhẫn cưới", items[0].ItemName)
	assert.InDelta(t, 2.5, items[0].DefaultWeightChi, 1e-9)
	assert.Equal(t, "đôi", items[0].Note)
	assert.False(t, items[0].CreatedAt.IsZero())

	err = svc.Update(ctx, id+1, ItemInput{ItemName: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	err = svc.Update(ctx, id, ItemInput{ItemName: ""})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	require.NoError(t, svc.Delete(ctx, id))
	err = svc.Delete(ctx, id)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
