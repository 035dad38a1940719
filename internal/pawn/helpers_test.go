package pawn

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/modernsales/pawnshop/pkg/config"
	"github.com/modernsales/pawnshop/pkg/db"
	"github.com/modernsales/pawnshop/pkg/logger"
	"github.com/modernsales/pawnshop/pkg/metrics"
	"github.com/modernsales/pawnshop/pkg/migrate"
	"github.com/modernsales/pawnshop/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var ict = time.FixedZone("ICT", 7*60*60)

type testEnv struct {
	svc    *service
	client *db.Client
	reg    *prometheus.Registry
	clock  time.Time
}

func newTestEnv(t *testing.T) *testEnv {
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

	reg := prometheus.NewRegistry()
	svc, err := NewService(NewRepository(client.DB()), client, logger.Nop(), metrics.NewOperationMetrics(reg))
	require.NoError(t, err)

	env := &testEnv{
		svc:    svc.(*service),
		client: client,
		reg:    reg,
		clock:  time.Date(2024, time.May, 1, 9, 0, 0, 0, ict),
	}
	env.svc.now = func() time.Time { return env.clock }
	return env
}

func (e *testEnv) create(t *testing.T, input CreateRecordInput) int64 {
	t.Helper()
	id, err := e.svc.CreateRecord(context.Background(), input)
	require.NoError(t, err)
	return id
}

func (e *testEnv) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.client.Raw(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n).Error)
	return n
}

func ticket(name, cccd string, amount int64, date types.Date, items ...ItemInput) CreateRecordInput {
	if len(items) == 0 {
		items = []ItemInput{{Qty: 1, ItemName: "Nhẫn vàng", WeightChi: 1}}
	}
	return CreateRecordInput{
		CustomerName:   name,
		CCCD:           cccd,
		TotalAmountVND: amount,
		DatePawn:       date,
		Items:          items,
	}
}

func day(d int) types.Date {
	return types.NewDate(2024, time.January, d)
}
