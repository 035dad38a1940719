package migrate

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/modernsales/pawnshop/pkg/config"
	"github.com/modernsales/pawnshop/pkg/db"
	"github.com/modernsales/pawnshop/pkg/logger"
	"github.com/modernsales/pawnshop/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *db.Client {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{
		Path:         filepath.Join(t.TempDir(), "sales.sqlite"),
		BusyTimeout:  time.Second,
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// createLegacyStore builds the layout shipped before redemption tracking,
// record notes and search projections existed.
func createLegacyStore(t *testing.T, client *db.Client) {
	t.Helper()
	ctx := context.Background()
	for _, stmt := range []string{
		`CREATE TABLE pawn_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_name TEXT NOT NULL,
			cccd TEXT NOT NULL,
			total_amount_vnd INTEGER NOT NULL,
			date_pawn TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE pawn_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			record_id INTEGER NOT NULL,
			qty INTEGER NOT NULL,
			item_name TEXT NOT NULL,
			weight_chi REAL NOT NULL,
			note TEXT NOT NULL,
			FOREIGN KEY (record_id) REFERENCES pawn_records(id) ON DELETE CASCADE
		)`,
	} {
		require.NoError(t, client.Exec(ctx, stmt).Error)
	}
}

func TestEnsureSchemaFreshStore(t *testing.T) {
	client := openStore(t)
	ctx := context.Background()

	require.NoError(t, EnsureSchema(ctx, client, logger.Nop(), Options{}))

	status, err := Inspect(ctx, client)
	require.NoError(t, err)
	assert.True(t, status.UpToDate(), "status %+v", status)

	for _, upgrade := range columnUpgrades {
		ok, err := columnExists(ctx, client, upgrade.table, upgrade.column)
		require.NoError(t, err)
		assert.True(t, ok, "%s.%s", upgrade.table, upgrade.column)
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	client := openStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, EnsureSchema(ctx, client, logger.Nop(), Options{}))
	}

	var indexes int64
	require.NoError(t, client.Raw(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name LIKE 'ix_%'`).Scan(&indexes).Error)
	assert.Equal(t, int64(10), indexes)
}

func TestEnsureSchemaUpgradesLegacyStoreAndBackfills(t *testing.T) {
	client := openStore(t)
	ctx := context.Background()
	createLegacyStore(t, client)

	const records = 7
	for i := 0; i < records; i++ {
		require.NoError(t, client.Exec(ctx,
			`INSERT INTO pawn_records (customer_name, cccd, total_amount_vnd, date_pawn, created_at) VALUES (?, ?, ?, ?, ?)`,
			"  NGUYỄN   Văn A ", "0123", 15000, "2024-01-02", "2024-01-02T08:00:00+07:00",
		).Error)
		require.NoError(t, client.Exec(ctx,
			`INSERT INTO pawn_items (record_id, qty, item_name, weight_chi, note) VALUES (?, 1, ?, 1.5, '')`,
			i+1, "Nhẫn VÀNG",
		).Error)
	}
	// blank names normalize to "" and must not stall the backfill
	require.NoError(t, client.Exec(ctx,
		`INSERT INTO pawn_records (customer_name, cccd, total_amount_vnd, date_pawn, created_at) VALUES ('   ', '9', 0, '2024-01-03', '2024-01-03T08:00:00+07:00')`,
	).Error)

	before, err := Inspect(ctx, client)
	require.NoError(t, err)
	assert.Len(t, before.MissingColumns, len(columnUpgrades))
	assert.False(t, before.UpToDate())

	reg := prometheus.NewRegistry()
	opts := Options{RecordBatchSize: 2, ItemBatchSize: 3, Metrics: metrics.NewOperationMetrics(reg)}
	require.NoError(t, EnsureSchema(ctx, client, logger.Nop(), opts))

	var keys []string
	require.NoError(t, client.Raw(ctx, `SELECT DISTINCT customer_name_search FROM pawn_records WHERE TRIM(customer_name) <> ''`).Scan(&keys).Error)
	assert.Equal(t, []string{"nguyễn văn a"}, keys)

	var itemKeys []string
	require.NoError(t, client.Raw(ctx, `SELECT DISTINCT item_name_search FROM pawn_items`).Scan(&itemKeys).Error)
	assert.Equal(t, []string{"nhẫn vàng"}, itemKeys)

	var redeemed int64
	require.NoError(t, client.Raw(ctx, `SELECT COUNT(*) FROM pawn_items WHERE is_redeemed = 0 AND redeemed_at IS NULL`).Scan(&redeemed).Error)
	assert.Equal(t, int64(records), redeemed)

	after, err := Inspect(ctx, client)
	require.NoError(t, err)
	assert.True(t, after.UpToDate(), "status %+v", after)

	families, err := reg.Gather()
	require.NoError(t, err)
	var backfilled float64
	for _, mf := range families {
		if mf.GetName() != "pawnshop_schema_backfill_rows_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			backfilled += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(records+1+records), backfilled)
}

func TestEnsureSchemaRequiresClient(t *testing.T) {
	assert.Error(t, EnsureSchema(context.Background(), nil, logger.Nop(), Options{}))
}

func TestInspectEmptyStore(t *testing.T) {
	client := openStore(t)

	status, err := Inspect(context.Background(), client)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"pawn_records", "pawn_items", "pawn_catalog"}, status.MissingTables)
	assert.False(t, status.UpToDate())
}
