package migrate

import (
	"context"
	"fmt"

	"github.com/modernsales/pawnshop/pkg/db"
	"github.com/modernsales/pawnshop/pkg/logger"
	"github.com/modernsales/pawnshop/pkg/metrics"
)

const (
	DefaultRecordBatchSize = 2000
	DefaultItemBatchSize   = 3000
)

// Options tunes the startup schema pass.
type Options struct {
	RecordBatchSize int
	ItemBatchSize   int
	Metrics         *metrics.OperationMetrics
}

func (o Options) withDefaults() Options {
	if o.RecordBatchSize <= 0 {
		o.RecordBatchSize = DefaultRecordBatchSize
	}
	if o.ItemBatchSize <= 0 {
		o.ItemBatchSize = DefaultItemBatchSize
	}
	return o
}

var baseStatements = []string{
	`CREATE TABLE IF NOT EXISTS pawn_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_name TEXT NOT NULL,
		cccd TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		total_amount_vnd INTEGER NOT NULL,
		date_pawn TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_pawn_records_date_pawn ON pawn_records(date_pawn)`,
	`CREATE INDEX IF NOT EXISTS ix_pawn_records_customer_name ON pawn_records(customer_name)`,
	`CREATE INDEX IF NOT EXISTS ix_pawn_records_cccd ON pawn_records(cccd)`,
	`CREATE INDEX IF NOT EXISTS ix_pawn_records_total_amount_vnd ON pawn_records(total_amount_vnd)`,

	`CREATE TABLE IF NOT EXISTS pawn_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		record_id INTEGER NOT NULL,
		qty INTEGER NOT NULL,
		item_name TEXT NOT NULL,
		weight_chi REAL NOT NULL,
		note TEXT NOT NULL,
		FOREIGN KEY (record_id) REFERENCES pawn_records(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS ix_pawn_items_record_id ON pawn_items(record_id)`,
	`CREATE INDEX IF NOT EXISTS ix_pawn_items_item_name ON pawn_items(item_name)`,

	`CREATE TABLE IF NOT EXISTS pawn_catalog (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_name TEXT NOT NULL,
		default_weight_chi REAL NOT NULL,
		note TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_pawn_catalog_item_name ON pawn_catalog(item_name)`,
}

// columnUpgrade adds a column that older stores were created without.
type columnUpgrade struct {
	table  string
	column string
	add    string
	index  string
}

var columnUpgrades = []columnUpgrade{
	{
		table:  "pawn_items",
		column: "is_redeemed",
		add:    `ALTER TABLE pawn_items ADD COLUMN is_redeemed INTEGER NOT NULL DEFAULT 0`,
		index:  `CREATE INDEX IF NOT EXISTS ix_pawn_items_is_redeemed ON pawn_items(is_redeemed)`,
	},
	{
		table:  "pawn_items",
		column: "redeemed_at",
		add:    `ALTER TABLE pawn_items ADD COLUMN redeemed_at TEXT NULL`,
	},
	{
		table:  "pawn_records",
		column: "note",
		add:    `ALTER TABLE pawn_records ADD COLUMN note TEXT NOT NULL DEFAULT ''`,
	},
	{
		table:  "pawn_records",
		column: "customer_name_search",
		add:    `ALTER TABLE pawn_records ADD COLUMN customer_name_search TEXT NOT NULL DEFAULT ''`,
		index:  `CREATE INDEX IF NOT EXISTS ix_pawn_records_customer_name_search ON pawn_records(customer_name_search)`,
	},
	{
		table:  "pawn_items",
		column: "item_name_search",
		add:    `ALTER TABLE pawn_items ADD COLUMN item_name_search TEXT NOT NULL DEFAULT ''`,
		index:  `CREATE INDEX IF NOT EXISTS ix_pawn_items_item_name_search ON pawn_items(item_name_search)`,
	},
}

// EnsureSchema brings the store up to the current layout. It is safe to run
// on every start: tables and indexes are created when absent, columns added
// by later versions are appended, and empty search projections are filled.
func EnsureSchema(ctx context.Context, client *db.Client, logg *logger.Logger, opts Options) error {
	if client == nil {
		return fmt.Errorf("db client is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	opts = opts.withDefaults()
	ctx = logg.WithField(ctx, "db_path", client.Path())

	if err := ensureSchema(ctx, client, logg, opts); err != nil {
		logg.Error(ctx, "schema initialization failed", err)
		return err
	}
	logg.Info(ctx, "schema ready")
	return nil
}

func ensureSchema(ctx context.Context, client *db.Client, logg *logger.Logger, opts Options) error {
	for _, stmt := range baseStatements {
		if err := client.Exec(ctx, stmt).Error; err != nil {
			return fmt.Errorf("create base schema: %w", err)
		}
	}

	for _, upgrade := range columnUpgrades {
		exists, err := columnExists(ctx, client, upgrade.table, upgrade.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := client.Exec(ctx, upgrade.add).Error; err != nil {
			return fmt.Errorf("add column %s.%s: %w", upgrade.table, upgrade.column, err)
		}
		if upgrade.index != "" {
			if err := client.Exec(ctx, upgrade.index).Error; err != nil {
				return fmt.Errorf("index column %s.%s: %w", upgrade.table, upgrade.column, err)
			}
		}
		logg.Info(logg.WithFields(ctx, map[string]any{
			"table":  upgrade.table,
			"column": upgrade.column,
		}), "column added")
	}

	if err := backfillSearchColumns(ctx, client, logg, opts); err != nil {
		return fmt.Errorf("backfill search columns: %w", err)
	}
	return nil
}

func columnExists(ctx context.Context, client *db.Client, table, column string) (bool, error) {
	var count int64
	err := client.Raw(ctx,
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ? COLLATE NOCASE`,
		table, column,
	).Scan(&count).Error
	if err != nil {
		return false, fmt.Errorf("inspect %s.%s: %w", table, column, err)
	}
	return count > 0, nil
}

func tableExists(ctx context.Context, client *db.Client, table string) (bool, error) {
	var count int64
	err := client.Raw(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		table,
	).Scan(&count).Error
	if err != nil {
		return false, fmt.Errorf("inspect table %s: %w", table, err)
	}
	return count > 0, nil
}
