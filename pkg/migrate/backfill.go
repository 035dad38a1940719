package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/modernsales/pawnshop/pkg/db"
	"github.com/modernsales/pawnshop/pkg/logger"
	"github.com/modernsales/pawnshop/pkg/parsers"
	"gorm.io/gorm"
)

type backfillTarget struct {
	table        string
	sourceColumn string
	searchColumn string
	batchSize    int
}

type backfillRow struct {
	ID     int64
	Source sql.NullString
}

func backfillTargets(opts Options) []backfillTarget {
	return []backfillTarget{
		{table: "pawn_records", sourceColumn: "customer_name", searchColumn: "customer_name_search", batchSize: opts.RecordBatchSize},
		{table: "pawn_items", sourceColumn: "item_name", searchColumn: "item_name_search", batchSize: opts.ItemBatchSize},
	}
}

func backfillSearchColumns(ctx context.Context, client *db.Client, logg *logger.Logger, opts Options) error {
	for _, target := range backfillTargets(opts) {
		total, err := backfill(ctx, client, logg, target, opts)
		if err != nil {
			return err
		}
		if total > 0 {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"table": target.table,
				"rows":  total,
			}), "search projection backfilled")
		}
	}
	return nil
}

// backfill walks rows with an empty projection in id order, one transaction
// per batch. The id cursor guarantees termination even when a source value
// normalizes to "".
func backfill(ctx context.Context, client *db.Client, logg *logger.Logger, target backfillTarget, opts Options) (int64, error) {
	selectQuery := fmt.Sprintf(
		`SELECT id, %s AS source FROM %s WHERE IFNULL(%s, '') = '' AND id > ? ORDER BY id LIMIT ?`,
		target.sourceColumn, target.table, target.searchColumn,
	)
	updateQuery := fmt.Sprintf(`UPDATE %s SET %s = ? WHERE id = ?`, target.table, target.searchColumn)

	var (
		lastID int64
		total  int64
	)
	for {
		var rows []backfillRow
		if err := client.Raw(ctx, selectQuery, lastID, target.batchSize).Scan(&rows).Error; err != nil {
			return total, fmt.Errorf("select %s batch: %w", target.table, err)
		}
		if len(rows) == 0 {
			return total, nil
		}

		err := client.WithTx(ctx, func(tx *gorm.DB) error {
			for _, row := range rows {
				key := parsers.NormalizeSearchKey(row.Source.String)
				if err := tx.Exec(updateQuery, key, row.ID).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return total, fmt.Errorf("update %s batch: %w", target.table, err)
		}

		lastID = rows[len(rows)-1].ID
		total += int64(len(rows))
		logg.Debug(logg.WithFields(ctx, map[string]any{"table": target.table, "last_id": lastID}), "backfill batch committed")
		opts.Metrics.AddBackfilled(target.table, int64(len(rows)))
	}
}
