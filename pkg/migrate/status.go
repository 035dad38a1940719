package migrate

import (
	"context"
	"fmt"

	"github.com/modernsales/pawnshop/pkg/db"
)

// Status describes how far a store is from the current layout.
type Status struct {
	MissingTables  []string
	MissingColumns []string
	// Pending counts rows per table with a non-blank source name but an empty
	// search projection.
	Pending map[string]int64
}

// UpToDate reports whether EnsureSchema would change nothing.
func (s Status) UpToDate() bool {
	if len(s.MissingTables) > 0 || len(s.MissingColumns) > 0 {
		return false
	}
	for _, n := range s.Pending {
		if n > 0 {
			return false
		}
	}
	return true
}

// Inspect reads the current layout without modifying it.
func Inspect(ctx context.Context, client *db.Client) (Status, error) {
	status := Status{Pending: map[string]int64{}}

	for _, table := range []string{"pawn_records", "pawn_items", "pawn_catalog"} {
		ok, err := tableExists(ctx, client, table)
		if err != nil {
			return Status{}, err
		}
		if !ok {
			status.MissingTables = append(status.MissingTables, table)
		}
	}

	for _, upgrade := range columnUpgrades {
		ok, err := columnExists(ctx, client, upgrade.table, upgrade.column)
		if err != nil {
			return Status{}, err
		}
		if !ok {
			status.MissingColumns = append(status.MissingColumns, upgrade.table+"."+upgrade.column)
		}
	}

	for _, target := range backfillTargets(Options{}.withDefaults()) {
		ok, err := columnExists(ctx, client, target.table, target.searchColumn)
		if err != nil {
			return Status{}, err
		}
		if !ok {
			continue
		}
		var pending int64
		query := fmt.Sprintf(
			`SELECT COUNT(*) FROM %s WHERE IFNULL(%s, '') = '' AND TRIM(IFNULL(%s, '')) <> ''`,
			target.table, target.searchColumn, target.sourceColumn,
		)
		if err := client.Raw(ctx, query).Scan(&pending).Error; err != nil {
			return Status{}, fmt.Errorf("count pending %s: %w", target.table, err)
		}
		status.Pending[target.table] = pending
	}

	return status, nil
}
