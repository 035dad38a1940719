package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/modernsales/pawnshop/internal/app"
	"github.com/modernsales/pawnshop/pkg/db"
	pkgerrors "github.com/modernsales/pawnshop/pkg/errors"
	"github.com/modernsales/pawnshop/pkg/logger"
	"github.com/modernsales/pawnshop/pkg/migrate"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database up to the current layout",
		Long:  "Creates missing tables, adds columns introduced by later versions and fills empty search columns. Every other command does this on start too.",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(_ context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Cơ sở dữ liệu đã sẵn sàng: %s\n", a.Layout.DBPath)
			return nil
		}),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report pending schema work without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return migrateStatus(cmd, opts)
		},
	})
	return cmd
}

func migrateStatus(cmd *cobra.Command, opts *rootOptions) (err error) {
	cfg, layout, err := opts.resolve()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msgConfigInvalid)
	}
	cfg.DB.Path = layout.DBPath
	client, err := db.New(cmd.Context(), cfg.DB, logger.Nop())
	if err != nil {
		return pkgerrors.Classify(err, pkgerrors.CodeDependency)
	}
	defer client.Close()

	status, err := migrate.Inspect(cmd.Context(), client)
	if err != nil {
		return pkgerrors.Classify(err, pkgerrors.CodeDependency)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Database: %s\n", layout.DBPath)
	if status.UpToDate() {
		fmt.Fprintln(out, "Schema is up to date.")
		return nil
	}
	for _, table := range status.MissingTables {
		fmt.Fprintf(out, "missing table   %s\n", table)
	}
	for _, column := range status.MissingColumns {
		fmt.Fprintf(out, "missing column  %s\n", column)
	}
	tables := make([]string, 0, len(status.Pending))
	for table := range status.Pending {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		if n := status.Pending[table]; n > 0 {
			fmt.Fprintf(out, "backfill        %s: %d rows\n", table, n)
		}
	}
	return nil
}
