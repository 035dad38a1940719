package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/modernsales/pawnshop/internal/app"
	"github.com/modernsales/pawnshop/pkg/config"
	pkgerrors "github.com/modernsales/pawnshop/pkg/errors"
	"github.com/modernsales/pawnshop/pkg/metrics"
	"github.com/modernsales/pawnshop/pkg/paths"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

const msgConfigInvalid = "Không đọc được cấu hình."

type rootOptions struct {
	dbPath     string
	dataDir    string
	metricsOut string
	stdin      io.Reader
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	opts := &rootOptions{stdin: stdin}

	root := &cobra.Command{
		Use:           "pawnshop",
		Short:         "Pawn shop ledger",
		Long:          "Records pawned items against customers, tracks redemption, searches tickets and exports spreadsheets.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database file (overrides discovery and "+config.EnvDBPath+")")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "application data directory holding logs (overrides "+config.EnvDataDir+")")
	root.PersistentFlags().StringVar(&opts.metricsOut, "metrics-out", "", "write Prometheus text metrics to this file on exit")

	root.AddCommand(
		newMigrateCmd(opts),
		newRecordsCmd(opts),
		newCatalogCmd(opts),
		newExportCmd(opts),
	)
	return root
}

// run executes one command line and maps the outcome to an exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		// flag and argument errors from cobra
		fmt.Fprintln(stderr, "Lỗi:", err)
		return pkgerrors.MetadataFor(pkgerrors.CodeValidation).ExitCode
	}
	fmt.Fprintln(stderr, pkgerrors.UserMessage(err))
	return pkgerrors.MetadataFor(typed.Code()).ExitCode
}

func (o *rootOptions) resolve() (*config.Config, paths.Layout, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, paths.Layout{}, err
	}
	if v := strings.TrimSpace(o.dbPath); v != "" {
		cfg.Paths.DBPath = v
	}
	if v := strings.TrimSpace(o.dataDir); v != "" {
		cfg.Paths.DataDir = v
	}
	resolver, err := paths.NewResolver()
	if err != nil {
		return nil, paths.Layout{}, err
	}
	layout, err := resolver.Resolve(cfg.Paths)
	if err != nil {
		return nil, paths.Layout{}, err
	}
	return cfg, layout, nil
}

type appRunner func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error

// withApp opens the application around fn and tags its log lines with a
// fresh operation id. Metrics are written after fn, even when it fails.
func (o *rootOptions) withApp(fn appRunner) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		cfg, layout, err := o.resolve()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msgConfigInvalid)
		}
		a, err := app.New(cmd.Context(), app.Params{Config: cfg, Layout: layout})
		if err != nil {
			return pkgerrors.Classify(err, pkgerrors.CodeDependency)
		}
		defer func() {
			if o.metricsOut != "" {
				err = multierr.Append(err, writeMetrics(o.metricsOut, a.Registry))
			}
			err = multierr.Append(err, a.Close())
		}()

		ctx := a.Logger.WithOperationID(cmd.Context(), uuid.NewString())
		ctx = a.Logger.WithField(ctx, "command", cmd.CommandPath())
		err = fn(ctx, cmd, a, args)
		if err != nil && !pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).Expected {
			a.Logger.Error(a.Logger.WithField(ctx, "error_dump", pkgerrors.Dump(err)), "command failed", err)
		}
		return err
	}
}

func writeMetrics(path string, g prometheus.Gatherer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Không ghi được tệp số liệu.")
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	if err := metrics.WriteText(f, g); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Không ghi được tệp số liệu.")
	}
	return nil
}
