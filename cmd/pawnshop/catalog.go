package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/modernsales/pawnshop/internal/app"
	"github.com/modernsales/pawnshop/internal/catalog"
	pkgerrors "github.com/modernsales/pawnshop/pkg/errors"
	"github.com/modernsales/pawnshop/pkg/parsers"
	"github.com/spf13/cobra"
)

const msgCatalogIDInvalid = "ID món hàng không hợp lệ."

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "catalog",
		Aliases: []string{"danhmuc"},
		Short:   "Manage reusable item templates",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List templates by name",
			Args:  cobra.NoArgs,
			RunE: opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
				items, err := a.Catalog.GetAll(ctx)
				if err != nil {
					return err
				}
				return printCatalog(cmd.OutOrStdout(), items)
			}),
		},
		newCatalogAddCmd(opts),
		newCatalogUpdateCmd(opts),
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a template",
			Args:  cobra.ExactArgs(1),
			RunE: opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
				id, err := parseID(args[0], msgCatalogIDInvalid)
				if err != nil {
					return err
				}
				if err := a.Catalog.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Đã xóa món hàng ID %d.\n", id)
				return nil
			}),
		},
	)
	return cmd
}

type catalogFlags struct {
	name   string
	weight string
	note   string
}

func (f *catalogFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "item name")
	cmd.Flags().StringVar(&f.weight, "weight", "0", "default weight in chỉ")
	cmd.Flags().StringVar(&f.note, "note", "", "note")
}

func (f *catalogFlags) input() (catalog.ItemInput, error) {
	weight, ok := parsers.ParseWeightChi(f.weight)
	if !ok {
		return catalog.ItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, catalog.MsgWeightInvalid)
	}
	return catalog.ItemInput{
		ItemName:         strings.TrimSpace(f.name),
		DefaultWeightChi: weight,
		Note:             strings.TrimSpace(f.note),
	}, nil
}

func newCatalogAddCmd(opts *rootOptions) *cobra.Command {
	var flags catalogFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a template",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
			input, err := flags.input()
			if err != nil {
				return err
			}
			id, err := a.Catalog.Create(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Đã thêm món hàng ID %d.\n", id)
			return nil
		}),
	}
	flags.bind(cmd)
	return cmd
}

func newCatalogUpdateCmd(opts *rootOptions) *cobra.Command {
	var flags catalogFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Rewrite a template",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			id, err := parseID(args[0], msgCatalogIDInvalid)
			if err != nil {
				return err
			}
			input, err := flags.input()
			if err != nil {
				return err
			}
			if err := a.Catalog.Update(ctx, id, input); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Đã cập nhật món hàng ID %d.\n", id)
			return nil
		}),
	}
	flags.bind(cmd)
	return cmd
}
