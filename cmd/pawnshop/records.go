package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/modernsales/pawnshop/internal/app"
	"github.com/modernsales/pawnshop/internal/pager"
	"github.com/modernsales/pawnshop/internal/pawn"
	pkgerrors "github.com/modernsales/pawnshop/pkg/errors"
	"github.com/modernsales/pawnshop/pkg/pagination"
	"github.com/modernsales/pawnshop/pkg/parsers"
	"github.com/modernsales/pawnshop/pkg/types"
	"github.com/spf13/cobra"
)

const (
	msgRecordIDInvalid = "ID phiếu cầm không hợp lệ."
	msgItemIDInvalid   = "ID món hàng không hợp lệ."
	msgItemArgInvalid  = "Món hàng phải có dạng SL|Tên|Trọng lượng|Ghi chú."
	msgPagerBusy       = "Đang tải trang, vui lòng thử lại."
	msgConfirmDelete   = "Thêm --yes để xác nhận xóa phiếu cầm ID %d. Hành động này không thể hoàn tác."
	msgNeedRedeemItems = "Chọn món hàng bằng --item hoặc dùng --all."
)

func newRecordsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"phieu"},
		Short:   "Create, search, redeem and delete pawn tickets",
	}
	cmd.AddCommand(
		newRecordsCreateCmd(opts),
		newRecordsListCmd(opts),
		newRecordsBrowseCmd(opts),
		newRecordsItemsCmd(opts),
		newRecordsNoteCmd(opts),
		newRecordsRedeemCmd(opts),
		newRecordsDeleteCmd(opts),
	)
	return cmd
}

func newRecordsCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		customer string
		cccd     string
		amount   string
		date     string
		note     string
		items    []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a new pawn ticket",
		Example: `  pawnshop records create --customer "Nguyễn Văn A" --cccd 079201001234 --amount 15k \
    --item "2|Nhẫn vàng|1,5|18k" --item "1|Dây chuyền|2"`,
		Args: cobra.NoArgs,
		RunE: opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
			input, err := buildCreateInput(customer, cccd, amount, date, note, items, time.Now())
			if err != nil {
				return err
			}
			id, err := a.Pawn.CreateRecord(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Đã lưu phiếu cầm ID %d.\n", id)
			return nil
		}),
	}
	cmd.Flags().StringVar(&customer, "customer", "", "customer name")
	cmd.Flags().StringVar(&cccd, "cccd", "", "national id number")
	cmd.Flags().StringVar(&amount, "amount", "", "total amount in VND, e.g. 15000, 15.000, 15k or 1.5m")
	cmd.Flags().StringVar(&date, "date", "", "pawn date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&note, "note", "", "ticket note")
	cmd.Flags().StringArrayVar(&items, "item", nil, "pledged item as QTY|NAME|WEIGHT_CHI|NOTE (repeatable)")
	return cmd
}

// buildCreateInput turns raw form text into a create request. Text that does
// not parse fails here with the same messages the service uses.
func buildCreateInput(customer, cccd, amount, date, note string, itemArgs []string, now time.Time) (pawn.CreateRecordInput, error) {
	input := pawn.CreateRecordInput{
		CustomerName: parsers.NormalizeCustomerName(customer),
		CCCD:         strings.TrimSpace(cccd),
		Note:         strings.TrimSpace(note),
	}

	value, ok := parsers.ParseMoney(amount)
	if !ok {
		return input, pkgerrors.New(pkgerrors.CodeValidation, pawn.MsgAmountInvalid)
	}
	input.TotalAmountVND = value

	if strings.TrimSpace(date) == "" {
		input.DatePawn = types.DateOf(now)
	} else {
		d, err := types.ParseDate(date)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, pawn.MsgDateInvalid)
		}
		input.DatePawn = d
	}

	for _, arg := range itemArgs {
		item, err := parseItemArg(arg)
		if err != nil {
			return input, err
		}
		input.Items = append(input.Items, item)
	}
	return input, nil
}

// parseItemArg reads QTY|NAME|WEIGHT|NOTE. Weight and note may be omitted.
func parseItemArg(arg string) (pawn.ItemInput, error) {
	parts := strings.SplitN(arg, "|", 4)
	if len(parts) < 2 {
		return pawn.ItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, msgItemArgInvalid)
	}
	qty, ok := parsers.ParseQuantity(parts[0])
	if !ok {
		return pawn.ItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, pawn.MsgQtyPositive)
	}
	item := pawn.ItemInput{Qty: qty, ItemName: strings.TrimSpace(parts[1])}
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		weight, ok := parsers.ParseWeightChi(parts[2])
		if !ok {
			return pawn.ItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, pawn.MsgWeightInvalid)
		}
		item.WeightChi = weight
	}
	if len(parts) > 3 {
		item.Note = strings.TrimSpace(parts[3])
	}
	return item, nil
}

func newRecordsListCmd(opts *rootOptions) *cobra.Command {
	var (
		filter filterFlags
		page   int
		size   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search tickets, newest pawn date first",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
			f, err := filter.build()
			if err != nil {
				return err
			}
			result, err := a.Pawn.GetRecordsPage(ctx, f, page-1, pagination.NormalizePageSize(size))
			if err != nil {
				return err
			}
			return printPage(cmd.OutOrStdout(), result)
		}),
	}
	filter.bind(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&size, "size", pagination.DefaultPageSize, "rows per page (10-200)")
	return cmd
}

func newRecordsBrowseCmd(opts *rootOptions) *cobra.Command {
	var (
		filter filterFlags
		size   int
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through tickets interactively",
		Long: `Reads commands from standard input, one per line:
  n        next page
  p        previous page
  r        reload the current page
  s ROWS   fit pages to ROWS visible rows (applied after a short pause)
  q        quit`,
		Args: cobra.NoArgs,
		RunE: opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
			f, err := filter.build()
			if err != nil {
				return err
			}
			return browse(ctx, cmd, a, f, size)
		}),
	}
	filter.bind(cmd)
	cmd.Flags().IntVar(&size, "size", pagination.MinPageSize, "initial rows per page (10-200)")
	return cmd
}

func browse(ctx context.Context, cmd *cobra.Command, a *app.App, filter pawn.Filter, size int) error {
	var mu sync.Mutex
	out := cmd.OutOrStdout()
	show := func(page *pawn.Page, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			fmt.Fprintln(out, pageLoadMessage(err))
			return
		}
		if err := printPage(out, page); err != nil {
			a.Logger.Error(ctx, "print page failed", err)
		}
	}

	p := pager.New(ctx, func(ctx context.Context, pageIndex, pageSize int) (*pawn.Page, error) {
		return a.Pawn.GetRecordsPage(ctx, filter, pageIndex, pageSize)
	}, pager.Options{PageSize: size, OnReload: show})
	defer p.Close()

	show(p.Load(ctx, 0))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "n":
			show(p.Next(ctx))
		case "p":
			show(p.Prev(ctx))
		case "r":
			show(p.Load(ctx, p.PageIndex()))
		case "s":
			if len(fields) < 2 {
				continue
			}
			if rows, err := strconv.Atoi(fields[1]); err == nil {
				p.Resize(rows)
			}
		case "q":
			return nil
		}
	}
	return scanner.Err()
}

// pageLoadMessage tells the operator to retry when a resize reload holds the pager.
func pageLoadMessage(err error) string {
	if errors.Is(err, pager.ErrLoadInFlight) {
		return msgPagerBusy
	}
	return pkgerrors.UserMessage(err)
}

func newRecordsItemsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "items RECORD_ID",
		Short: "List the items of a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			id, err := parseID(args[0], msgRecordIDInvalid)
			if err != nil {
				return err
			}
			items, err := a.Pawn.GetItemsByRecordID(ctx, id)
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), items)
		}),
	}
}

func newRecordsNoteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "note RECORD_ID TEXT",
		Short: "Replace the note of a ticket",
		Args:  cobra.ExactArgs(2),
		RunE: opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			id, err := parseID(args[0], msgRecordIDInvalid)
			if err != nil {
				return err
			}
			if err := a.Pawn.UpdateNote(ctx, id, strings.TrimSpace(args[1])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Đã cập nhật ghi chú phiếu cầm ID %d.\n", id)
			return nil
		}),
	}
}

func newRecordsRedeemCmd(opts *rootOptions) *cobra.Command {
	var (
		itemIDs []int64
		all     bool
		undo    bool
	)
	cmd := &cobra.Command{
		Use:   "redeem RECORD_ID",
		Short: "Mark items of a ticket as redeemed (or not, with --undo)",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			id, err := parseID(args[0], msgRecordIDInvalid)
			if err != nil {
				return err
			}
			targets := itemIDs
			if all {
				items, err := a.Pawn.GetItemsByRecordID(ctx, id)
				if err != nil {
					return err
				}
				targets = nil
				for _, it := range items {
					targets = append(targets, it.ID)
				}
			}
			if len(targets) == 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, msgNeedRedeemItems)
			}
			updates := make([]pawn.RedeemUpdate, 0, len(targets))
			for _, itemID := range targets {
				if itemID <= 0 {
					return pkgerrors.New(pkgerrors.CodeValidation, msgItemIDInvalid)
				}
				updates = append(updates, pawn.RedeemUpdate{ItemID: itemID, Redeemed: !undo})
			}
			if err := a.Pawn.UpdateItemsRedeemed(ctx, id, updates); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Đã cập nhật trạng thái chuộc cho phiếu cầm ID %d.\n", id)
			return nil
		}),
	}
	cmd.Flags().Int64SliceVar(&itemIDs, "item", nil, "item id (repeatable or comma separated)")
	cmd.Flags().BoolVar(&all, "all", false, "apply to every item of the ticket")
	cmd.Flags().BoolVar(&undo, "undo", false, "clear the redeemed flag instead")
	return cmd
}

func newRecordsDeleteCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete RECORD_ID",
		Short: "Delete a ticket and its items",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			id, err := parseID(args[0], msgRecordIDInvalid)
			if err != nil {
				return err
			}
			if !yes {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf(msgConfirmDelete, id))
			}
			if err := a.Pawn.DeleteRecord(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Đã xóa phiếu cầm ID %d.\n", id)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func parseID(raw, message string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, message)
	}
	return id, nil
}
