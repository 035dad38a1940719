package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/modernsales/pawnshop/internal/catalog"
	"github.com/modernsales/pawnshop/internal/pawn"
	"github.com/modernsales/pawnshop/pkg/enums"
	"github.com/modernsales/pawnshop/pkg/parsers"
)

const timeLayout = "2006-01-02 15:04:05"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printPage(w io.Writer, page *pawn.Page) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNgày cầm\tKhách hàng\tCCCD\tTổng tiền\tMón hàng\tTrạng thái\tGhi chú")
	for _, r := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.DatePawn,
			r.CustomerName,
			r.CCCD,
			parsers.FormatMoney(r.TotalAmountVND),
			r.ItemsSummary,
			recordStatus(r),
			r.Note,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Trang %d/%d - Tổng %d - %d/trang\n",
		page.PageIndex+1, page.TotalPages(), page.TotalCount, page.PageSize)
	return err
}

func recordStatus(r pawn.RecordSummary) string {
	status := enums.RedemptionStatusOf(r.FullyRedeemed()).String()
	if r.ItemCount > 0 && !r.FullyRedeemed() && r.RedeemedCount > 0 {
		status += fmt.Sprintf(" (%d/%d)", r.RedeemedCount, r.ItemCount)
	}
	return status
}

func printItems(w io.Writer, items []pawn.ItemDTO) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSL\tMón hàng\tTrọng lượng (Chỉ)\tTrạng thái\tNgày chuộc\tGhi chú")
	for _, it := range items {
		redeemedAt := ""
		if it.RedeemedAt != nil {
			redeemedAt = it.RedeemedAt.Local().Format(timeLayout)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			it.ID,
			it.Qty,
			it.ItemName,
			strconv.FormatFloat(it.WeightChi, 'f', -1, 64),
			enums.RedemptionStatusOf(it.IsRedeemed),
			redeemedAt,
			it.Note,
		)
	}
	return tw.Flush()
}

func printCatalog(w io.Writer, items []catalog.Item) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tMón hàng\tTrọng lượng mặc định (Chỉ)\tGhi chú")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			it.ID,
			it.ItemName,
			strconv.FormatFloat(it.DefaultWeightChi, 'f', -1, 64),
			it.Note,
		)
	}
	return tw.Flush()
}
