package report

import (
	"time"

	"github.com/modernsales/pawnshop/internal/pawn"
	"github.com/modernsales/pawnshop/pkg/enums"
)

// RedeemedAtLayout is how redemption times are printed, in local time.
const RedeemedAtLayout = "2006-01-02 15:04:05"

// RecordRow is one line of the record sheet.
type RecordRow struct {
	ID             int64
	CustomerName   string
	CCCD           string
	TotalAmountVND int64
	DatePawn       string
	ItemsSummary   string
	Status         enums.RedemptionStatus
	RedeemedAt     string
	ItemCount      int64
}

// ItemRow is one line of the item sheet.
type ItemRow struct {
	RecordID     int64
	CustomerName string
	CCCD         string
	Qty          int64
	ItemName     string
	WeightChi    float64
	Status       enums.RedemptionStatus
	RedeemedAt   string
}

// Workbook is the flattened export: one row per record, one row per item.
type Workbook struct {
	Records []RecordRow
	Items   []ItemRow
}

// Flatten shapes records and their items into sheet rows. A record shows a
// redemption time only when every item is redeemed, and then the latest one.
// Items are listed in record order; records without items contribute none.
func Flatten(records []pawn.RecordSummary, itemsByRecord map[int64][]pawn.ItemDTO, loc *time.Location) Workbook {
	if loc == nil {
		loc = time.Local
	}
	wb := Workbook{Records: make([]RecordRow, 0, len(records))}
	for _, rec := range records {
		items := itemsByRecord[rec.ID]
		fully := rec.FullyRedeemed()

		row := RecordRow{
			ID:             rec.ID,
			CustomerName:   rec.CustomerName,
			CCCD:           rec.CCCD,
			TotalAmountVND: rec.TotalAmountVND,
			DatePawn:       rec.DatePawn.String(),
			ItemsSummary:   rec.ItemsSummary,
			Status:         enums.RedemptionStatusOf(fully),
			ItemCount:      rec.ItemCount,
		}
		if fully {
			row.RedeemedAt = formatTime(latestRedemption(items), loc)
		}
		wb.Records = append(wb.Records, row)

		for _, item := range items {
			itemRow := ItemRow{
				RecordID:     rec.ID,
				CustomerName: rec.CustomerName,
				CCCD:         rec.CCCD,
				Qty:          item.Qty,
				ItemName:     item.ItemName,
				WeightChi:    item.WeightChi,
				Status:       enums.RedemptionStatusOf(item.IsRedeemed),
			}
			if item.RedeemedAt != nil {
				itemRow.RedeemedAt = formatTime(*item.RedeemedAt, loc)
			}
			wb.Items = append(wb.Items, itemRow)
		}
	}
	return wb
}

// GroupItems indexes items by their record.
func GroupItems(items []pawn.ItemDTO) map[int64][]pawn.ItemDTO {
	grouped := make(map[int64][]pawn.ItemDTO)
	for _, item := range items {
		grouped[item.RecordID] = append(grouped[item.RecordID], item)
	}
	return grouped
}

func latestRedemption(items []pawn.ItemDTO) time.Time {
	var latest time.Time
	for _, item := range items {
		if !item.IsRedeemed || item.RedeemedAt == nil {
			continue
		}
		if item.RedeemedAt.After(latest) {
			latest = *item.RedeemedAt
		}
	}
	return latest
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(RedeemedAtLayout)
}
