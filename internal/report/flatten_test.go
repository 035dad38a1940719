package report

import (
	"testing"
	"time"

	"github.com/modernsales/pawnshop/internal/pawn"
	"github.com/modernsales/pawnshop/pkg/enums"
	"github.com/modernsales/pawnshop/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ict = time.FixedZone("ICT", 7*60*60)

func at(day, hour int) *time.Time {
	t := time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func TestFlattenRecordStatus(t *testing.T) {
	records := []pawn.RecordSummary{
		{ID: 3, CustomerName: "An", CCCD: "1", TotalAmountVND: 1500000, DatePawn: types.NewDate(2024, time.March, 1), ItemsSummary: "1xNhẫn(1.0Chỉ); 1xLắc(2.0Chỉ)", ItemCount: 2, RedeemedCount: 2},
		{ID: 2, CustomerName: "Bình", CCCD: "2", ItemCount: 2, RedeemedCount: 1},
		{ID: 1, CustomerName: "Cúc", CCCD: "3"},
	}
	items := GroupItems([]pawn.ItemDTO{
		{ID: 10, RecordID: 3, Qty: 1, ItemName: "Nhẫn", WeightChi: 1, IsRedeemed: true, RedeemedAt: at(5, 2)},
		{ID: 11, RecordID: 3, Qty: 1, ItemName: "Lắc", WeightChi: 2, IsRedeemed: true, RedeemedAt: at(7, 3)},
		{ID: 20, RecordID: 2, Qty: 1, ItemName: "Vòng", WeightChi: 3, IsRedeemed: true, RedeemedAt: at(6, 1)},
		{ID: 21, RecordID: 2, Qty: 4, ItemName: "Bông tai", WeightChi: 0.5},
	})

	wb := Flatten(records, items, ict)
	require.Len(t, wb.Records, 3)

	full := wb.Records[0]
	assert.Equal(t, enums.RedemptionStatusRedeemed, full.Status)
	assert.Equal(t, "2024-03-07 10:00:00", full.RedeemedAt, "latest redemption in local time")
	assert.Equal(t, "2024-03-01", full.DatePawn)
	assert.Equal(t, int64(2), full.ItemCount)

	partial := wb.Records[1]
	assert.Equal(t, enums.RedemptionStatusNotRedeemed, partial.Status)
	assert.Empty(t, partial.RedeemedAt)

	empty := wb.Records[2]
	assert.Equal(t, enums.RedemptionStatusNotRedeemed, empty.Status)
	assert.Empty(t, empty.DatePawn)

	require.Len(t, wb.Items, 4)
	assert.Equal(t, int64(3), wb.Items[0].RecordID)
	assert.Equal(t, "An", wb.Items[0].CustomerName)
	assert.Equal(t, "2024-03-05 09:00:00", wb.Items[0].RedeemedAt)
	assert.Equal(t, int64(2), wb.Items[2].RecordID)
	assert.Equal(t, enums.RedemptionStatusRedeemed, wb.Items[2].Status)
	assert.Equal(t, "2024-03-06 08:00:00", wb.Items[2].RedeemedAt)
	assert.Equal(t, enums.RedemptionStatusNotRedeemed, wb.Items[3].Status)
	assert.Empty(t, wb.Items[3].RedeemedAt)
	assert.Equal(t, int64(4), wb.Items[3].Qty)
}

func TestFlattenFullyRedeemedWithoutTimes(t *testing.T) {
	records := []pawn.RecordSummary{{ID: 1, ItemCount: 1, RedeemedCount: 1}}
	items := map[int64][]pawn.ItemDTO{1: {{ID: 1, RecordID: 1, IsRedeemed: true}}}

	wb := Flatten(records, items, nil)
	assert.Equal(t, enums.RedemptionStatusRedeemed, wb.Records[0].Status)
	assert.Empty(t, wb.Records[0].RedeemedAt)
}
