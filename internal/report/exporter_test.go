package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modernsales/pawnshop/internal/pawn"
	"github.com/modernsales/pawnshop/pkg/config"
	pkgerrors "github.com/modernsales/pawnshop/pkg/errors"
	"github.com/modernsales/pawnshop/pkg/logger"
	"github.com/modernsales/pawnshop/pkg/security"
	"github.com/modernsales/pawnshop/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeSource struct {
	records  []pawn.RecordSummary
	items    []pawn.ItemDTO
	batches  [][]int64
	failWith error
}

func (f *fakeSource) GetRecordsForExport(context.Context, pawn.Filter) ([]pawn.RecordSummary, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.records, nil
}

func (f *fakeSource) GetItemsByRecordIDs(_ context.Context, ids []int64) ([]pawn.ItemDTO, error) {
	f.batches = append(f.batches, append([]int64(nil), ids...))
	wanted := map[int64]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var out []pawn.ItemDTO
	for _, item := range f.items {
		if wanted[item.RecordID] {
			out = append(out, item)
		}
	}
	return out, nil
}

func newTestExporter(t *testing.T, source Source, chunk int) *Exporter {
	t.Helper()
	gate, err := security.NewGate(config.ExportConfig{Secret: "197781"}, config.PasswordConfig{
		ArgonMemoryKB:    64,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	require.NoError(t, err)
	exp, err := NewExporter(ExporterParams{
		Source:    source,
		Gate:      gate,
		Logger:    logger.Nop(),
		ChunkSize: chunk,
		Location:  time.UTC,
	})
	require.NoError(t, err)
	return exp
}

func TestExportRejectsWrongSecret(t *testing.T) {
	source := &fakeSource{}
	exp := newTestExporter(t, source, 0)
	path := filepath.Join(t.TempDir(), "out.xlsx")

	_, err := exp.Export(context.Background(), path, pawn.Filter{}, "000000")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.Equal(t, security.MsgWrongSecret, pkgerrors.UserMessage(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, source.batches)
}

func TestExportWritesBothSheets(t *testing.T) {
	redeemed := time.Date(2024, time.April, 2, 15, 30, 0, 0, time.UTC)
	source := &fakeSource{
		records: []pawn.RecordSummary{
			{ID: 7, CustomerName: "Nguyễn Văn An", CCCD: "0792", TotalAmountVND: 1500000, DatePawn: types.NewDate(2024, time.April, 1), ItemsSummary: "2xNhẫn vàng(1.5Chỉ)", ItemCount: 1, RedeemedCount: 1},
			{ID: 5, CustomerName: "Trần Bình", CCCD: "0793", TotalAmountVND: 200000, DatePawn: types.NewDate(2024, time.March, 30)},
			{ID: 4, CustomerName: "Lê Cúc", CCCD: "0794", TotalAmountVND: 1, DatePawn: types.NewDate(2024, time.March, 29), ItemsSummary: "1xLắc(0.5Chỉ)", ItemCount: 1},
		},
		items: []pawn.ItemDTO{
			{ID: 1, RecordID: 4, Qty: 1, ItemName: "Lắc", WeightChi: 0.5},
			{ID: 2, RecordID: 7, Qty: 2, ItemName: "Nhẫn vàng", WeightChi: 1.5, IsRedeemed: true, RedeemedAt: &redeemed},
		},
	}
	exp := newTestExporter(t, source, 2)
	path := filepath.Join(t.TempDir(), "nested", "dir", "PhieuCam.xlsx")

	result, err := exp.Export(context.Background(), path, pawn.Filter{}, "197781")
	require.NoError(t, err)
	assert.Equal(t, Result{Path: path, Records: 3, Items: 2}, result)
	assert.Equal(t, [][]int64{{7, 5}, {4}}, source.batches)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetRecords, SheetItems}, f.GetSheetList())

	rows, err := f.GetRows(SheetRecords, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Tổng tiền (VNĐ)", rows[0][3])
	assert.Equal(t, []string{"7", "Nguyễn Văn An", "0792", "1500000", "2024-04-01", "2xNhẫn vàng(1.5Chỉ)", "Đã chuộc", "2024-04-02 15:30:00", "1"}, rows[1])
	assert.Equal(t, "Chưa chuộc", rows[2][6])

	items, err := f.GetRows(SheetItems, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "ID phiếu", items[0][0])
	assert.Equal(t, []string{"7", "Nguyễn Văn An", "0792", "2", "Nhẫn vàng", "1.5", "Đã chuộc", "2024-04-02 15:30:00"}, items[1])
	assert.Equal(t, "4", items[2][0])
	assert.Equal(t, "Chưa chuộc", items[2][6])

	style, err := f.GetCellStyle(SheetRecords, "A1")
	require.NoError(t, err)
	assert.NotZero(t, style)
}

func TestExportPropagatesSourceErrors(t *testing.T) {
	cause := pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("disk I/O error"), "storage unavailable")
	exp := newTestExporter(t, &fakeSource{failWith: cause}, 0)

	_, err := exp.Export(context.Background(), filepath.Join(t.TempDir(), "x.xlsx"), pawn.Filter{}, "197781")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestNewExporterRequiresGate(t *testing.T) {
	_, err := NewExporter(ExporterParams{Source: &fakeSource{}, Logger: logger.Nop()})
	require.Error(t, err)
}
