package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/modernsales/pawnshop/internal/pawn"
	pkgerrors "github.com/modernsales/pawnshop/pkg/errors"
	"github.com/modernsales/pawnshop/pkg/logger"
	"github.com/modernsales/pawnshop/pkg/metrics"
	"github.com/modernsales/pawnshop/pkg/pagination"
	"github.com/modernsales/pawnshop/pkg/security"
	"github.com/xuri/excelize/v2"
)

const (
	SheetRecords = "PhieuCam"
	SheetItems   = "ChiTiet"

	DefaultChunkSize = 500

	opExport = "export_workbook"
)

var (
	recordHeaders = []any{"ID", "Khách hàng", "CCCD", "Tổng tiền (VNĐ)", "Ngày cầm", "Món hàng", "Đã chuộc", "Ngày chuộc", "Tổng món"}
	itemHeaders   = []any{"ID phiếu", "Khách hàng", "CCCD", "SL", "Món hàng", "Trọng lượng (Chỉ)", "Đã chuộc", "Ngày chuộc"}
)

// Source is the slice of the record service the export reads from.
type Source interface {
	GetRecordsForExport(ctx context.Context, filter pawn.Filter) ([]pawn.RecordSummary, error)
	GetItemsByRecordIDs(ctx context.Context, recordIDs []int64) ([]pawn.ItemDTO, error)
}

// ExporterParams groups dependencies for the exporter.
type ExporterParams struct {
	Source    Source
	Gate      *security.Gate
	Logger    *logger.Logger
	Metrics   *metrics.OperationMetrics
	ChunkSize int
	// Location renders redemption times; defaults to time.Local.
	Location *time.Location
}

// Exporter writes filtered records to an .xlsx workbook.
type Exporter struct {
	source    Source
	gate      *security.Gate
	logg      *logger.Logger
	metrics   *metrics.OperationMetrics
	chunkSize int
	loc       *time.Location
}

// Result summarizes a finished export.
type Result struct {
	Path    string
	Records int
	Items   int
}

func NewExporter(params ExporterParams) (*Exporter, error) {
	if params.Source == nil {
		return nil, fmt.Errorf("export source required")
	}
	if params.Gate == nil {
		return nil, fmt.Errorf("export gate required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	chunk := params.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	loc := params.Location
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{
		source:    params.Source,
		gate:      params.Gate,
		logg:      params.Logger,
		metrics:   params.Metrics,
		chunkSize: chunk,
		loc:       loc,
	}, nil
}

// Export checks secret, then writes every record matching filter to path.
func (e *Exporter) Export(ctx context.Context, path string, filter pawn.Filter, secret string) (result Result, err error) {
	started := time.Now()
	ctx = e.logg.WithField(ctx, "export_path", path)
	defer func() {
		if err == nil {
			e.metrics.Observe(opExport, started, nil, "")
			return
		}
		typed := pkgerrors.Classify(err, pkgerrors.CodeInternal)
		e.metrics.Observe(opExport, started, typed, string(typed.Code()))
		if typed.Code() == pkgerrors.CodeUnauthorized {
			e.logg.Warn(ctx, "export refused")
		} else {
			e.logg.Error(ctx, "export failed", err)
		}
		err = typed
	}()

	if err := e.gate.Check(secret); err != nil {
		return Result{}, err
	}

	records, err := e.source.GetRecordsForExport(ctx, filter)
	if err != nil {
		return Result{}, err
	}
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	var items []pawn.ItemDTO
	for _, chunk := range pagination.Chunk(ids, e.chunkSize) {
		batch, err := e.source.GetItemsByRecordIDs(ctx, chunk)
		if err != nil {
			return Result{}, err
		}
		items = append(items, batch...)
	}

	wb := Flatten(records, GroupItems(items), e.loc)
	if err := Write(path, wb); err != nil {
		return Result{}, err
	}

	e.logg.Info(e.logg.WithFields(ctx, map[string]any{
		"records": len(wb.Records),
		"items":   len(wb.Items),
	}), "export written")
	return Result{Path: path, Records: len(wb.Records), Items: len(wb.Items)}, nil
}

// Write saves wb as an .xlsx file, creating the parent directory.
func Write(path string, wb Workbook) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetRecords); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetItems); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	recordRows := make([][]any, 0, len(wb.Records))
	for _, r := range wb.Records {
		recordRows = append(recordRows, []any{
			r.ID, r.CustomerName, r.CCCD, r.TotalAmountVND, r.DatePawn,
			r.ItemsSummary, r.Status.String(), r.RedeemedAt, r.ItemCount,
		})
	}
	if err := writeSheet(f, SheetRecords, recordHeaders, recordRows, styles, map[string]int{"D": styles.amount}); err != nil {
		return err
	}

	itemRows := make([][]any, 0, len(wb.Items))
	for _, it := range wb.Items {
		itemRows = append(itemRows, []any{
			it.RecordID, it.CustomerName, it.CCCD, it.Qty, it.ItemName,
			it.WeightChi, it.Status.String(), it.RedeemedAt,
		})
	}
	if err := writeSheet(f, SheetItems, itemHeaders, itemRows, styles, map[string]int{"D": styles.amount, "F": styles.weight}); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

type sheetStyles struct {
	header int
	amount int
	weight int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var (
		s   sheetStyles
		err error
	)
	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"EEEEEE"}},
	})
	if err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}
	amountFmt := "#,##0"
	if s.amount, err = f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt}); err != nil {
		return s, fmt.Errorf("amount style: %w", err)
	}
	weightFmt := "0.##"
	if s.weight, err = f.NewStyle(&excelize.Style{CustomNumFmt: &weightFmt}); err != nil {
		return s, fmt.Errorf("weight style: %w", err)
	}
	return s, nil
}

func writeSheet(f *excelize.File, sheet string, headers []any, rows [][]any, styles sheetStyles, columnStyles map[string]int) error {
	for col, style := range columnStyles {
		if err := f.SetColStyle(sheet, col, style); err != nil {
			return fmt.Errorf("%s column %s style: %w", sheet, col, err)
		}
	}

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, styles.header); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("%s widths: %w", sheet, err)
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
