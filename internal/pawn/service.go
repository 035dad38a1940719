package pawn

import (
	"context"
	"fmt"
	"time"

	"github.com/modernsales/pawnshop/pkg/db"
	pkgerrors "github.com/modernsales/pawnshop/pkg/errors"
	"github.com/modernsales/pawnshop/pkg/logger"
	"github.com/modernsales/pawnshop/pkg/metrics"
	"github.com/modernsales/pawnshop/pkg/pagination"
	"github.com/modernsales/pawnshop/pkg/validators"
	"gorm.io/gorm"
)

const (
	opCreateRecord        = "create_record"
	opGetRecordsPage      = "get_records_page"
	opUpdateNote          = "update_note"
	opUpdateItemsRedeemed = "update_items_redeemed"
	opDeleteRecord        = "delete_record"
	opGetItems            = "get_items"
	opGetRecordsForExport = "get_records_for_export"
	opGetItemsForExport   = "get_items_for_export"
)

// Operator-facing validation texts.
const (
	MsgNeedItems        = "Vui lòng thêm ít nhất 1 món hàng cầm."
	MsgQtyPositive      = "Số lượng phải > 0."
	MsgWeightInvalid    = "Trọng lượng không hợp lệ."
	MsgNeedCustomer     = "Vui lòng nhập tên khách hàng và CCCD."
	MsgAmountInvalid    = "Tổng tiền không hợp lệ. Ví dụ: 15000 hoặc 15k."
	MsgDateInvalid      = "Ngày cầm không hợp lệ."
	MsgItemNameRequired = "Vui lòng nhập tên món hàng."
)

var createRecordMessages = validators.Messages{
	"CustomerName":   MsgNeedCustomer,
	"CCCD":           MsgNeedCustomer,
	"TotalAmountVND": MsgAmountInvalid,
	"DatePawn":       MsgDateInvalid,
	"Items":          MsgNeedItems,
	"Qty":            MsgQtyPositive,
	"ItemName":       MsgItemNameRequired,
	"WeightChi":      MsgWeightInvalid,
}

// Service exposes the pawn ticket workflow.
type Service interface {
	CreateRecord(ctx context.Context, input CreateRecordInput) (int64, error)
	GetRecordsPage(ctx context.Context, filter Filter, pageIndex, pageSize int) (*Page, error)
	UpdateNote(ctx context.Context, recordID int64, note string) error
	UpdateItemsRedeemed(ctx context.Context, recordID int64, updates []RedeemUpdate) error
	DeleteRecord(ctx context.Context, recordID int64) error
	GetItemsByRecordID(ctx context.Context, recordID int64) ([]ItemDTO, error)
	GetRecordsForExport(ctx context.Context, filter Filter) ([]RecordSummary, error)
	GetItemsByRecordIDs(ctx context.Context, recordIDs []int64) ([]ItemDTO, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
	metrics  *metrics.OperationMetrics
	now      func() time.Time
}

// NewService constructs the record service. metrics may be nil.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger, m *metrics.OperationMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pawn repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		logg:     logg,
		metrics:  m,
		now:      time.Now,
	}, nil
}

// CreateRecord validates the ticket and writes it with its items atomically.
func (s *service) CreateRecord(ctx context.Context, input CreateRecordInput) (recordID int64, err error) {
	started := time.Now()
	defer func() { err = s.finish(ctx, opCreateRecord, started, err) }()

	if err := validators.Struct(input, createRecordMessages); err != nil {
		return 0, err
	}

	record := input.toModel(s.now())
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateRecord(ctx, record); err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
		for i, in := range input.Items {
			item := in.toModel(record.ID)
			if err := repo.CreateItem(ctx, &item); err != nil {
				return fmt.Errorf("insert item %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	ctx = s.logg.WithRecordID(ctx, record.ID)
	s.logg.Info(s.logg.WithField(ctx, "item_count", len(input.Items)), "pawn record created")
	return record.ID, nil
}

// GetRecordsPage returns one page of matching records plus the total match count.
func (s *service) GetRecordsPage(ctx context.Context, filter Filter, pageIndex, pageSize int) (page *Page, err error) {
	started := time.Now()
	defer func() { err = s.finish(ctx, opGetRecordsPage, started, err) }()

	params := pagination.Params{PageIndex: pageIndex, PageSize: pageSize}.Normalize()

	total, err := s.repo.CountRecords(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	rows, err := s.repo.ListRecords(ctx, filter, params.PageSize, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	aggregates, err := s.repo.AggregateItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("aggregate items: %w", err)
	}

	summaries := make([]RecordSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, row.toSummary(aggregates[row.ID]))
	}

	return &Page{
		Items:      summaries,
		TotalCount: total,
		PageIndex:  params.PageIndex,
		PageSize:   params.PageSize,
	}, nil
}

// UpdateNote replaces the record note.
func (s *service) UpdateNote(ctx context.Context, recordID int64, note string) (err error) {
	started := time.Now()
	defer func() { err = s.finish(ctx, opUpdateNote, started, err) }()

	affected, err := s.repo.UpdateNote(ctx, recordID, note)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("Không tìm thấy phiếu cầm ID %d để cập nhật ghi chú.", recordID))
	}
	return nil
}

// UpdateItemsRedeemed applies every flag in one transaction. Items that do not
// belong to recordID are left untouched.
func (s *service) UpdateItemsRedeemed(ctx context.Context, recordID int64, updates []RedeemUpdate) (err error) {
	started := time.Now()
	defer func() { err = s.finish(ctx, opUpdateItemsRedeemed, started, err) }()

	if len(updates) == 0 {
		return nil
	}
	now := s.now()
	var skipped int
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, update := range updates {
			affected, err := repo.SetItemRedeemed(ctx, recordID, update, now)
			if err != nil {
				return fmt.Errorf("redeem item %d: %w", update.ItemID, err)
			}
			if affected == 0 {
				skipped++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if skipped > 0 {
		ctx = s.logg.WithRecordID(ctx, recordID)
		s.logg.Warn(s.logg.WithField(ctx, "skipped", skipped), "redeem updates matched no item of the record")
	}
	return nil
}

// DeleteRecord removes the record and its items together.
func (s *service) DeleteRecord(ctx context.Context, recordID int64) (err error) {
	started := time.Now()
	defer func() { err = s.finish(ctx, opDeleteRecord, started, err) }()

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteItems(ctx, recordID); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		affected, err := repo.DeleteRecord(ctx, recordID)
		if err != nil {
			return fmt.Errorf("delete record: %w", err)
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("Không tìm thấy phiếu cầm ID %d để xóa.", recordID))
		}
		return nil
	})
}

// GetItemsByRecordID lists the items of one record in insertion order.
func (s *service) GetItemsByRecordID(ctx context.Context, recordID int64) (items []ItemDTO, err error) {
	started := time.Now()
	defer func() { err = s.finish(ctx, opGetItems, started, err) }()

	rows, err := s.repo.ItemsByRecordID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items = make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemFromModel(row))
	}
	return items, nil
}

// GetRecordsForExport returns every matching record with aggregates, unpaginated.
func (s *service) GetRecordsForExport(ctx context.Context, filter Filter) (records []RecordSummary, err error) {
	started := time.Now()
	defer func() { err = s.finish(ctx, opGetRecordsForExport, started, err) }()

	rows, err := s.repo.ListRecordsForExport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list records for export: %w", err)
	}
	records = make([]RecordSummary, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toSummary())
	}
	return records, nil
}

// GetItemsByRecordIDs returns the items of a batch of records. Callers keep
// batches small enough for the engine's bound parameter limit.
func (s *service) GetItemsByRecordIDs(ctx context.Context, recordIDs []int64) (items []ItemDTO, err error) {
	started := time.Now()
	defer func() { err = s.finish(ctx, opGetItemsForExport, started, err) }()

	rows, err := s.repo.ItemsByRecordIDs(ctx, recordIDs)
	if err != nil {
		return nil, fmt.Errorf("list items for export: %w", err)
	}
	items = make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemFromModel(row))
	}
	return items, nil
}

// finish records metrics and classifies err. Untyped errors come from storage.
func (s *service) finish(ctx context.Context, operation string, started time.Time, err error) error {
	if err == nil {
		s.metrics.Observe(operation, started, nil, "")
		return nil
	}
	typed := db.Classify(err)
	s.metrics.Observe(operation, started, typed, string(typed.Code()))

	ctx = s.logg.WithField(ctx, "operation", operation)
	switch typed.Code() {
	case pkgerrors.CodeValidation:
	case pkgerrors.CodeNotFound:
		s.logg.Warn(ctx, typed.Message())
	default:
		s.logg.Error(ctx, operation+" failed", err)
	}
	return typed
}
