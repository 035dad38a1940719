package pawn

import (
	"context"
	"fmt"
	"time"

	"github.com/modernsales/pawnshop/pkg/db/models"
	"github.com/modernsales/pawnshop/pkg/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const recordColumns = `r.id, r.customer_name, r.cccd, IFNULL(r.note, '') AS note, r.total_amount_vnd, r.date_pawn, r.created_at`

// itemAggregates groups item rows per record. The inner ORDER BY keeps the
// summary in item insertion order.
const itemAggregates = `
SELECT i.record_id,
       group_concat(CAST(i.qty AS TEXT) || 'x' || i.item_name || '(' || CAST(i.weight_chi AS TEXT) || 'Chỉ)', '; ') AS items_summary,
       COUNT(1) AS item_count,
       SUM(CASE WHEN IFNULL(i.is_redeemed, 0) = 1 THEN 1 ELSE 0 END) AS redeemed_count
FROM (SELECT * FROM pawn_items %s ORDER BY record_id, id) i
GROUP BY i.record_id`

const redeemItemQuery = `
UPDATE pawn_items
SET is_redeemed = ?,
    redeemed_at = CASE WHEN ? = 1 THEN COALESCE(redeemed_at, ?) ELSE NULL END
WHERE id = ? AND record_id = ?`

// Repository runs record and item SQL.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateRecord inserts the record row and sets its ID.
func (r *Repository) CreateRecord(ctx context.Context, record *models.PawnRecord) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error
}

// CreateItem inserts one item row and sets its ID.
func (r *Repository) CreateItem(ctx context.Context, item *models.PawnItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// CountRecords counts records matching filter.
func (r *Repository) CountRecords(ctx context.Context, filter Filter) (int64, error) {
	var total int64
	err := filter.apply(r.db.WithContext(ctx).Table("pawn_records r")).Count(&total).Error
	return total, err
}

// ListRecords returns one page of records matching filter, newest pawn date first.
func (r *Repository) ListRecords(ctx context.Context, filter Filter, limit, offset int) ([]recordRow, error) {
	var rows []recordRow
	err := filter.apply(r.db.WithContext(ctx).Table("pawn_records r")).
		Select(recordColumns).
		Order("r.date_pawn DESC").
		Order("r.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

// AggregateItems returns item summaries for the given records keyed by record id.
func (r *Repository) AggregateItems(ctx context.Context, recordIDs []int64) (map[int64]aggregateRow, error) {
	result := make(map[int64]aggregateRow, len(recordIDs))
	if len(recordIDs) == 0 {
		return result, nil
	}
	var rows []aggregateRow
	query := fmt.Sprintf(itemAggregates, "WHERE record_id IN ?")
	if err := r.db.WithContext(ctx).Raw(query, recordIDs).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.RecordID] = row
	}
	return result, nil
}

// ListRecordsForExport returns every matching record with its aggregates.
func (r *Repository) ListRecordsForExport(ctx context.Context, filter Filter) ([]exportRow, error) {
	var rows []exportRow
	err := filter.apply(r.db.WithContext(ctx).Table("pawn_records r")).
		Select(recordColumns + `,
			IFNULL(a.items_summary, '') AS items_summary,
			IFNULL(a.item_count, 0) AS item_count,
			IFNULL(a.redeemed_count, 0) AS redeemed_count`).
		Joins("LEFT JOIN (" + fmt.Sprintf(itemAggregates, "") + ") a ON a.record_id = r.id").
		Order("r.date_pawn DESC").
		Order("r.id DESC").
		Scan(&rows).Error
	return rows, err
}

// UpdateNote returns the number of records touched.
func (r *Repository) UpdateNote(ctx context.Context, recordID int64, note string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PawnRecord{}).
		Where("id = ?", recordID).
		Update("note", note)
	return res.RowsAffected, res.Error
}

// SetItemRedeemed applies one redemption flag. The first redemption time is
// kept while the flag stays set; clearing the flag clears the time.
func (r *Repository) SetItemRedeemed(ctx context.Context, recordID int64, update RedeemUpdate, now time.Time) (int64, error) {
	flag := 0
	if update.Redeemed {
		flag = 1
	}
	res := r.db.WithContext(ctx).Exec(redeemItemQuery, flag, flag, types.NewTimestamp(now), update.ItemID, recordID)
	return res.RowsAffected, res.Error
}

// DeleteItems removes every item of a record.
func (r *Repository) DeleteItems(ctx context.Context, recordID int64) error {
	return r.db.WithContext(ctx).Where("record_id = ?", recordID).Delete(&models.PawnItem{}).Error
}

// DeleteRecord returns the number of records removed.
func (r *Repository) DeleteRecord(ctx context.Context, recordID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", recordID).Delete(&models.PawnRecord{})
	return res.RowsAffected, res.Error
}

// ItemsByRecordID returns the items of one record in insertion order.
func (r *Repository) ItemsByRecordID(ctx context.Context, recordID int64) ([]models.PawnItem, error) {
	var items []models.PawnItem
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// ItemsByRecordIDs returns the items of several records ordered by record then id.
func (r *Repository) ItemsByRecordIDs(ctx context.Context, recordIDs []int64) ([]models.PawnItem, error) {
	if len(recordIDs) == 0 {
		return nil, nil
	}
	var items []models.PawnItem
	err := r.db.WithContext(ctx).
		Where("record_id IN ?", recordIDs).
		Order("record_id ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

type recordRow struct {
	ID             int64
	CustomerName   string
	CCCD           string `gorm:"column:cccd"`
	Note           string
	TotalAmountVND int64 `gorm:"column:total_amount_vnd"`
	DatePawn       types.Date
	CreatedAt      types.Timestamp
}

type aggregateRow struct {
	RecordID      int64
	ItemsSummary  string
	ItemCount     int64
	RedeemedCount int64
}

type exportRow struct {
	ID             int64
	CustomerName   string
	CCCD           string `gorm:"column:cccd"`
	Note           string
	TotalAmountVND int64 `gorm:"column:total_amount_vnd"`
	DatePawn       types.Date
	CreatedAt      types.Timestamp
	ItemsSummary   string
	ItemCount      int64
	RedeemedCount  int64
}

func (row recordRow) toSummary(agg aggregateRow) RecordSummary {
	return RecordSummary{
		ID:             row.ID,
		CustomerName:   row.CustomerName,
		CCCD:           row.CCCD,
		Note:           row.Note,
		TotalAmountVND: row.TotalAmountVND,
		DatePawn:       row.DatePawn,
		CreatedAt:      row.CreatedAt,
		ItemsSummary:   agg.ItemsSummary,
		ItemCount:      agg.ItemCount,
		RedeemedCount:  agg.RedeemedCount,
	}
}

func (row exportRow) toSummary() RecordSummary {
	return RecordSummary{
		ID:             row.ID,
		CustomerName:   row.CustomerName,
		CCCD:           row.CCCD,
		Note:           row.Note,
		TotalAmountVND: row.TotalAmountVND,
		DatePawn:       row.DatePawn,
		CreatedAt:      row.CreatedAt,
		ItemsSummary:   row.ItemsSummary,
		ItemCount:      row.ItemCount,
		RedeemedCount:  row.RedeemedCount,
	}
}
