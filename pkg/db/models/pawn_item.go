package models

import "github.com/modernsales/pawnshop/pkg/types"

// PawnItem is one pledged article on a record.
type PawnItem struct {
	ID             int64            `gorm:"column:id;primaryKey;autoIncrement"`
	RecordID       int64            `gorm:"column:record_id;not null;index"`
	Qty            int64            `gorm:"column:qty;not null"`
	ItemName       string           `gorm:"column:item_name;not null"`
	ItemNameSearch string           `gorm:"column:item_name_search;not null"`
	WeightChi      float64          `gorm:"column:weight_chi;not null"`
	Note           string           `gorm:"column:note;not null"`
	IsRedeemed     bool             `gorm:"column:is_redeemed;not null"`
	RedeemedAt     *types.Timestamp `gorm:"column:redeemed_at"`
}

func (PawnItem) TableName() string {
	return "pawn_items"
}
