package models

import "github.com/modernsales/pawnshop/pkg/types"

// PawnCatalogItem is a reusable item template offered when filling a record.
type PawnCatalogItem struct {
	ID               int64           `gorm:"column:id;primaryKey;autoIncrement"`
	ItemName         string          `gorm:"column:item_name;not null"`
	DefaultWeightChi float64         `gorm:"column:default_weight_chi;not null"`
	Note             string          `gorm:"column:note;not null"`
	CreatedAt        types.Timestamp `gorm:"column:created_at;not null"`
}

func (PawnCatalogItem) TableName() string {
	return "pawn_catalog"
}
