package models

import "github.com/modernsales/pawnshop/pkg/types"

// PawnRecord is one pawn ticket: a customer, an agreed amount and a date.
type PawnRecord struct {
	ID                 int64           `gorm:"column:id;primaryKey;autoIncrement"`
	CustomerName       string          `gorm:"column:customer_name;not null"`
	CustomerNameSearch string          `gorm:"column:customer_name_search;not null"`
	CCCD               string          `gorm:"column:cccd;not null"`
	Note               string          `gorm:"column:note;not null"`
	TotalAmountVND     int64           `gorm:"column:total_amount_vnd;not null"`
	DatePawn           types.Date      `gorm:"column:date_pawn;not null"`
	CreatedAt          types.Timestamp `gorm:"column:created_at;not null"`
	Items              []PawnItem      `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE"`
}

func (PawnRecord) TableName() string {
	return "pawn_records"
}
