package pawn

import (
	"strings"
	"time"

	"github.com/modernsales/pawnshop/pkg/db/models"
	"github.com/modernsales/pawnshop/pkg/enums"
	"github.com/modernsales/pawnshop/pkg/pagination"
	"github.com/modernsales/pawnshop/pkg/parsers"
	"github.com/modernsales/pawnshop/pkg/types"
)

// CreateRecordInput is a new pawn ticket with its pledged items.
type CreateRecordInput struct {
	CustomerName   string     `validate:"notblank"`
	CCCD           string     `validate:"notblank"`
	TotalAmountVND int64      `validate:"gte=0"`
	DatePawn       types.Date `validate:"required"`
	Note           string
	Items          []ItemInput `validate:"required,min=1,dive"`
}

// ItemInput is one pledged article of a new ticket.
type ItemInput struct {
	Qty       int64   `validate:"gt=0"`
	ItemName  string  `validate:"notblank"`
	WeightChi float64 `validate:"gte=0"`
	Note      string
}

// RedeemUpdate sets the redemption flag of one item.
type RedeemUpdate struct {
	ItemID   int64
	Redeemed bool
}

// Filter narrows record listings. Zero dates leave that bound open.
type Filter struct {
	SearchText  string
	SearchField enums.SearchField
	DateFrom    types.Date
	DateTo      types.Date
}

// RecordSummary is one row of the record list with its item aggregates.
type RecordSummary struct {
	ID             int64
	CustomerName   string
	CCCD           string
	Note           string
	TotalAmountVND int64
	DatePawn       types.Date
	CreatedAt      types.Timestamp
	ItemsSummary   string
	ItemCount      int64
	RedeemedCount  int64
}

// FullyRedeemed reports whether every item of the record is redeemed.
func (r RecordSummary) FullyRedeemed() bool {
	return enums.RecordFullyRedeemed(r.ItemCount, r.RedeemedCount)
}

// Page is one page of the record list.
type Page struct {
	Items      []RecordSummary
	TotalCount int64
	PageIndex  int
	PageSize   int
}

// TotalPages is at least one.
func (p *Page) TotalPages() int {
	return pagination.TotalPages(p.TotalCount, p.PageSize)
}

// ItemDTO is a full item row.
type ItemDTO struct {
	ID         int64
	RecordID   int64
	Qty        int64
	ItemName   string
	WeightChi  float64
	Note       string
	IsRedeemed bool
	RedeemedAt *time.Time
}

func (in CreateRecordInput) toModel(now time.Time) *models.PawnRecord {
	name := strings.TrimSpace(in.CustomerName)
	return &models.PawnRecord{
		CustomerName:       name,
		CustomerNameSearch: parsers.NormalizeSearchKey(name),
		CCCD:               strings.TrimSpace(in.CCCD),
		Note:               in.Note,
		TotalAmountVND:     in.TotalAmountVND,
		DatePawn:           in.DatePawn,
		CreatedAt:          types.NewTimestamp(now),
	}
}

func (in ItemInput) toModel(recordID int64) models.PawnItem {
	name := strings.TrimSpace(in.ItemName)
	return models.PawnItem{
		RecordID:       recordID,
		Qty:            in.Qty,
		ItemName:       name,
		ItemNameSearch: parsers.NormalizeSearchKey(name),
		WeightChi:      in.WeightChi,
		Note:           in.Note,
	}
}

func itemFromModel(m models.PawnItem) ItemDTO {
	dto := ItemDTO{
		ID:         m.ID,
		RecordID:   m.RecordID,
		Qty:        m.Qty,
		ItemName:   m.ItemName,
		WeightChi:  m.WeightChi,
		Note:       m.Note,
		IsRedeemed: m.IsRedeemed,
	}
	if m.RedeemedAt != nil && !m.RedeemedAt.IsZero() {
		at := m.RedeemedAt.Time()
		dto.RedeemedAt = &at
	}
	return dto
}
