package pawn

import (
	"strings"

	"github.com/modernsales/pawnshop/pkg/enums"
	"github.com/modernsales/pawnshop/pkg/parsers"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching text anywhere, with the
// wildcards of text taken literally. Use with ESCAPE '\'.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

// apply adds the date window and search predicate to a query over
// "pawn_records r".
func (f Filter) apply(qb *gorm.DB) *gorm.DB {
	if !f.DateFrom.IsZero() {
		qb = qb.Where("r.date_pawn >= ?", f.DateFrom.String())
	}
	if !f.DateTo.IsZero() {
		qb = qb.Where("r.date_pawn <= ?", f.DateTo.String())
	}

	search := strings.TrimSpace(f.SearchText)
	if search == "" {
		return qb
	}

	switch f.SearchField.OrDefault() {
	case enums.SearchFieldCCCD:
		return qb.Where(`r.cccd LIKE ? ESCAPE '\'`, containsPattern(search))
	case enums.SearchFieldItem:
		return qb.Where(
			`EXISTS (SELECT 1 FROM pawn_items si WHERE si.record_id = r.id AND si.item_name_search LIKE ? ESCAPE '\')`,
			containsPattern(parsers.NormalizeSearchKey(search)),
		)
	case enums.SearchFieldAmount:
		if amount, ok := parsers.ParseMoney(search); ok {
			return qb.Where("r.total_amount_vnd = ?", amount)
		}
		digits := parsers.DigitsOnly(search)
		if digits == "" {
			return qb.Where("1 = 0")
		}
		return qb.Where("CAST(r.total_amount_vnd AS TEXT) LIKE ?", "%"+digits+"%")
	default:
		return qb.Where(`r.customer_name_search LIKE ? ESCAPE '\'`, containsPattern(parsers.NormalizeSearchKey(search)))
	}
}
