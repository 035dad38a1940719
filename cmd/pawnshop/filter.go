package main

import (
	"github.com/modernsales/pawnshop/internal/pawn"
	"github.com/modernsales/pawnshop/pkg/enums"
	pkgerrors "github.com/modernsales/pawnshop/pkg/errors"
	"github.com/modernsales/pawnshop/pkg/types"
	"github.com/spf13/cobra"
)

const (
	msgSearchFieldInvalid = "Trường tìm kiếm không hợp lệ. Chọn: name, cccd, item, amount."
	msgDateFilterInvalid  = "Ngày lọc không hợp lệ. Định dạng: YYYY-MM-DD."
)

// filterFlags are the search and date window flags shared by list, browse
// and export.
type filterFlags struct {
	search string
	field  string
	from   string
	to     string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "search text")
	cmd.Flags().StringVar(&f.field, "field", "name", "search field: name, cccd, item or amount")
	cmd.Flags().StringVar(&f.from, "from", "", "first pawn date, YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&f.to, "to", "", "last pawn date, YYYY-MM-DD (inclusive)")
}

func (f *filterFlags) build() (pawn.Filter, error) {
	field, err := enums.ParseSearchField(f.field)
	if err != nil {
		return pawn.Filter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgSearchFieldInvalid)
	}
	from, err := types.ParseDate(f.from)
	if err != nil {
		return pawn.Filter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgDateFilterInvalid)
	}
	to, err := types.ParseDate(f.to)
	if err != nil {
		return pawn.Filter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgDateFilterInvalid)
	}
	return pawn.Filter{
		SearchText:  f.search,
		SearchField: field,
		DateFrom:    from,
		DateTo:      to,
	}, nil
}
