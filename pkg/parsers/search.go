package parsers

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeSearchKey produces the stored search projection of a name: trimmed,
// whitespace runs collapsed to one space, lowercased with Vietnamese casing.
// Writes, backfill and queries must all go through this function.
func NormalizeSearchKey(text string) string {
	collapsed := collapseSpaces(text)
	if collapsed == "" {
		return ""
	}
	return cases.Lower(language.Vietnamese).String(collapsed)
}

// NormalizeCustomerName title-cases a customer name the way it is printed on
// a pawn ticket ("nguyễn  văn a" -> "Nguyễn Văn A").
func NormalizeCustomerName(text string) string {
	collapsed := collapseSpaces(text)
	if collapsed == "" {
		return ""
	}
	return cases.Title(language.Vietnamese).String(collapsed)
}

func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
