package enums

import (
	"fmt"
	"strings"
)

// SearchField selects which column the record search text is matched against.
type SearchField string

const (
	SearchFieldName   SearchField = "name"
	SearchFieldCCCD   SearchField = "cccd"
	SearchFieldItem   SearchField = "item"
	SearchFieldAmount SearchField = "amount"
)

var validSearchFields = []SearchField{
	SearchFieldName,
	SearchFieldCCCD,
	SearchFieldItem,
	SearchFieldAmount,
}

// String implements fmt.Stringer.
func (f SearchField) String() string {
	return string(f)
}

// IsValid reports whether the value is a known SearchField.
func (f SearchField) IsValid() bool {
	for _, candidate := range validSearchFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// OrDefault maps an empty or unknown field to name search.
func (f SearchField) OrDefault() SearchField {
	if f.IsValid() {
		return f
	}
	return SearchFieldName
}

// ParseSearchField converts raw input into a SearchField. Blank input selects
// name search.
func ParseSearchField(value string) (SearchField, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return SearchFieldName, nil
	}
	for _, candidate := range validSearchFields {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid search field %q", value)
}
