package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSearchKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"   ", ""},
		{"Nguyễn Văn A", "nguyễn văn a"},
		{"  NGUYỄN\t\tVĂN   A \n", "nguyễn văn a"},
		{"Nhẫn  Vàng 18K", "nhẫn vàng 18k"},
		{"ĐỖ THỊ Ý", "đỗ thị ý"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSearchKey(tt.input), "input %q", tt.input)
	}
}

func TestNormalizeSearchKeyIsIdempotent(t *testing.T) {
	for _, input := range []string{"Nguyễn Văn A", "  DÂY  chuyền\tVÀNG ", "x", ""} {
		once := NormalizeSearchKey(input)
		assert.Equal(t, once, NormalizeSearchKey(once))
	}
}

func TestNormalizeCustomerName(t *testing.T) {
	assert.Equal(t, "Nguyễn Văn A", NormalizeCustomerName("  nguyễn   VĂN a "))
	assert.Equal(t, "", NormalizeCustomerName("\t"))
}
