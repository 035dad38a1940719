package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchField(t *testing.T) {
	got, err := ParseSearchField(" CCCD ")
	require.NoError(t, err)
	assert.Equal(t, SearchFieldCCCD, got)

	got, err = ParseSearchField("")
	require.NoError(t, err)
	assert.Equal(t, SearchFieldName, got)

	_, err = ParseSearchField("phone")
	assert.Error(t, err)

	assert.Equal(t, SearchFieldName, SearchField("").OrDefault())
	assert.Equal(t, SearchFieldAmount, SearchFieldAmount.OrDefault())
}

func TestRedemptionStatus(t *testing.T) {
	assert.Equal(t, "Đã chuộc", RedemptionStatusOf(true).String())
	assert.Equal(t, "Chưa chuộc", RedemptionStatusOf(false).String())

	assert.False(t, RecordFullyRedeemed(0, 0))
	assert.False(t, RecordFullyRedeemed(3, 2))
	assert.True(t, RecordFullyRedeemed(3, 3))
}
