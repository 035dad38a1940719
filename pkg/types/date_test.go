package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateValueAndScan(t *testing.T) {
	d := NewDate(2024, time.March, 9)
	value, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", value)

	var got Date
	require.NoError(t, got.Scan("2024-03-09"))
	assert.Equal(t, d, got)

	require.NoError(t, got.Scan([]byte("2024-03-09 00:00:00")))
	assert.Equal(t, d, got)

	require.NoError(t, got.Scan(time.Date(2024, time.March, 9, 23, 59, 0, 0, time.Local)))
	assert.Equal(t, d, got)

	require.NoError(t, got.Scan(nil))
	assert.True(t, got.IsZero())
	assert.Equal(t, "", got.String())

	assert.Error(t, got.Scan(42))
	assert.Error(t, got.Scan("09/03/2024"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-01-31 ")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.January, 31), d)

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)

	assert.True(t, NewDate(2024, 1, 1).Before(NewDate(2024, 1, 2)))
}
