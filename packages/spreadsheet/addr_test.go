package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnRoundTrip(t *testing.T) {
	cases := []uint16{0, 1, 25, 26, 27, 51, 52, 701, 702}
	for _, col := range cases {
		text := FormatColumn(col)
		got, err := ParseColumn(text)
		require.NoError(t, err)
		assert.Equal(t, col, got, "column %d formatted as %q", col, text)
	}
}

func TestFormatColumnKnownValues(t *testing.T) {
	assert.Equal(t, "A", FormatColumn(0))
	assert.Equal(t, "Z", FormatColumn(25))
	assert.Equal(t, "AA", FormatColumn(26))
	assert.Equal(t, "AZ", FormatColumn(51))
	assert.Equal(t, "BA", FormatColumn(52))
}

func TestPositionRoundTrip(t *testing.T) {
	cases := []Position{{X: 0, Y: 0}, {X: 25, Y: 9}, {X: 26, Y: 100}, {X: 1000, Y: 65535}}
	for _, pos := range cases {
		text := FormatPosition(pos)
		got, err := ParsePosition(text)
		require.NoError(t, err)
		assert.Equal(t, pos, got)
	}
}

func TestParsePositionRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "5", "A", "1A", "A-1"} {
		_, err := ParsePosition(s)
		assert.Error(t, err, "expected error parsing %q", s)
	}
}

func TestParseColumnOverflow(t *testing.T) {
	_, err := ParseColumn("ZZZZZZZZZZZZZZZZ")
	assert.ErrorIs(t, err, ErrAddressOverflow)
}
