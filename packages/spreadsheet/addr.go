package spreadsheet

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidAddress is returned by ParsePosition when the text isn't a
// well-formed <column><row> address.
var ErrInvalidAddress = errors.New("invalid cell address")

// ErrAddressOverflow is returned by ParsePosition when the column or row
// exceeds the [0, MaxCoord] coordinate range (§3).
var ErrAddressOverflow = errors.New("cell address out of range")

// FormatColumn renders a zero-based column index as an alphabetic
// bijective base-26 string: 0 -> "A", 25 -> "Z", 26 -> "AA", ... (§6).
func FormatColumn(col uint16) string {
	n := int(col) + 1
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[i:])
}

// ParseColumn parses an alphabetic bijective base-26 column string back
// to a zero-based index, the inverse of FormatColumn.
func ParseColumn(s string) (uint16, error) {
	if s == "" {
		return 0, ErrInvalidAddress
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			return 0, ErrInvalidAddress
		}
		n = n*26 + uint64(c-'A'+1)
		if n > MaxCoord+1 {
			return 0, ErrAddressOverflow
		}
	}
	if n == 0 || n-1 > MaxCoord {
		return 0, ErrAddressOverflow
	}
	return uint16(n - 1), nil
}

// FormatPosition renders pos as "<column><row>", e.g. Position{X:1,Y:0}
// -> "B0".
func FormatPosition(pos Position) string {
	var b strings.Builder
	b.WriteString(FormatColumn(pos.X))
	b.WriteString(strconv.FormatUint(uint64(pos.Y), 10))
	return b.String()
}

// ParsePosition parses "<column><row>" (e.g. "B0", "AA12") into a
// Position. Column letters must be uppercase; row must be a
// non-negative decimal integer within [0, MaxCoord].
func ParsePosition(s string) (Position, error) {
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) {
		return Position{}, ErrInvalidAddress
	}
	col, err := ParseColumn(s[:i])
	if err != nil {
		return Position{}, err
	}
	row, err := strconv.ParseUint(s[i:], 10, 32)
	if err != nil {
		return Position{}, errors.Wrap(ErrInvalidAddress, err.Error())
	}
	if row > MaxCoord {
		return Position{}, ErrAddressOverflow
	}
	return Position{X: col, Y: uint16(row)}, nil
}
