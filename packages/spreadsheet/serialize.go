package spreadsheet

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedLine is returned by LoadLine when a line doesn't match
// the "let <POS> = <EXPR>" / "label <POS> = <TEXT>" grammar (§6).
var ErrMalformedLine = errors.New("malformed persisted line")

// ExpressionParser is the collaborator the kernel calls back into to
// turn persisted formula text into an Expression, kept as an interface
// so this package never imports the expression-tree package (§4.4: the
// dependency runs the other way).
type ExpressionParser interface {
	Parse(text string) (Expression, error)
}

// Dump writes every cell in canonical hash(pos) order as one
// "let"/"label" line each (§6, §9 "Ordered cell store").
func (s *Sheet) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, c := range s.cells.all() {
		var line string
		if c.label {
			line = "label " + FormatPosition(c.pos) + " = " + quoteText(s.cells.valueOf(c).Str) + "\n"
		} else {
			var buf bytes.Buffer
			if err := c.expr.Print(&buf, s.pool); err != nil {
				return errors.Wrapf(err, "printing cell %s", FormatPosition(c.pos))
			}
			line = "let " + FormatPosition(c.pos) + " = " + buf.String() + "\n"
		}
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadLine parses one persisted-format line and applies it to s.
// Malformed lines are the caller's to skip (§7: permissive recovery);
// this only reports the error, it never panics or partially mutates s.
func LoadLine(s *Sheet, parser ExpressionParser, line string) error {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil
	}

	rest, isLabel, err := splitKeyword(line)
	if err != nil {
		return err
	}

	eq := strings.Index(rest, "=")
	if eq < 0 {
		return errors.Wrap(ErrMalformedLine, "missing '='")
	}
	addrText := strings.TrimSpace(rest[:eq])
	body := strings.TrimSpace(rest[eq+1:])

	pos, err := ParsePosition(addrText)
	if err != nil {
		return errors.Wrap(ErrMalformedLine, err.Error())
	}

	if isLabel {
		text, err := unquoteText(body)
		if err != nil {
			return errors.Wrap(ErrMalformedLine, err.Error())
		}
		s.InsertLabel(pos, text)
		return nil
	}

	expr, err := parser.Parse(body)
	if err != nil {
		return errors.Wrap(ErrMalformedLine, err.Error())
	}
	s.Insert(pos, expr, false)
	return nil
}

func splitKeyword(line string) (rest string, isLabel bool, err error) {
	switch {
	case strings.HasPrefix(line, "let "):
		return line[len("let "):], false, nil
	case strings.HasPrefix(line, "label "):
		return line[len("label "):], true, nil
	default:
		return "", false, errors.Wrap(ErrMalformedLine, "unrecognized line keyword")
	}
}

func quoteText(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(s, `"`, `""`))
	b.WriteByte('"')
	return b.String()
}

func unquoteText(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", errors.New("expected quoted text")
	}
	return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`), nil
}

// formatNumber renders n at the given display precision, the same
// rule column width estimation and any future display layer apply.
func formatNumber(n float64, precision int) string {
	return strconv.FormatFloat(n, 'f', precision, 64)
}
