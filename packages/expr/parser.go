package expr

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	kernel "github.com/latticecell/sheetkernel/packages/spreadsheet"
)

// Parser is a recursive-descent parser over an expression's text form,
// emitting a Tree as a post-order node array (§4.4).
type Parser struct {
	lex  *Lexer
	tok  Token
	out  []node
	errs []string
}

// Parse parses text into a Tree. A formula's leading "=" is stripped
// by the caller before text reaches here; text is everything after it.
func Parse(text string) (*Tree, error) {
	p := &Parser{lex: NewLexer(text)}
	p.advance()
	p.parseExpr()
	if p.tok.Kind != TokEOF {
		p.errorf("unexpected trailing input %q", p.tok.Text)
	}
	if len(p.errs) > 0 {
		return nil, errors.Wrap(ErrMalformedExpression, p.errs[0])
	}
	return &Tree{nodes: p.out}, nil
}

func (p *Parser) advance() { p.tok = p.lex.Next() }

func (p *Parser) errorf(format string, args ...any) {
	if len(p.errs) == 0 {
		p.errs = append(p.errs, fmt.Sprintf(format, args...))
	}
}

func (p *Parser) emit(n node) { p.out = append(p.out, n) }

// parseExpr := term (('+'|'-') term)*
func (p *Parser) parseExpr() {
	p.parseTerm()
	for p.tok.Kind == TokPlus || p.tok.Kind == TokMinus {
		op := opAdd
		if p.tok.Kind == TokMinus {
			op = opSub
		}
		p.advance()
		p.parseTerm()
		p.emit(node{kind: nodeBinary, bop: op})
	}
}

// parseTerm := unary (('*'|'/') unary)*
func (p *Parser) parseTerm() {
	p.parseUnary()
	for p.tok.Kind == TokStar || p.tok.Kind == TokSlash {
		op := opMul
		if p.tok.Kind == TokSlash {
			op = opDiv
		}
		p.advance()
		p.parseUnary()
		p.emit(node{kind: nodeBinary, bop: op})
	}
}

// parseUnary := ('+'|'-')? parsePower
func (p *Parser) parseUnary() {
	if p.tok.Kind == TokPlus || p.tok.Kind == TokMinus {
		op := opPos
		if p.tok.Kind == TokMinus {
			op = opNeg
		}
		p.advance()
		p.parseUnary()
		p.emit(node{kind: nodeUnary, uop: op})
		return
	}
	p.parsePower()
}

// parsePower := atom ('^' parseUnary)?, right-associative
func (p *Parser) parsePower() {
	p.parseAtom()
	if p.tok.Kind == TokCaret {
		p.advance()
		p.parseUnary()
		p.emit(node{kind: nodeBinary, bop: opPow})
	}
}

func (p *Parser) parseAtom() {
	switch p.tok.Kind {
	case TokNumber:
		n, err := strconv.ParseFloat(p.tok.Text, 64)
		if err != nil {
			p.errorf("invalid number %q", p.tok.Text)
		}
		p.advance()
		p.emit(node{kind: nodeNumber, num: n})
	case TokString:
		s := p.tok.Text
		p.advance()
		p.emit(node{kind: nodeString, str: s})
	case TokLParen:
		p.advance()
		p.parseExpr()
		p.expect(TokRParen)
	case TokAt:
		p.advance()
		p.parseCall()
	case TokIdent:
		p.parseReference()
	default:
		p.errorf("unexpected token %q", p.tok.Text)
		p.advance()
	}
}

func (p *Parser) parseReference() {
	first := p.tok.Text
	pos, err := kernel.ParsePosition(first)
	if err != nil {
		p.errorf("invalid cell reference %q", first)
		p.advance()
		return
	}
	p.advance()
	if p.tok.Kind == TokColon {
		p.advance()
		if p.tok.Kind != TokIdent {
			p.errorf("expected cell reference after ':'")
			return
		}
		second, err := kernel.ParsePosition(p.tok.Text)
		if err != nil {
			p.errorf("invalid cell reference %q", p.tok.Text)
			p.advance()
			return
		}
		p.advance()
		p.emit(node{kind: nodeRangeRef, rng: kernel.NewRange(pos, second)})
		return
	}
	p.emit(node{kind: nodeCellRef, pos: pos})
}

func (p *Parser) parseCall() {
	if p.tok.Kind != TokIdent {
		p.errorf("expected function name after '@'")
		return
	}
	name := p.tok.Text
	p.advance()
	p.expect(TokLParen)
	argc := 0
	if p.tok.Kind != TokRParen {
		p.parseExpr()
		argc++
		for p.tok.Kind == TokComma {
			p.advance()
			p.parseExpr()
			argc++
		}
	}
	p.expect(TokRParen)
	p.emit(node{kind: nodeCall, str: name, argc: argc})
}

func (p *Parser) expect(kind TokenKind) {
	if p.tok.Kind != kind {
		p.errorf("unexpected token %q", p.tok.Text)
		return
	}
	p.advance()
}
