// Package parser implements the recursive-descent SQL parser.
//
// What: one parse function per statement kind (SELECT, INSERT, CREATE,
// DROP, DELETE, UPDATE), dispatched on the leading keyword.
// How: a current-index cursor over the token stream with one-token
// lookahead, exactly the shape of tinySQL's own parser and the
// original Python Parser class it was distilled from.
// Why: recursive descent keeps each statement's grammar local and the
// error messages tied to a specific expectation, which matters more
// for a teaching core than generality.
package parser

import (
	"strconv"

	"github.com/coredb/coredb/internal/ast"
	"github.com/coredb/coredb/internal/dberrors"
	"github.com/coredb/coredb/internal/token"
)

// Parser consumes a fixed token stream and produces a single Statement.
type Parser struct {
	tokens []token.Token
	index  int
}

// New returns a Parser over the given token stream.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) current() *token.Token {
	if p.index < len(p.tokens) {
		return &p.tokens[p.index]
	}
	return nil
}

func (p *Parser) consume() *token.Token {
	t := p.current()
	p.index++
	return t
}

func (p *Parser) pos() int {
	if t := p.current(); t != nil {
		return t.Pos
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].Pos
	}
	return 0
}

// expect asserts the current token has the given kind (and, if value
// is non-empty, the given lexeme), consumes it, and returns it.
func (p *Parser) expect(kind token.Kind, value string) (*token.Token, error) {
	t := p.current()
	if t == nil {
		return nil, dberrors.NewParseError(p.pos(), "expected %s, got end of input", kind)
	}
	if t.Kind != kind || (value != "" && t.Lexeme != value) {
		want := kind.String()
		if value != "" {
			want = value
		}
		return nil, dberrors.NewParseError(t.Pos, "expected %s, got %s (%q)", want, t.Kind, t.Lexeme)
	}
	p.consume()
	return t, nil
}

// Parse dispatches on the leading keyword to one of six statement
// parsers.
func (p *Parser) Parse() (*ast.Statement, error) {
	if len(p.tokens) == 0 {
		return nil, dberrors.NewParseError(0, "no tokens found")
	}
	cur := p.current()
	if cur == nil || cur.Kind != token.KEYWORD {
		return nil, dberrors.NewParseError(p.pos(), "expected a statement keyword, got %s", p.describe(cur))
	}
	switch cur.Lexeme {
	case "SELECT":
		return p.parseSelect()
	case "INSERT":
		return p.parseInsert()
	case "CREATE":
		return p.parseCreate()
	case "DROP":
		return p.parseDrop()
	case "DELETE":
		return p.parseDelete()
	case "UPDATE":
		return p.parseUpdate()
	default:
		return nil, dberrors.NewParseError(cur.Pos, "invalid SQL statement: %q", cur.Lexeme)
	}
}

func (p *Parser) describe(t *token.Token) string {
	if t == nil {
		return "end of input"
	}
	return t.Kind.String() + " (" + t.Lexeme + ")"
}

// tableName consumes a single IDENTIFIER and returns its lexeme.
func (p *Parser) tableName() (string, error) {
	t, err := p.expect(token.IDENTIFIER, "")
	if err != nil {
		return "", dberrors.NewParseError(p.pos(), "expected a table name: %v", err)
	}
	return t.Lexeme, nil
}

// parseColumns returns ["*"] for ASTERISK, or a non-empty
// comma-separated identifier list.
func (p *Parser) parseColumns() ([]string, error) {
	if cur := p.current(); cur != nil && cur.Kind == token.ASTERISK {
		p.consume()
		return []string{"*"}, nil
	}
	var cols []string
	for {
		t := p.current()
		if t == nil || t.Kind != token.IDENTIFIER {
			break
		}
		cols = append(cols, t.Lexeme)
		p.consume()
		if cur := p.current(); cur != nil && cur.Kind == token.COMMA {
			p.consume()
			continue
		}
		break
	}
	if len(cols) == 0 {
		return nil, dberrors.NewParseError(p.pos(), "expected at least one column")
	}
	return cols, nil
}

// parseTables returns a non-empty comma-separated identifier list.
// spec.md only accepts a single table; callers enforce that.
func (p *Parser) parseTables() ([]string, error) {
	var tables []string
	for {
		t := p.current()
		if t == nil || t.Kind != token.IDENTIFIER {
			break
		}
		tables = append(tables, t.Lexeme)
		p.consume()
		if cur := p.current(); cur != nil && cur.Kind == token.COMMA {
			p.consume()
			continue
		}
		break
	}
	if len(tables) == 0 {
		return nil, dberrors.NewParseError(p.pos(), "expected at least one table")
	}
	return tables, nil
}

// condition parses `col OP value` where OP is one of the six
// comparison operators and value is NUMBER | STRING | IDENTIFIER.
func (p *Parser) condition() (*ast.Condition, error) {
	col, err := p.expect(token.IDENTIFIER, "")
	if err != nil {
		return nil, dberrors.NewParseError(p.pos(), "expected column name in condition: %v", err)
	}

	opTok := p.current()
	if opTok == nil {
		return nil, dberrors.NewParseError(p.pos(), "expected comparison operator, got end of input")
	}
	op, ok := operatorFor(opTok.Kind)
	if !ok {
		return nil, dberrors.NewParseError(opTok.Pos, "expected a comparison operator, got %s", p.describe(opTok))
	}
	p.consume()

	valTok := p.current()
	if valTok == nil {
		return nil, dberrors.NewParseError(p.pos(), "expected a value for condition, got end of input")
	}
	val, err := valueFromToken(*valTok)
	if err != nil {
		return nil, err
	}
	p.consume()

	return &ast.Condition{Column: col.Lexeme, Operator: op, Value: val}, nil
}

func operatorFor(k token.Kind) (ast.Operator, bool) {
	switch k {
	case token.EQUALS:
		return ast.OpEq, true
	case token.NOTEQUALS:
		return ast.OpNeq, true
	case token.LESSTHAN:
		return ast.OpLt, true
	case token.LESSEQUAL:
		return ast.OpLte, true
	case token.GREATERTHAN:
		return ast.OpGt, true
	case token.GREATEREQUAL:
		return ast.OpGte, true
	default:
		return 0, false
	}
}

// valueFromToken converts a NUMBER/STRING/IDENTIFIER token into a
// native Value: integer lexemes parse to integers, dotted numerics to
// reals, quoted strings to text.
func valueFromToken(t token.Token) (ast.Value, error) {
	switch t.Kind {
	case token.NUMBER:
		if hasDot(t.Lexeme) {
			f, err := strconv.ParseFloat(t.Lexeme, 64)
			if err != nil {
				return ast.Value{}, dberrors.NewParseError(t.Pos, "invalid numeric literal %q", t.Lexeme)
			}
			return ast.RealValue(f), nil
		}
		i, err := strconv.ParseInt(t.Lexeme, 10, 64)
		if err != nil {
			return ast.Value{}, dberrors.NewParseError(t.Pos, "invalid integer literal %q", t.Lexeme)
		}
		return ast.IntValue(i), nil
	case token.STRING:
		return ast.TextValue(t.Lexeme), nil
	case token.IDENTIFIER:
		switch t.Lexeme {
		case "true", "TRUE":
			return ast.BoolValue(true), nil
		case "false", "FALSE":
			return ast.BoolValue(false), nil
		}
		return ast.TextValue(t.Lexeme), nil
	case token.KEYWORD:
		switch t.Lexeme {
		case "TRUE":
			return ast.BoolValue(true), nil
		case "FALSE":
			return ast.BoolValue(false), nil
		case "NULL":
			return ast.NullValue(), nil
		}
		return ast.Value{}, dberrors.NewParseError(t.Pos, "expected a value, got keyword %q", t.Lexeme)
	default:
		return ast.Value{}, dberrors.NewParseError(t.Pos, "expected a value, got %s", t.Kind)
	}
}

func hasDot(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return true
		}
	}
	return false
}

// parseSetClause parses one or more `col = value` assignments
// separated by commas.
func (p *Parser) parseSetClause() ([]ast.Assignment, error) {
	var out []ast.Assignment
	for {
		colTok, err := p.expect(token.IDENTIFIER, "")
		if err != nil {
			return nil, dberrors.NewParseError(p.pos(), "expected column name in SET clause: %v", err)
		}
		if _, err := p.expect(token.EQUALS, ""); err != nil {
			return nil, dberrors.NewParseError(p.pos(), "expected '=' after column name in SET clause: %v", err)
		}
		valTok := p.current()
		if valTok == nil {
			return nil, dberrors.NewParseError(p.pos(), "expected a value in SET clause, got end of input")
		}
		val, err := valueFromToken(*valTok)
		if err != nil {
			return nil, err
		}
		p.consume()
		out = append(out, ast.Assignment{Column: colTok.Lexeme, Value: val})

		if cur := p.current(); cur != nil && cur.Kind == token.COMMA {
			p.consume()
			continue
		}
		break
	}
	return out, nil
}

// optionalWhere consumes a trailing `WHERE condition` clause if present.
func (p *Parser) optionalWhere() (*ast.Condition, error) {
	cur := p.current()
	if cur == nil || cur.Kind != token.KEYWORD || cur.Lexeme != "WHERE" {
		return nil, nil
	}
	p.consume()
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	return cond, nil
}
