package parser

import (
	"github.com/coredb/coredb/internal/ast"
	"github.com/coredb/coredb/internal/dberrors"
	"github.com/coredb/coredb/internal/token"
)

// parseSelect: SELECT (ASTERISK | col_list) FROM table [WHERE cond]
// Only one table is accepted; more is a parse error.
func (p *Parser) parseSelect() (*ast.Statement, error) {
	p.consume() // SELECT
	cols, err := p.parseColumns()
	if err != nil {
		return nil, err
	}

	cur := p.current()
	if cur == nil || cur.Kind != token.KEYWORD || cur.Lexeme != "FROM" {
		return nil, dberrors.NewParseError(p.pos(), "expected 'FROM' in SELECT statement")
	}
	p.consume() // FROM

	tables, err := p.parseTables()
	if err != nil {
		return nil, err
	}
	if len(tables) != 1 {
		return nil, dberrors.NewParseError(p.pos(), "SELECT accepts exactly one table, got %d", len(tables))
	}

	where, err := p.optionalWhere()
	if err != nil {
		return nil, err
	}

	p.consumeOptionalSemicolon()

	return &ast.Statement{
		Kind:    ast.StmtSelect,
		Columns: cols,
		Table:   tables[0],
		Where:   where,
	}, nil
}

// parseInsert: INSERT INTO table LPAREN col_list RPAREN VALUES LPAREN
// value_list RPAREN SEMICOLON. Multi-row VALUES lists may be parsed
// but only the first row is retained.
func (p *Parser) parseInsert() (*ast.Statement, error) {
	p.consume() // INSERT
	if _, err := p.expect(token.KEYWORD, "INTO"); err != nil {
		return nil, dberrors.NewParseError(p.pos(), "expected 'INTO' after INSERT: %v", err)
	}

	table, err := p.tableName()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LPAREN, ""); err != nil {
		return nil, dberrors.NewParseError(p.pos(), "expected '(' after table name: %v", err)
	}
	cols, err := p.identList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, ""); err != nil {
		return nil, dberrors.NewParseError(p.pos(), "unbalanced parentheses in column list: %v", err)
	}

	cur := p.current()
	if cur == nil || cur.Kind != token.KEYWORD || cur.Lexeme != "VALUES" {
		return nil, dberrors.NewParseError(p.pos(), "expected 'VALUES' after column list")
	}
	p.consume() // VALUES

	firstRow, err := p.parseValuesRow()
	if err != nil {
		return nil, err
	}

	// Multi-row VALUES is parsed but discarded: spec.md §9 mandates
	// retaining only the first row.
	for {
		cur := p.current()
		if cur == nil || cur.Kind != token.COMMA {
			break
		}
		p.consume()
		if _, err := p.parseValuesRow(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.SEMICOLON, ""); err != nil {
		return nil, dberrors.NewParseError(p.pos(), "INSERT requires a trailing ';': %v", err)
	}

	if len(firstRow) != len(cols) {
		return nil, dberrors.NewParseError(p.pos(), "column count (%d) does not match value count (%d)", len(cols), len(firstRow))
	}

	return &ast.Statement{
		Kind:          ast.StmtInsert,
		Table:         table,
		InsertColumns: cols,
		InsertValues:  firstRow,
	}, nil
}

func (p *Parser) identList() ([]string, error) {
	var out []string
	for {
		t, err := p.expect(token.IDENTIFIER, "")
		if err != nil {
			return nil, dberrors.NewParseError(p.pos(), "expected column name: %v", err)
		}
		out = append(out, t.Lexeme)
		if cur := p.current(); cur != nil && cur.Kind == token.COMMA {
			p.consume()
			continue
		}
		break
	}
	if len(out) == 0 {
		return nil, dberrors.NewParseError(p.pos(), "expected a non-empty column list")
	}
	return out, nil
}

func (p *Parser) parseValuesRow() ([]ast.Value, error) {
	if _, err := p.expect(token.LPAREN, ""); err != nil {
		return nil, dberrors.NewParseError(p.pos(), "expected '(' before value list: %v", err)
	}
	var out []ast.Value
	for {
		t := p.current()
		if t == nil {
			return nil, dberrors.NewParseError(p.pos(), "expected a value, got end of input")
		}
		val, err := valueFromToken(*t)
		if err != nil {
			return nil, err
		}
		p.consume()
		out = append(out, val)
		if cur := p.current(); cur != nil && cur.Kind == token.COMMA {
			p.consume()
			continue
		}
		break
	}
	if len(out) == 0 {
		return nil, dberrors.NewParseError(p.pos(), "expected at least one value in VALUES list")
	}
	if _, err := p.expect(token.RPAREN, ""); err != nil {
		return nil, dberrors.NewParseError(p.pos(), "unbalanced parentheses in value list: %v", err)
	}
	return out, nil
}

// parseCreate: CREATE TABLE table LPAREN col_def{,col_def} RPAREN
// where col_def := IDENT type [size] constraint*.
func (p *Parser) parseCreate() (*ast.Statement, error) {
	p.consume() // CREATE
	if _, err := p.expect(token.KEYWORD, "TABLE"); err != nil {
		return nil, dberrors.NewParseError(p.pos(), "expected 'TABLE' after CREATE: %v", err)
	}

	table, err := p.tableName()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LPAREN, ""); err != nil {
		return nil, dberrors.NewParseError(p.pos(), "expected '(' after table name: %v", err)
	}

	var cols []ast.ColumnDef
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)

		cur := p.current()
		if cur == nil {
			return nil, dberrors.NewParseError(p.pos(), "unbalanced parentheses in column list")
		}
		if cur.Kind == token.COMMA {
			p.consume()
			continue
		}
		if cur.Kind == token.RPAREN {
			p.consume()
			break
		}
		return nil, dberrors.NewParseError(cur.Pos, "expected ',' or ')' in column list, got %s", p.describe(cur))
	}

	if len(cols) == 0 {
		return nil, dberrors.NewParseError(p.pos(), "CREATE TABLE requires at least one column")
	}

	p.consumeOptionalSemicolon()

	return &ast.Statement{
		Kind:          ast.StmtCreate,
		Table:         table,
		CreateColumns: cols,
	}, nil
}

func (p *Parser) parseColumnDef() (ast.ColumnDef, error) {
	nameTok, err := p.expect(token.IDENTIFIER, "")
	if err != nil {
		return ast.ColumnDef{}, dberrors.NewParseError(p.pos(), "expected column name: %v", err)
	}

	typeTok := p.current()
	if typeTok == nil || typeTok.Kind != token.KEYWORD {
		return ast.ColumnDef{}, dberrors.NewParseError(p.pos(), "expected column type (INT, TEXT, REAL, BOOLEAN, VARCHAR)")
	}
	colType, ok := colTypeFor(typeTok.Lexeme)
	if !ok {
		return ast.ColumnDef{}, dberrors.NewParseError(typeTok.Pos, "unknown column type %q", typeTok.Lexeme)
	}
	p.consume()

	def := ast.ColumnDef{Name: nameTok.Lexeme, Type: colType}

	if colType == ast.ColVarchar {
		if cur := p.current(); cur != nil && cur.Kind == token.LPAREN {
			p.consume()
			sizeTok, err := p.expect(token.NUMBER, "")
			if err != nil {
				return ast.ColumnDef{}, dberrors.NewParseError(p.pos(), "expected VARCHAR size: %v", err)
			}
			size := 0
			for _, c := range sizeTok.Lexeme {
				size = size*10 + int(c-'0')
			}
			def.Size = size
			if _, err := p.expect(token.RPAREN, ""); err != nil {
				return ast.ColumnDef{}, dberrors.NewParseError(p.pos(), "expected ')' after VARCHAR size: %v", err)
			}
		}
	}

	for {
		cur := p.current()
		if cur == nil || cur.Kind != token.KEYWORD {
			break
		}
		switch cur.Lexeme {
		case "PRIMARY":
			p.consume()
			if _, err := p.expect(token.KEYWORD, "KEY"); err != nil {
				return ast.ColumnDef{}, dberrors.NewParseError(p.pos(), "expected 'KEY' after PRIMARY: %v", err)
			}
			def.Constraints = append(def.Constraints, ast.PrimaryKey)
		case "NOT":
			p.consume()
			if _, err := p.expect(token.KEYWORD, "NULL"); err != nil {
				return ast.ColumnDef{}, dberrors.NewParseError(p.pos(), "expected 'NULL' after NOT: %v", err)
			}
			def.Constraints = append(def.Constraints, ast.NotNull)
		default:
			return def, nil
		}
	}
	return def, nil
}

func colTypeFor(kw string) (ast.ColType, bool) {
	switch kw {
	case "INT":
		return ast.ColInt, true
	case "TEXT":
		return ast.ColText, true
	case "REAL":
		return ast.ColReal, true
	case "BOOLEAN":
		return ast.ColBoolean, true
	case "VARCHAR":
		return ast.ColVarchar, true
	default:
		return 0, false
	}
}

// parseUpdate: UPDATE table SET set_clause [WHERE cond]
func (p *Parser) parseUpdate() (*ast.Statement, error) {
	p.consume() // UPDATE
	table, err := p.tableName()
	if err != nil {
		return nil, err
	}

	cur := p.current()
	if cur == nil || cur.Kind != token.KEYWORD || cur.Lexeme != "SET" {
		return nil, dberrors.NewParseError(p.pos(), "expected 'SET' after table name in UPDATE")
	}
	p.consume() // SET

	assignments, err := p.parseSetClause()
	if err != nil {
		return nil, err
	}

	where, err := p.optionalWhere()
	if err != nil {
		return nil, err
	}

	p.consumeOptionalSemicolon()

	return &ast.Statement{
		Kind:      ast.StmtUpdate,
		Table:     table,
		SetClause: assignments,
		Where:     where,
	}, nil
}

// parseDelete: DELETE FROM table [WHERE cond]
func (p *Parser) parseDelete() (*ast.Statement, error) {
	p.consume() // DELETE
	cur := p.current()
	if cur == nil || cur.Kind != token.KEYWORD || cur.Lexeme != "FROM" {
		return nil, dberrors.NewParseError(p.pos(), "expected 'FROM' after DELETE")
	}
	p.consume() // FROM

	table, err := p.tableName()
	if err != nil {
		return nil, err
	}

	where, err := p.optionalWhere()
	if err != nil {
		return nil, err
	}

	p.consumeOptionalSemicolon()

	return &ast.Statement{
		Kind:  ast.StmtDelete,
		Table: table,
		Where: where,
	}, nil
}

// parseDrop: DROP TABLE table
func (p *Parser) parseDrop() (*ast.Statement, error) {
	p.consume() // DROP
	if _, err := p.expect(token.KEYWORD, "TABLE"); err != nil {
		return nil, dberrors.NewParseError(p.pos(), "expected 'TABLE' after DROP: %v", err)
	}
	table, err := p.tableName()
	if err != nil {
		return nil, err
	}
	p.consumeOptionalSemicolon()
	return &ast.Statement{Kind: ast.StmtDrop, Table: table}, nil
}

// consumeOptionalSemicolon eats a trailing SEMICOLON if present — it
// is optional except where INSERT's grammar mandates it explicitly.
func (p *Parser) consumeOptionalSemicolon() {
	if cur := p.current(); cur != nil && cur.Kind == token.SEMICOLON {
		p.consume()
	}
}
