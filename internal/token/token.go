// Package token implements the SQL tokenizer.
//
// What: a single left-to-right scan that tries an ordered list of
// patterns at each position and takes the first match — ordering is
// significant, not leading-longest: keywords are tried before
// identifiers, and multi-char operators are tried before their
// single-char prefixes.
// How: a byte-based scanner in the style of tinySQL's lexer.go, plus
// golang.org/x/text/cases for Unicode-correct keyword uppercasing.
// Why: ordering the pattern list instead of building a DFA keeps the
// scanner's behavior traceable to the spec it implements, which is the
// point of a teaching core.
package token

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the closed set of token kinds produced by the tokenizer.
type Kind int

const (
	KEYWORD Kind = iota
	IDENTIFIER
	NUMBER
	STRING
	ASTERISK
	COMMA
	LPAREN
	RPAREN
	SEMICOLON
	DOT
	EQUALS
	NOTEQUALS
	LESSTHAN
	GREATERTHAN
	LESSEQUAL
	GREATEREQUAL
)

func (k Kind) String() string {
	switch k {
	case KEYWORD:
		return "KEYWORD"
	case IDENTIFIER:
		return "IDENTIFIER"
	case NUMBER:
		return "NUMBER"
	case STRING:
		return "STRING"
	case ASTERISK:
		return "ASTERISK"
	case COMMA:
		return "COMMA"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case SEMICOLON:
		return "SEMICOLON"
	case DOT:
		return "DOT"
	case EQUALS:
		return "EQUALS"
	case NOTEQUALS:
		return "NOTEQUALS"
	case LESSTHAN:
		return "LESSTHAN"
	case GREATERTHAN:
		return "GREATERTHAN"
	case LESSEQUAL:
		return "LESSEQUAL"
	case GREATEREQUAL:
		return "GREATEREQUAL"
	default:
		return "UNKNOWN"
	}
}

// Token is a single lexical unit: its kind, its lexeme (keywords
// upper-cased, strings with surrounding quotes stripped), and the byte
// offset it started at.
type Token struct {
	Kind    Kind
	Lexeme  string
	Pos     int
}

var upperCaser = cases.Upper(language.Und)

// keywords is the fixed allow-list of upper-cased SQL keywords this
// dialect recognizes. Column-type names double as keywords so CREATE
// TABLE column definitions can be parsed without a separate lexical
// class.
var keywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true,
	"INSERT": true, "INTO": true, "VALUES": true,
	"CREATE": true, "TABLE": true, "DROP": true,
	"UPDATE": true, "SET": true, "DELETE": true,
	"PRIMARY": true, "KEY": true, "NOT": true, "NULL": true,
	"INT": true, "TEXT": true, "REAL": true, "BOOLEAN": true, "VARCHAR": true,
	"AND": true, "OR": true,
	"TRUE": true, "FALSE": true,
}

func isKeyword(upper string) bool { return keywords[upper] }
