package token

import "testing"

func TestTokenizeBasicSelect(t *testing.T) {
	toks, err := NewLexer("SELECT id, name FROM users WHERE id = 1;").Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Kind{KEYWORD, IDENTIFIER, COMMA, IDENTIFIER, KEYWORD, IDENTIFIER,
		KEYWORD, IDENTIFIER, EQUALS, NUMBER, SEMICOLON}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(toks), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: expected %v, got %v (%q)", i, k, toks[i].Kind, toks[i].Lexeme)
		}
	}
	if toks[0].Lexeme != "SELECT" {
		t.Errorf("expected uppercased keyword, got %q", toks[0].Lexeme)
	}
}

func TestTokenizeKeywordIsCaseInsensitive(t *testing.T) {
	toks, err := NewLexer("select * from t").Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != KEYWORD || toks[0].Lexeme != "SELECT" {
		t.Fatalf("expected uppercased SELECT keyword, got %+v", toks[0])
	}
}

func TestTokenizeMultiCharOperatorsBeforeSinglechar(t *testing.T) {
	cases := []struct {
		src  string
		kind Kind
	}{
		{"!=", NOTEQUALS},
		{"<=", LESSEQUAL},
		{">=", GREATEREQUAL},
		{"<", LESSTHAN},
		{">", GREATERTHAN},
		{"=", EQUALS},
	}
	for _, c := range cases {
		toks, err := NewLexer(c.src).Tokenize()
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", c.src, err)
		}
		if len(toks) != 1 || toks[0].Kind != c.kind {
			t.Fatalf("%q: expected single token of kind %v, got %+v", c.src, c.kind, toks)
		}
	}
}

func TestTokenizeStringLiteralsStripQuotes(t *testing.T) {
	for _, src := range []string{"'Alice'", `"Alice"`} {
		toks, err := NewLexer(src).Tokenize()
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", src, err)
		}
		if len(toks) != 1 || toks[0].Kind != STRING || toks[0].Lexeme != "Alice" {
			t.Fatalf("%q: expected stripped string token, got %+v", src, toks)
		}
	}
}

func TestTokenizeNumberWithDecimalPoint(t *testing.T) {
	toks, err := NewLexer("3.14").Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) != 1 || toks[0].Kind != NUMBER || toks[0].Lexeme != "3.14" {
		t.Fatalf("expected single NUMBER token '3.14', got %+v", toks)
	}
}

func TestTokenizeLineComment(t *testing.T) {
	toks, err := NewLexer("SELECT 1 -- trailing comment\nFROM t").Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) != 4 {
		t.Fatalf("expected comment to be skipped, got %+v", toks)
	}
}

func TestTokenizeUnknownCharacterFails(t *testing.T) {
	_, err := NewLexer("SELECT @").Tokenize()
	if err == nil {
		t.Fatal("expected lexical error for unknown character")
	}
}

func TestTokenizeRenderRoundTrip(t *testing.T) {
	src := "SELECT * FROM users WHERE id != 2"
	toks, err := NewLexer(src).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rendered := render(toks)
	toks2, err := NewLexer(rendered).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error re-scanning rendered stream: %v", err)
	}
	if len(toks) != len(toks2) {
		t.Fatalf("round trip changed token count: %d vs %d", len(toks), len(toks2))
	}
	for i := range toks {
		if toks[i].Kind != toks2[i].Kind {
			t.Errorf("token %d kind mismatch: %v vs %v", i, toks[i].Kind, toks2[i].Kind)
		}
	}
}

func render(toks []Token) string {
	out := ""
	for i, t := range toks {
		if i > 0 {
			out += " "
		}
		if t.Kind == STRING {
			out += "'" + t.Lexeme + "'"
		} else {
			out += t.Lexeme
		}
	}
	return out
}
