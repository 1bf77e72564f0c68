package cinder

import "testing"

func TestLexerOperatorsAndKeywords(t *testing.T) {
	input := `int x = 5; x += 2; ::N::f(x) && !b || y != 3.5e2 ? "a\n" : ~C;`
	expected := []TokenType{
		tokenTypeName, tokenIdent, tokenAssign, tokenInt, tokenSemicolon,
		tokenIdent, tokenPlusAssign, tokenInt, tokenSemicolon,
		tokenScope, tokenIdent, tokenScope, tokenIdent, tokenLParen, tokenIdent, tokenRParen,
		tokenAnd, tokenBang, tokenIdent, tokenOr, tokenIdent, tokenNotEQ, tokenFloat,
		tokenQuestion, tokenString, tokenColon, tokenTilde, tokenIdent, tokenSemicolon,
		tokenEOF,
	}

	tokens := newLexer(input, 0).tokenize()
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, tt := range expected {
		if tokens[i].Type != tt {
			t.Fatalf("token %d: expected %s, got %s (%q)", i, tt, tokens[i].Type, tokens[i].Literal)
		}
	}
	if tokens[24].Literal != "a\n" {
		t.Fatalf("expected unescaped string literal, got %q", tokens[24].Literal)
	}
}

func TestLexerKeywords(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"class", tokenClass},
		{"struct", tokenStruct},
		{"namespace", tokenNamespace},
		{"extern", tokenExtern},
		{"static", tokenStatic},
		{"return", tokenReturn},
		{"while", tokenWhile},
		{"true", tokenTrue},
		{"double", tokenTypeName},
		{"auto", tokenTypeName},
		{"counter_1", tokenIdent},
	}
	for _, tc := range tests {
		tok := newLexer(tc.input, 0).NextToken()
		if tok.Type != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.input, tc.want, tok.Type)
		}
		if tok.Literal != tc.input {
			t.Fatalf("%q: unexpected literal %q", tc.input, tok.Literal)
		}
	}
}

func TestLexerSkipsComments(t *testing.T) {
	tokens := newLexer("// line\n/* block\n comment */ x", 0).tokenize()
	if len(tokens) != 2 || tokens[0].Type != tokenIdent || tokens[0].Literal != "x" {
		t.Fatalf("unexpected tokens %v", tokens)
	}
	if tokens[0].Pos.Line != 3 {
		t.Fatalf("expected x on line 3, got %d", tokens[0].Pos.Line)
	}
}

func TestLexerLineOffset(t *testing.T) {
	tokens := newLexer("void f() {\nx\n}", -1).tokenize()
	for _, tok := range tokens {
		if tok.Literal == "x" {
			if tok.Pos.Line != 1 {
				t.Fatalf("expected x on line 1 of the fragment, got %d", tok.Pos.Line)
			}
			return
		}
	}
	t.Fatalf("x not lexed")
}

func TestLexerUnterminatedInput(t *testing.T) {
	for _, input := range []string{`"open`, "/* open"} {
		tokens := newLexer(input, 0).tokenize()
		if tokens[0].Type != tokenIllegal {
			t.Fatalf("%q: expected illegal token, got %s", input, tokens[0].Type)
		}
	}
}
