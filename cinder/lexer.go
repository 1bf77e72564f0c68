package cinder

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexer struct {
	input string

	offset int
	width  int

	line   int
	column int

	ch rune
}

// newLexer starts line numbering at 1+lineOffset so wrapped fragments report
// positions relative to the text the user typed.
func newLexer(input string, lineOffset int) *lexer {
	l := &lexer{input: input, line: 1 + lineOffset, column: 0}
	l.readRune()
	return l
}

func (l *lexer) readRune() {
	if l.offset >= len(l.input) {
		l.width = 0
		l.ch = 0
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.width = w
	l.offset += w

	if l.ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}

	l.ch = r
}

func (l *lexer) peekRune() rune {
	if l.offset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return r
}

func (l *lexer) peekRuneN(n int) rune {
	idx := l.offset
	var r rune
	var w int
	for i := 0; i <= n; i++ {
		if idx >= len(l.input) {
			return 0
		}
		r, w = utf8.DecodeRuneInString(l.input[idx:])
		if i == n {
			return r
		}
		idx += w
	}
	return 0
}

// tokenize drains the lexer. The parser needs more than one token of
// lookahead to separate declarations from expressions.
func (l *lexer) tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == tokenEOF {
			return tokens
		}
	}
}

func (l *lexer) NextToken() Token {
	if msg := l.skipWhitespaceAndComments(); msg != "" {
		return Token{Type: tokenIllegal, Literal: msg, Pos: Position{Line: l.line, Column: l.column}}
	}

	tok := Token{Pos: Position{Line: l.line, Column: l.column}}

	switch l.ch {
	case 0:
		tok.Type = tokenEOF
		tok.Literal = ""
	case '#':
		tok.Type = tokenDirective
		tok.Literal = l.readDirective()
	case '+':
		tok = l.readOperator(tokenPlus, map[rune]TokenType{'+': tokenIncrement, '=': tokenPlusAssign})
	case '-':
		tok = l.readOperator(tokenMinus, map[rune]TokenType{'-': tokenDecrement, '=': tokenMinusAssign})
	case '*':
		tok = l.readOperator(tokenAsterisk, map[rune]TokenType{'=': tokenAsteriskAssign})
	case '/':
		tok = l.readOperator(tokenSlash, map[rune]TokenType{'=': tokenSlashAssign})
	case '%':
		tok = l.readOperator(tokenPercent, map[rune]TokenType{'=': tokenPercentAssign})
	case '!':
		tok = l.readOperator(tokenBang, map[rune]TokenType{'=': tokenNotEQ})
	case '=':
		tok = l.readOperator(tokenAssign, map[rune]TokenType{'=': tokenEQ})
	case '<':
		tok = l.readOperator(tokenLT, map[rune]TokenType{'=': tokenLTE})
	case '>':
		tok = l.readOperator(tokenGT, map[rune]TokenType{'=': tokenGTE})
	case '&':
		tok = l.readOperator(tokenIllegal, map[rune]TokenType{'&': tokenAnd})
	case '|':
		tok = l.readOperator(tokenIllegal, map[rune]TokenType{'|': tokenOr})
	case ':':
		tok = l.readOperator(tokenColon, map[rune]TokenType{':': tokenScope})
	case '?':
		tok = l.makeToken(tokenQuestion, "?")
		l.readRune()
	case '~':
		tok = l.makeToken(tokenTilde, "~")
		l.readRune()
	case '(':
		tok = l.makeToken(tokenLParen, "(")
		l.readRune()
	case ')':
		tok = l.makeToken(tokenRParen, ")")
		l.readRune()
	case '{':
		tok = l.makeToken(tokenLBrace, "{")
		l.readRune()
	case '}':
		tok = l.makeToken(tokenRBrace, "}")
		l.readRune()
	case ',':
		tok = l.makeToken(tokenComma, ",")
		l.readRune()
	case ';':
		tok = l.makeToken(tokenSemicolon, ";")
		l.readRune()
	case '.':
		tok = l.makeToken(tokenDot, ".")
		l.readRune()
	case '"':
		literal, err := l.readString()
		if err != "" {
			tok.Type = tokenIllegal
			tok.Literal = err
		} else {
			tok.Type = tokenString
			tok.Literal = literal
		}
	default:
		switch {
		case isIdentifierStart(l.ch):
			literal := l.readIdentifier()
			tok.Type = lookupIdent(literal)
			tok.Literal = literal
			return tok
		case unicode.IsDigit(l.ch):
			literal, isFloat := l.readNumber()
			tok.Literal = literal
			if isFloat {
				tok.Type = tokenFloat
			} else {
				tok.Type = tokenInt
			}
			return tok
		default:
			tok = l.makeToken(tokenIllegal, string(l.ch))
			l.readRune()
		}
	}

	return tok
}

// readOperator consumes a one or two rune operator. A fallback of
// tokenIllegal means the first rune is not an operator on its own.
func (l *lexer) readOperator(single TokenType, doubles map[rune]TokenType) Token {
	if tt, ok := doubles[l.peekRune()]; ok {
		first := l.ch
		l.readRune()
		tok := Token{Type: tt, Literal: string(first) + string(l.ch), Pos: Position{Line: l.line, Column: l.column - 1}}
		l.readRune()
		return tok
	}
	literal := string(l.ch)
	tok := l.makeToken(single, literal)
	l.readRune()
	return tok
}

func (l *lexer) currentOffset() int {
	return l.offset - l.width
}

func (l *lexer) makeToken(tt TokenType, literal string) Token {
	return Token{Type: tt, Literal: literal, Pos: Position{Line: l.line, Column: l.column}}
}

func (l *lexer) skipWhitespaceAndComments() string {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readRune()
		case l.ch == '/' && l.peekRune() == '/':
			for l.ch != 0 && l.ch != '\n' {
				l.readRune()
			}
		case l.ch == '/' && l.peekRune() == '*':
			l.readRune()
			l.readRune()
			for !(l.ch == '*' && l.peekRune() == '/') {
				if l.ch == 0 {
					return "unterminated comment"
				}
				l.readRune()
			}
			l.readRune()
			l.readRune()
		default:
			return ""
		}
	}
}

func (l *lexer) readDirective() string {
	start := l.offset
	for l.peekRune() != 0 && l.peekRune() != '\n' {
		l.readRune()
	}
	literal := l.input[start:l.offset]
	l.readRune()
	return strings.TrimSpace(literal)
}

func (l *lexer) readIdentifier() string {
	start := l.currentOffset()
	for isIdentifierRune(l.peekRune()) {
		l.readRune()
	}
	literal := l.input[start:l.offset]
	l.readRune()
	return literal
}

func (l *lexer) readNumber() (string, bool) {
	var sb strings.Builder
	isFloat := false

	sb.WriteRune(l.ch)

	for {
		r := l.peekRune()
		switch {
		case r == '.' && !isFloat && unicode.IsDigit(l.peekRuneN(1)):
			isFloat = true
			l.readRune()
			sb.WriteRune('.')
		case (r == 'e' || r == 'E') && exponentFollows(l.peekRuneN(1), l.peekRuneN(2)):
			isFloat = true
			l.readRune()
			sb.WriteRune(r)
			if sign := l.peekRune(); sign == '+' || sign == '-' {
				l.readRune()
				sb.WriteRune(sign)
			}
		case unicode.IsDigit(r):
			l.readRune()
			sb.WriteRune(r)
		default:
			literal := sb.String()
			l.readRune()
			return literal, isFloat
		}
	}
}

func exponentFollows(next, after rune) bool {
	if unicode.IsDigit(next) {
		return true
	}
	return (next == '+' || next == '-') && unicode.IsDigit(after)
}

func (l *lexer) readString() (string, string) {
	var sb strings.Builder

	for {
		l.readRune()
		switch l.ch {
		case 0, '\n':
			return "", "unterminated string"
		case '"':
			l.readRune()
			return sb.String(), ""
		case '\\':
			next := l.peekRune()
			switch next {
			case '"', '\\', '\'':
				l.readRune()
				sb.WriteRune(next)
			case 'n':
				l.readRune()
				sb.WriteByte('\n')
			case 't':
				l.readRune()
				sb.WriteByte('\t')
			case '0':
				l.readRune()
				sb.WriteByte(0)
			default:
				l.readRune()
				sb.WriteRune(next)
			}
		default:
			sb.WriteRune(l.ch)
		}
	}
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func lookupIdent(ident string) TokenType {
	if _, ok := builtinTypeNames[ident]; ok {
		return tokenTypeName
	}
	switch ident {
	case "class":
		return tokenClass
	case "struct":
		return tokenStruct
	case "namespace":
		return tokenNamespace
	case "extern":
		return tokenExtern
	case "static":
		return tokenStatic
	case "public":
		return tokenPublic
	case "private":
		return tokenPrivate
	case "protected":
		return tokenProtected
	case "return":
		return tokenReturn
	case "if":
		return tokenIf
	case "else":
		return tokenElse
	case "while":
		return tokenWhile
	case "for":
		return tokenFor
	case "break":
		return tokenBreak
	case "continue":
		return tokenContinue
	case "true":
		return tokenTrue
	case "false":
		return tokenFalse
	default:
		return tokenIdent
	}
}
