package cinder

import "strings"

type (
	prefixParseFn func() Expr
	infixParseFn  func(Expr) Expr
)

type parser struct {
	tokens []Token
	idx    int

	curToken  Token
	peekToken Token

	errors []error

	prefixFns map[TokenType]prefixParseFn
	infixFns  map[TokenType]infixParseFn

	// source is the text shown in code frames; for wrapped fragments it is
	// the fragment rather than the wrapper.
	source string
	file   string
}

func newParser(input string, lineOffset int, source, file string) *parser {
	p := &parser{
		tokens: newLexer(input, lineOffset).tokenize(),
		idx:    -1,
		source: source,
		file:   file,
	}

	p.prefixFns = make(map[TokenType]prefixParseFn)
	p.infixFns = make(map[TokenType]infixParseFn)

	p.registerPrefix(tokenIdent, p.parseIdentifier)
	p.registerPrefix(tokenScope, p.parseIdentifier)
	p.registerPrefix(tokenInt, p.parseIntegerLiteral)
	p.registerPrefix(tokenFloat, p.parseFloatLiteral)
	p.registerPrefix(tokenString, p.parseStringLiteral)
	p.registerPrefix(tokenTrue, p.parseBooleanLiteral)
	p.registerPrefix(tokenFalse, p.parseBooleanLiteral)
	p.registerPrefix(tokenLParen, p.parseGroupedExpression)
	p.registerPrefix(tokenBang, p.parsePrefixExpression)
	p.registerPrefix(tokenMinus, p.parsePrefixExpression)
	p.registerPrefix(tokenPlus, p.parsePrefixExpression)
	p.registerPrefix(tokenIncrement, p.parsePrefixIncDec)
	p.registerPrefix(tokenDecrement, p.parsePrefixIncDec)

	for _, tt := range []TokenType{
		tokenPlus, tokenMinus, tokenAsterisk, tokenSlash, tokenPercent,
		tokenEQ, tokenNotEQ, tokenLT, tokenLTE, tokenGT, tokenGTE,
		tokenAnd, tokenOr,
	} {
		p.infixFns[tt] = p.parseInfixExpression
	}
	for _, tt := range []TokenType{
		tokenAssign, tokenPlusAssign, tokenMinusAssign,
		tokenAsteriskAssign, tokenSlashAssign, tokenPercentAssign,
	} {
		p.infixFns[tt] = p.parseAssignExpression
	}
	p.infixFns[tokenQuestion] = p.parseConditionalExpression
	p.infixFns[tokenLParen] = p.parseCallExpression
	p.infixFns[tokenDot] = p.parseMemberExpression
	p.infixFns[tokenIncrement] = p.parsePostfixIncDec
	p.infixFns[tokenDecrement] = p.parsePostfixIncDec

	p.nextToken()

	return p
}

func (p *parser) registerPrefix(tt TokenType, fn prefixParseFn) {
	p.prefixFns[tt] = fn
}

func (p *parser) tokenAt(i int) Token {
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) nextToken() {
	p.idx++
	p.curToken = p.tokenAt(p.idx)
	p.peekToken = p.tokenAt(p.idx + 1)
}

// peekN returns the token n positions after the current one.
func (p *parser) peekN(n int) Token {
	return p.tokenAt(p.idx + n)
}

func (p *parser) expectPeek(tt TokenType) bool {
	if p.peekToken.Type == tt {
		p.nextToken()
		return true
	}
	p.errorExpected(p.peekToken, tokenLabel(tt))
	return false
}

func (p *parser) failed() bool { return len(p.errors) > 0 }

// ParseUnit parses a sequence of top-level declarations.
func (p *parser) ParseUnit() (*Unit, []error) {
	unit := &Unit{Source: p.source, File: p.file}

	for p.curToken.Type != tokenEOF && !p.failed() {
		unit.Decls = append(unit.Decls, p.parseTopLevel()...)
		p.nextToken()
	}

	return unit, p.errors
}

func (p *parser) parseTopLevel() []Decl {
	switch p.curToken.Type {
	case tokenDirective:
		return []Decl{p.parseDirective()}
	case tokenSemicolon:
		return nil
	case tokenNamespace:
		if ns := p.parseNamespace(); ns != nil {
			return []Decl{ns}
		}
		return nil
	case tokenExtern:
		if p.peekToken.Type == tokenString {
			return p.parseLinkageSpec()
		}
		p.nextToken()
		return p.parseDeclaration(StorageExtern)
	case tokenStatic:
		p.nextToken()
		return p.parseDeclaration(StorageStatic)
	case tokenClass, tokenStruct:
		if class := p.parseClass(); class != nil {
			return []Decl{class}
		}
		return nil
	default:
		if p.isTypeStart() {
			return p.parseDeclaration(StorageNone)
		}
		p.errorExpected(p.curToken, "declaration")
		return nil
	}
}

func (p *parser) parseDirective() Decl {
	d := &DirectiveDecl{declBase: declBase{position: p.curToken.Pos}}
	text := p.curToken.Literal
	kind, arg, _ := strings.Cut(text, " ")
	d.Kind = kind
	arg = strings.TrimSpace(arg)
	if len(arg) >= 2 && (arg[0] == '"' && arg[len(arg)-1] == '"' || arg[0] == '<' && arg[len(arg)-1] == '>') {
		arg = arg[1 : len(arg)-1]
	}
	d.Arg = arg
	return d
}
