package cinder

import (
	"fmt"
	"strings"
)

type parseError struct {
	pos    Position
	msg    string
	source string
	file   string
}

func (e *parseError) Error() string {
	var b strings.Builder
	if e.file != "" {
		fmt.Fprintf(&b, "%s:", e.file)
	}
	fmt.Fprintf(&b, "parse error at %d:%d: %s", e.pos.Line, e.pos.Column, e.msg)
	if frame := formatCodeFrame(e.source, e.pos); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

func (p *parser) errorExpected(tok Token, expected string) {
	p.addParseError(tok.Pos, fmt.Sprintf("expected %s, got %s", expected, tokenLabel(tok.Type)))
}

func (p *parser) errorUnexpected(tok Token) {
	p.addParseError(tok.Pos, fmt.Sprintf("unexpected token %s", tokenLabel(tok.Type)))
}

func (p *parser) addParseError(pos Position, msg string) {
	p.errors = append(p.errors, &parseError{pos: pos, msg: msg, source: p.source, file: p.file})
}

func tokenLabel(tt TokenType) string {
	switch tt {
	case tokenIllegal:
		return "invalid token"
	case tokenEOF:
		return "end of input"
	case tokenIdent:
		return "identifier"
	case tokenTypeName:
		return "type name"
	case tokenInt:
		return "integer"
	case tokenFloat:
		return "floating literal"
	case tokenString:
		return "string"
	case tokenDirective:
		return "directive"
	default:
		if strings.ToUpper(string(tt)) == string(tt) && len(tt) > 2 {
			return fmt.Sprintf("'%s'", strings.ToLower(string(tt)))
		}
		return fmt.Sprintf("%q", string(tt))
	}
}
