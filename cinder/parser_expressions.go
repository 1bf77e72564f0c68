package cinder

import (
	"fmt"
	"strconv"
)

func (p *parser) parseExpression(precedence int) Expr {
	prefix := p.prefixFns[p.curToken.Type]
	if prefix == nil {
		if p.curToken.Type == tokenIllegal {
			p.addParseError(p.curToken.Pos, fmt.Sprintf("invalid token: %s", p.curToken.Literal))
		} else {
			p.errorExpected(p.curToken, "expression")
		}
		return nil
	}
	left := prefix()

	for left != nil && p.peekToken.Type != tokenSemicolon && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}

	return left
}

func (p *parser) parseIdentifier() Expr {
	ident := &Ident{exprBase: at(p.curToken.Pos)}
	if p.curToken.Type == tokenScope {
		ident.Global = true
		if !p.expectPeek(tokenIdent) {
			return nil
		}
	}
	ident.Name = p.curToken.Literal
	for p.peekToken.Type == tokenScope && p.peekN(2).Type == tokenIdent {
		ident.Qualifier = append(ident.Qualifier, ident.Name)
		p.nextToken()
		p.nextToken()
		ident.Name = p.curToken.Literal
	}
	return ident
}

func (p *parser) parseIntegerLiteral() Expr {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addParseError(p.curToken.Pos, fmt.Sprintf("invalid integer literal %s", p.curToken.Literal))
		return nil
	}
	return &IntLit{exprBase: at(p.curToken.Pos), Value: value}
}

func (p *parser) parseFloatLiteral() Expr {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addParseError(p.curToken.Pos, fmt.Sprintf("invalid floating literal %s", p.curToken.Literal))
		return nil
	}
	return &FloatLit{exprBase: at(p.curToken.Pos), Value: value}
}

func (p *parser) parseStringLiteral() Expr {
	lit := &StringLit{exprBase: at(p.curToken.Pos), Value: p.curToken.Literal}
	// adjacent literals concatenate
	for p.peekToken.Type == tokenString {
		p.nextToken()
		lit.Value += p.curToken.Literal
	}
	return lit
}

func (p *parser) parseBooleanLiteral() Expr {
	return &BoolLit{exprBase: at(p.curToken.Pos), Value: p.curToken.Type == tokenTrue}
}

func (p *parser) parseGroupedExpression() Expr {
	p.nextToken()
	expr := p.parseExpression(lowestPrec)
	if expr == nil || !p.expectPeek(tokenRParen) {
		return nil
	}
	return expr
}

func (p *parser) parsePrefixExpression() Expr {
	pos := p.curToken.Pos
	op := p.curToken.Type
	p.nextToken()
	operand := p.parseExpression(precPrefix)
	if operand == nil {
		return nil
	}
	return &UnaryExpr{exprBase: at(pos), Op: op, X: operand}
}

func (p *parser) parsePrefixIncDec() Expr {
	pos := p.curToken.Pos
	op := p.curToken.Type
	p.nextToken()
	operand := p.parseExpression(precPrefix)
	if operand == nil {
		return nil
	}
	return &IncDecExpr{exprBase: at(pos), Op: op, X: operand}
}

func (p *parser) parsePostfixIncDec(left Expr) Expr {
	return &IncDecExpr{exprBase: at(p.curToken.Pos), Op: p.curToken.Type, X: left, Postfix: true}
}

func (p *parser) parseInfixExpression(left Expr) Expr {
	expr := &BinaryExpr{exprBase: at(p.curToken.Pos), Op: p.curToken.Type, X: left}
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	expr.Y = right
	return expr
}

// parseAssignExpression binds to the right: `a = b = c` is `a = (b = c)`.
func (p *parser) parseAssignExpression(left Expr) Expr {
	expr := &AssignExpr{exprBase: at(p.curToken.Pos), Op: p.curToken.Type, Target: left}
	p.nextToken()
	value := p.parseExpression(precAssign - 1)
	if value == nil {
		return nil
	}
	expr.Value = value
	return expr
}

func (p *parser) parseConditionalExpression(cond Expr) Expr {
	expr := &CondExpr{exprBase: at(p.curToken.Pos), Cond: cond}
	p.nextToken()
	if expr.Then = p.parseExpression(lowestPrec); expr.Then == nil {
		return nil
	}
	if !p.expectPeek(tokenColon) {
		return nil
	}
	p.nextToken()
	if expr.Else = p.parseExpression(precTernary - 1); expr.Else == nil {
		return nil
	}
	return expr
}

func (p *parser) parseCallExpression(fun Expr) Expr {
	call := &CallExpr{exprBase: at(p.curToken.Pos), Fun: fun}
	if p.peekToken.Type == tokenRParen {
		p.nextToken()
		return call
	}
	for {
		p.nextToken()
		arg := p.parseExpression(lowestPrec)
		if arg == nil {
			return nil
		}
		call.Args = append(call.Args, arg)
		if p.peekToken.Type != tokenComma {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(tokenRParen) {
		return nil
	}
	return call
}

func (p *parser) parseMemberExpression(object Expr) Expr {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	return &MemberExpr{exprBase: at(pos), X: object, Name: p.curToken.Literal}
}
