package cinder

func (p *parser) parseBlock() *CompoundStmt {
	block := &CompoundStmt{position: p.curToken.Pos}
	p.nextToken()
	for p.curToken.Type != tokenRBrace {
		if p.curToken.Type == tokenEOF {
			p.errorExpected(p.curToken, "'}'")
			return nil
		}
		stmt := p.parseStatement()
		if p.failed() {
			return nil
		}
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		p.nextToken()
	}
	return block
}

func (p *parser) parseStatement() Stmt {
	pos := p.curToken.Pos
	switch p.curToken.Type {
	case tokenLBrace:
		if block := p.parseBlock(); block != nil {
			return block
		}
		return nil
	case tokenSemicolon:
		return &NullStmt{position: pos}
	case tokenReturn:
		return p.parseReturnStatement()
	case tokenIf:
		return p.parseIfStatement()
	case tokenWhile:
		return p.parseWhileStatement()
	case tokenFor:
		return p.parseForStatement()
	case tokenBreak:
		if !p.expectPeek(tokenSemicolon) {
			return nil
		}
		return &BreakStmt{position: pos}
	case tokenContinue:
		if !p.expectPeek(tokenSemicolon) {
			return nil
		}
		return &ContinueStmt{position: pos}
	case tokenDirective:
		p.addParseError(pos, "directives are only allowed at the top level")
		return nil
	case tokenClass, tokenStruct, tokenNamespace, tokenExtern, tokenStatic:
		return p.declStatement(pos, p.parseTopLevel())
	default:
		if p.isTypeStart() {
			return p.declStatement(pos, p.parseDeclaration(StorageNone))
		}
		return p.parseExpressionStatement()
	}
}

func (p *parser) declStatement(pos Position, decls []Decl) Stmt {
	if decls == nil {
		return nil
	}
	return &DeclStmt{Decls: decls, position: pos}
}

func (p *parser) parseExpressionStatement() Stmt {
	pos := p.curToken.Pos
	expr := p.parseExpression(lowestPrec)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(tokenSemicolon) {
		return nil
	}
	return &ExprStmt{X: expr, position: pos}
}

func (p *parser) parseReturnStatement() Stmt {
	stmt := &ReturnStmt{position: p.curToken.Pos}
	if p.peekToken.Type == tokenSemicolon {
		p.nextToken()
		return stmt
	}
	p.nextToken()
	stmt.Result = p.parseExpression(lowestPrec)
	if stmt.Result == nil || !p.expectPeek(tokenSemicolon) {
		return nil
	}
	return stmt
}

func (p *parser) parseCondition() Expr {
	if !p.expectPeek(tokenLParen) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(lowestPrec)
	if cond == nil || !p.expectPeek(tokenRParen) {
		return nil
	}
	return cond
}

func (p *parser) parseIfStatement() Stmt {
	stmt := &IfStmt{position: p.curToken.Pos}
	if stmt.Cond = p.parseCondition(); stmt.Cond == nil {
		return nil
	}
	p.nextToken()
	if stmt.Then = p.parseStatement(); stmt.Then == nil {
		return nil
	}
	if p.peekToken.Type == tokenElse {
		p.nextToken()
		p.nextToken()
		if stmt.Else = p.parseStatement(); stmt.Else == nil {
			return nil
		}
	}
	return stmt
}

func (p *parser) parseWhileStatement() Stmt {
	stmt := &WhileStmt{position: p.curToken.Pos}
	if stmt.Cond = p.parseCondition(); stmt.Cond == nil {
		return nil
	}
	p.nextToken()
	if stmt.Body = p.parseStatement(); stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *parser) parseForStatement() Stmt {
	stmt := &ForStmt{position: p.curToken.Pos}
	if !p.expectPeek(tokenLParen) {
		return nil
	}
	p.nextToken()

	switch {
	case p.curToken.Type == tokenSemicolon:
	case p.isTypeStart():
		if stmt.Init = p.declStatement(p.curToken.Pos, p.parseDeclaration(StorageNone)); stmt.Init == nil {
			return nil
		}
	default:
		if stmt.Init = p.parseExpressionStatement(); stmt.Init == nil {
			return nil
		}
	}
	p.nextToken()

	if p.curToken.Type != tokenSemicolon {
		if stmt.Cond = p.parseExpression(lowestPrec); stmt.Cond == nil {
			return nil
		}
		if !p.expectPeek(tokenSemicolon) {
			return nil
		}
	}
	p.nextToken()

	if p.curToken.Type != tokenRParen {
		if stmt.Post = p.parseExpression(lowestPrec); stmt.Post == nil {
			return nil
		}
		if !p.expectPeek(tokenRParen) {
			return nil
		}
	}
	p.nextToken()

	if stmt.Body = p.parseStatement(); stmt.Body == nil {
		return nil
	}
	return stmt
}
