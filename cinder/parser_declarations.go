package cinder

import "fmt"

// isTypeStart reports whether the current token begins a declaration:
// a builtin type name, or a possibly qualified name followed by the name
// being declared (`C c`, `N::C c`).
func (p *parser) isTypeStart() bool {
	switch p.curToken.Type {
	case tokenTypeName:
		return true
	case tokenIdent:
		i := 1
		for p.peekN(i).Type == tokenScope && p.peekN(i+1).Type == tokenIdent {
			i += 2
		}
		return p.peekN(i).Type == tokenIdent
	default:
		return false
	}
}

func (p *parser) parseTypeRef() *TypeRef {
	ref := &TypeRef{Name: p.curToken.Literal, position: p.curToken.Pos}
	if p.curToken.Type == tokenTypeName {
		return ref
	}
	for p.peekToken.Type == tokenScope && p.peekN(2).Type == tokenIdent {
		ref.Qualifier = append(ref.Qualifier, ref.Name)
		p.nextToken()
		p.nextToken()
		ref.Name = p.curToken.Literal
	}
	return ref
}

// parseDeclaration parses `Type name ...` as a function or as one or more
// variables. The current token is the first token of the type.
func (p *parser) parseDeclaration(storage StorageClass) []Decl {
	if !p.isTypeStart() {
		p.errorExpected(p.curToken, "type name")
		return nil
	}
	typ := p.parseTypeRef()
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	name := p.curToken.Literal
	pos := p.curToken.Pos

	if p.peekToken.Type == tokenLParen {
		fn := p.parseFunctionRest(typ, name, pos)
		if fn == nil {
			return nil
		}
		fn.Static = storage == StorageStatic
		return []Decl{fn}
	}

	var decls []Decl
	for {
		v := &VarDecl{Name: name, TypeRef: typ, Storage: storage, declBase: declBase{position: pos}}
		if p.peekToken.Type == tokenAssign {
			p.nextToken()
			p.nextToken()
			v.Init = p.parseExpression(lowestPrec)
			if v.Init == nil {
				return nil
			}
		}
		decls = append(decls, v)
		if p.peekToken.Type != tokenComma {
			break
		}
		p.nextToken()
		if !p.expectPeek(tokenIdent) {
			return nil
		}
		name = p.curToken.Literal
		pos = p.curToken.Pos
	}
	if !p.expectPeek(tokenSemicolon) {
		return nil
	}
	return decls
}

func (p *parser) parseFunctionRest(result *TypeRef, name string, pos Position) *FuncDecl {
	fn := &FuncDecl{Name: name, ResultRef: result, source: p.source, declBase: declBase{position: pos}}
	if !p.expectPeek(tokenLParen) {
		return nil
	}

	switch {
	case p.peekToken.Type == tokenRParen:
		p.nextToken()
	case p.peekToken.Type == tokenTypeName && p.peekToken.Literal == "void" && p.peekN(2).Type == tokenRParen:
		p.nextToken()
		p.nextToken()
	default:
		for {
			p.nextToken()
			if p.curToken.Type != tokenTypeName && p.curToken.Type != tokenIdent {
				p.errorExpected(p.curToken, "parameter type")
				return nil
			}
			param := &VarDecl{IsParam: true, declBase: declBase{position: p.curToken.Pos}}
			param.TypeRef = p.parseTypeRef()
			if p.peekToken.Type == tokenIdent {
				p.nextToken()
				param.Name = p.curToken.Literal
				param.position = p.curToken.Pos
			}
			fn.Params = append(fn.Params, param)
			if p.peekToken.Type != tokenComma {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek(tokenRParen) {
			return nil
		}
	}

	if p.peekToken.Type == tokenSemicolon {
		p.nextToken()
		return fn
	}
	if !p.expectPeek(tokenLBrace) {
		return nil
	}
	fn.Body = p.parseBlock()
	if fn.Body == nil {
		return nil
	}
	return fn
}

// parseLinkageSpec handles `extern "C" decl` and `extern "C" { decls }`.
func (p *parser) parseLinkageSpec() []Decl {
	p.nextToken()
	lang := p.curToken.Literal
	if lang != "C" && lang != "C++" {
		p.addParseError(p.curToken.Pos, fmt.Sprintf("unknown linkage language %q", lang))
		return nil
	}
	externC := lang == "C"

	var decls []Decl
	if p.peekToken.Type == tokenLBrace {
		p.nextToken()
		p.nextToken()
		for p.curToken.Type != tokenRBrace {
			if p.curToken.Type == tokenEOF {
				p.errorExpected(p.curToken, "'}'")
				return nil
			}
			decls = append(decls, p.parseTopLevel()...)
			if p.failed() {
				return nil
			}
			p.nextToken()
		}
	} else {
		p.nextToken()
		decls = p.parseTopLevel()
	}

	for _, d := range decls {
		switch decl := d.(type) {
		case *FuncDecl:
			decl.ExternC = externC
		case *VarDecl:
			decl.ExternC = externC
		}
	}
	return decls
}

func (p *parser) parseNamespace() *NamespaceDecl {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	ns := &NamespaceDecl{Name: p.curToken.Literal, declBase: declBase{position: pos}}
	if !p.expectPeek(tokenLBrace) {
		return nil
	}
	p.nextToken()
	for p.curToken.Type != tokenRBrace {
		if p.curToken.Type == tokenEOF {
			p.errorExpected(p.curToken, "'}'")
			return nil
		}
		ns.Decls = append(ns.Decls, p.parseTopLevel()...)
		if p.failed() {
			return nil
		}
		p.nextToken()
	}
	return ns
}

func (p *parser) parseClass() *ClassDecl {
	pos := p.curToken.Pos
	isStruct := p.curToken.Type == tokenStruct
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	class := &ClassDecl{Name: p.curToken.Literal, Struct: isStruct, declBase: declBase{position: pos}}
	if !p.expectPeek(tokenLBrace) {
		return nil
	}
	p.nextToken()

	for p.curToken.Type != tokenRBrace {
		if p.curToken.Type == tokenEOF {
			p.errorExpected(p.curToken, "'}'")
			return nil
		}
		if !p.parseClassMember(class) {
			return nil
		}
		p.nextToken()
	}

	if !p.expectPeek(tokenSemicolon) {
		return nil
	}
	return class
}

func (p *parser) parseClassMember(class *ClassDecl) bool {
	switch p.curToken.Type {
	case tokenPublic, tokenPrivate, tokenProtected:
		return p.expectPeek(tokenColon)
	case tokenSemicolon:
		return true
	case tokenTilde:
		pos := p.curToken.Pos
		if !p.expectPeek(tokenIdent) {
			return false
		}
		if p.curToken.Literal != class.Name {
			p.addParseError(p.curToken.Pos, fmt.Sprintf("expected the class name '%s' after '~'", class.Name))
			return false
		}
		void := &TypeRef{Name: "void", position: pos}
		dtor := p.parseFunctionRest(void, "~"+class.Name, pos)
		if dtor == nil {
			return false
		}
		if len(dtor.Params) > 0 || dtor.Body == nil {
			p.addParseError(pos, "destructor must be defined inline without parameters")
			return false
		}
		dtor.IsDestructor = true
		dtor.Class = class
		class.Destructor = dtor
		return true
	case tokenStatic:
		p.nextToken()
		decls := p.parseDeclaration(StorageStatic)
		for _, d := range decls {
			fn, ok := d.(*FuncDecl)
			if !ok {
				p.addParseError(d.Pos(), "static data members are not supported")
				return false
			}
			fn.Class = class
			class.Methods = append(class.Methods, fn)
		}
		return decls != nil
	case tokenIdent:
		if p.curToken.Literal == class.Name && p.peekToken.Type == tokenLParen {
			p.addParseError(p.curToken.Pos, "constructors are not supported; use field initializers")
			return false
		}
	}

	if !p.isTypeStart() {
		p.errorExpected(p.curToken, "member declaration")
		return false
	}
	decls := p.parseDeclaration(StorageNone)
	for _, d := range decls {
		switch member := d.(type) {
		case *FuncDecl:
			member.Class = class
			class.Methods = append(class.Methods, member)
		case *VarDecl:
			member.IsField = true
			member.FieldIdx = len(class.Fields)
			class.Fields = append(class.Fields, member)
		}
	}
	return decls != nil
}
