package cinder

func isAssignable(expr Expr) bool {
	switch e := expr.(type) {
	case *Ident:
		_, ok := e.Ref.(*VarDecl)
		return ok || e.Ref == nil
	case *MemberExpr, *ThisFieldExpr, *HostRefExpr:
		return true
	default:
		return false
	}
}

const (
	lowestPrec = iota
	precAssign
	precTernary
	precOr
	precAnd
	precEquality
	precComparison
	precSum
	precProduct
	precPrefix
	precPostfix
)

var precedences = map[TokenType]int{
	tokenAssign:         precAssign,
	tokenPlusAssign:     precAssign,
	tokenMinusAssign:    precAssign,
	tokenAsteriskAssign: precAssign,
	tokenSlashAssign:    precAssign,
	tokenPercentAssign:  precAssign,
	tokenQuestion:       precTernary,
	tokenOr:             precOr,
	tokenAnd:            precAnd,
	tokenEQ:             precEquality,
	tokenNotEQ:          precEquality,
	tokenLT:             precComparison,
	tokenLTE:            precComparison,
	tokenGT:             precComparison,
	tokenGTE:            precComparison,
	tokenPlus:           precSum,
	tokenMinus:          precSum,
	tokenSlash:          precProduct,
	tokenAsterisk:       precProduct,
	tokenPercent:        precProduct,
	tokenLParen:         precPostfix,
	tokenDot:            precPostfix,
	tokenIncrement:      precPostfix,
	tokenDecrement:      precPostfix,
}

func (p *parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return lowestPrec
}

func (p *parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return lowestPrec
}
