package cinder

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	tokenIllegal TokenType = "ILLEGAL"
	tokenEOF     TokenType = "EOF"

	tokenIdent     TokenType = "IDENT"
	tokenTypeName  TokenType = "TYPENAME"
	tokenInt       TokenType = "INT"
	tokenFloat     TokenType = "FLOAT"
	tokenString    TokenType = "STRING"
	tokenDirective TokenType = "DIRECTIVE"

	tokenAssign         TokenType = "="
	tokenPlusAssign     TokenType = "+="
	tokenMinusAssign    TokenType = "-="
	tokenAsteriskAssign TokenType = "*="
	tokenSlashAssign    TokenType = "/="
	tokenPercentAssign  TokenType = "%="
	tokenPlus           TokenType = "+"
	tokenMinus          TokenType = "-"
	tokenIncrement      TokenType = "++"
	tokenDecrement      TokenType = "--"
	tokenBang           TokenType = "!"
	tokenAsterisk       TokenType = "*"
	tokenSlash          TokenType = "/"
	tokenPercent        TokenType = "%"
	tokenLT             TokenType = "<"
	tokenGT             TokenType = ">"
	tokenLTE            TokenType = "<="
	tokenGTE            TokenType = ">="
	tokenEQ             TokenType = "=="
	tokenNotEQ          TokenType = "!="
	tokenAnd            TokenType = "&&"
	tokenOr             TokenType = "||"
	tokenQuestion       TokenType = "?"
	tokenTilde          TokenType = "~"

	tokenComma     TokenType = ","
	tokenSemicolon TokenType = ";"
	tokenColon     TokenType = ":"
	tokenScope     TokenType = "::"
	tokenDot       TokenType = "."
	tokenLParen    TokenType = "("
	tokenRParen    TokenType = ")"
	tokenLBrace    TokenType = "{"
	tokenRBrace    TokenType = "}"

	tokenClass     TokenType = "CLASS"
	tokenStruct    TokenType = "STRUCT"
	tokenNamespace TokenType = "NAMESPACE"
	tokenExtern    TokenType = "EXTERN"
	tokenStatic    TokenType = "STATIC"
	tokenPublic    TokenType = "PUBLIC"
	tokenPrivate   TokenType = "PRIVATE"
	tokenProtected TokenType = "PROTECTED"
	tokenReturn    TokenType = "RETURN"
	tokenIf        TokenType = "IF"
	tokenElse      TokenType = "ELSE"
	tokenWhile     TokenType = "WHILE"
	tokenFor       TokenType = "FOR"
	tokenBreak     TokenType = "BREAK"
	tokenContinue  TokenType = "CONTINUE"
	tokenTrue      TokenType = "TRUE"
	tokenFalse     TokenType = "FALSE"
)

// Token captures lexical information for the parser.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Position identifies a line and column in the source fragment.
type Position struct {
	Line   int
	Column int
}

// builtinTypeNames lists the spellings lexed as tokenTypeName.
var builtinTypeNames = map[string]struct{}{
	"void":   {},
	"bool":   {},
	"int":    {},
	"double": {},
	"string": {},
	"auto":   {},
}
