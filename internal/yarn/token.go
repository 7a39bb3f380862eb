package yarn

import "strings"

// tokenClass is a kind of lexical token, including its human-readable name
// and (for operators) its left binding power used by the Pratt expression
// parser.
type tokenClass struct {
	id    string
	human string
	lbp   int
}

func (tc tokenClass) Equal(o any) bool {
	other, ok := o.(tokenClass)
	if !ok {
		return false
	}
	return strings.EqualFold(tc.id, other.id)
}

func (tc tokenClass) String() string { return tc.id }

// lexContext names the lexical mode a token was produced in: text, command,
// expression, option, or shortcut.
type lexContext string

const (
	ctxText       lexContext = "text"
	ctxCommand    lexContext = "command"
	ctxExpression lexContext = "expression"
	ctxOption     lexContext = "option"
	ctxShortcut   lexContext = "shortcut"
	ctxHeader     lexContext = "header"
)

var (
	tkEOF          = tokenClass{"EOF", "end of input", 0}
	tkText         = tokenClass{"TEXT", "line text", 0}
	tkIdentifier   = tokenClass{"IDENTIFIER", "identifier", 0}
	tkVariable     = tokenClass{"VARIABLE", "variable", 0}
	tkNumber       = tokenClass{"NUMBER", "number literal", 0}
	tkString       = tokenClass{"STRING", "string literal", 0}
	tkTrue         = tokenClass{"TRUE", "'true'", 0}
	tkFalse        = tokenClass{"FALSE", "'false'", 0}
	tkNull         = tokenClass{"NULL", "'null'", 0}
	tkHashTag      = tokenClass{"HASHTAG", "'#'-tag", 0}
	tkArrow        = tokenClass{"ARROW", "'->'", 0}
	tkOptionOpen   = tokenClass{"OPTION_OPEN", "'[['", 0}
	tkOptionClose  = tokenClass{"OPTION_CLOSE", "']]'", 0}
	tkOptionPipe   = tokenClass{"OPTION_PIPE", "'|'", 0}
	tkCommandOpen  = tokenClass{"COMMAND_OPEN", "'<<'", 0}
	tkCommandClose = tokenClass{"COMMAND_CLOSE", "'>>'", 0}
	tkBraceOpen    = tokenClass{"BRACE_OPEN", "'{'", 0}
	tkBraceClose   = tokenClass{"BRACE_CLOSE", "'}'", 0}
	tkParenOpen    = tokenClass{"PAREN_OPEN", "'('", 0}
	tkParenClose   = tokenClass{"PAREN_CLOSE", "')'", 0}
	tkComma        = tokenClass{"COMMA", "','", 0}

	// keywords
	tkIf     = tokenClass{"IF", "'if'", 0}
	tkElseif = tokenClass{"ELSEIF", "'elseif'", 0}
	tkElse   = tokenClass{"ELSE", "'else'", 0}
	tkEndif  = tokenClass{"ENDIF", "'endif'", 0}
	tkSet    = tokenClass{"SET", "'set'", 0}
	tkTo     = tokenClass{"TO", "'to'", 0}

	// operators; lbp encodes precedence for Pratt climbing. Higher binds
	// tighter. Assignment operators never appear inside expr climbing (they
	// are only used by the 'set' statement grammar) so they carry lbp 0.
	tkOpOr       = tokenClass{"OP_OR", "'||'", 10}
	tkOpXor      = tokenClass{"OP_XOR", "'^'", 10}
	tkOpAnd      = tokenClass{"OP_AND", "'&&'", 20}
	tkOpNot      = tokenClass{"OP_NOT", "'!'", 0}
	tkOpEq       = tokenClass{"OP_EQ", "'=='", 30}
	tkOpNeq      = tokenClass{"OP_NEQ", "'!='", 30}
	tkOpLt       = tokenClass{"OP_LT", "'<'", 30}
	tkOpLte      = tokenClass{"OP_LTE", "'<='", 30}
	tkOpGt       = tokenClass{"OP_GT", "'>'", 30}
	tkOpGte      = tokenClass{"OP_GTE", "'>='", 30}
	tkOpPlus     = tokenClass{"OP_PLUS", "'+'", 40}
	tkOpMinus    = tokenClass{"OP_MINUS", "'-'", 40}
	tkOpMultiply = tokenClass{"OP_MULTIPLY", "'*'", 50}
	tkOpDivide   = tokenClass{"OP_DIVIDE", "'/'", 50}
	tkOpModulo   = tokenClass{"OP_MODULO", "'%'", 50}

	tkOpSet      = tokenClass{"OP_SET", "'='", 0}
	tkOpIncSet   = tokenClass{"OP_INCSET", "'+='", 0}
	tkOpDecSet   = tokenClass{"OP_DECSET", "'-='", 0}
	tkOpMulSet   = tokenClass{"OP_MULSET", "'*='", 0}
	tkOpDivSet   = tokenClass{"OP_DIVSET", "'/='", 0}
	tkOpModSet   = tokenClass{"OP_MODSET", "'%='", 0}
)

// operatorFuncName returns the CallFunc operand name for a binary/unary
// operator token class, or "" if tc is not an operator.
func operatorFuncName(tc tokenClass) string {
	switch tc.id {
	case tkOpPlus.id:
		return "Add"
	case tkOpMinus.id:
		return "Minus"
	case tkOpMultiply.id:
		return "Multiply"
	case tkOpDivide.id:
		return "Divide"
	case tkOpModulo.id:
		return "Modulo"
	case tkOpEq.id:
		return "EqualTo"
	case tkOpNeq.id:
		return "NotEqualTo"
	case tkOpGt.id:
		return "GreaterThan"
	case tkOpGte.id:
		return "GreaterThanOrEqualTo"
	case tkOpLt.id:
		return "LessThan"
	case tkOpLte.id:
		return "LessThanOrEqualTo"
	case tkOpAnd.id:
		return "And"
	case tkOpOr.id:
		return "Or"
	case tkOpXor.id:
		return "Xor"
	default:
		return ""
	}
}

// token is a single lexical unit: its class, literal text, and source
// position, including an explicit column and lexical context.
type token struct {
	class    tokenClass
	lexeme   string
	line     int
	column   int
	context  lexContext
	fullLine string
}

func (t token) Equal(o any) bool {
	other, ok := o.(token)
	if !ok {
		return false
	}
	return t.lexeme == other.lexeme && t.class.Equal(other.class) &&
		t.line == other.line && t.column == other.column && t.context == other.context
}

// tokenStream is a cursor over a slice of tokens with Next/Peek/Len/Remaining
// accessors.
type tokenStream struct {
	tokens []token
	cur    int
}

func (ts *tokenStream) Next() token {
	t := ts.tokens[ts.cur]
	if ts.cur < len(ts.tokens)-1 {
		ts.cur++
	}
	return t
}

func (ts *tokenStream) Peek() token {
	return ts.tokens[ts.cur]
}

func (ts tokenStream) Len() int { return len(ts.tokens) }

func (ts tokenStream) Remaining() int { return len(ts.tokens) - ts.cur }

var keywordClasses = map[string]tokenClass{
	"if":     tkIf,
	"elseif": tkElseif,
	"else":   tkElse,
	"endif":  tkEndif,
	"set":    tkSet,
	"to":     tkTo,
	"true":   tkTrue,
	"false":  tkFalse,
	"null":   tkNull,
}
