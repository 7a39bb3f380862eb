package yarn

import (
	"fmt"
	"strconv"
	"strings"
)

// file parser.go implements recursive descent over the statement grammar,
// with Pratt precedence climbing (a nud/led scheme) over expressions,
// covering the full node/statement/command/option/shortcutGroup grammar.

// ParseError-stopping keywords: these command keywords terminate a
// parseStatements run without being consumed, so the caller (an if-clause
// or the top-level node loop) can recognize its own terminator.
var clauseStopKeywords = map[string]bool{
	tkElseif.id: true,
	tkElse.id:   true,
	tkEndif.id:  true,
}

// ParseNode parses a single loader-produced node record into an AST Node.
// A node tagged "rawText" skips normal parsing entirely: its body is
// retained verbatim in Source and it has no statements.
func ParseNode(title string, tags []string, body []string) (*Node, error) {
	n := &Node{Name: title, Tags: tags}

	for _, t := range tags {
		if t == "rawText" {
			n.Source = strings.Join(body, "\n")
			return n, nil
		}
	}

	toks, err := Lex(title, body)
	if err != nil {
		return nil, err
	}
	ts := &toks

	stmts, err := parseStatements(title, ts, nil)
	if err != nil {
		return nil, err
	}
	if ts.Peek().class.id != tkEOF.id {
		return nil, &ParseError{NodeName: title, Line: ts.Peek().line, Token: ts.Peek().lexeme, Message: "unexpected trailing content"}
	}
	n.Statements = stmts
	return n, nil
}

// parseStatements consumes statements until EOF or, if stop is non-nil,
// until a command keyword in stop is seen (without consuming it).
func parseStatements(nodeName string, ts *tokenStream, stop map[string]bool) ([]Statement, error) {
	var stmts []Statement
	for {
		t := ts.Peek()
		if t.class.id == tkEOF.id {
			return stmts, nil
		}
		if t.class.id == tkCommandOpen.id && stop != nil {
			next := peekAt(ts, 1)
			if stop[next.class.id] {
				return stmts, nil
			}
		}
		if t.class.id == tkArrow.id {
			group, err := parseShortcutGroup(nodeName, ts)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, group)
			continue
		}
		stmt, err := parseStatement(nodeName, ts)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

// peekAt looks ahead n tokens without consuming any (n=0 is Peek()).
func peekAt(ts *tokenStream, n int) token {
	idx := ts.cur + n
	if idx >= len(ts.tokens) {
		idx = len(ts.tokens) - 1
	}
	return ts.tokens[idx]
}

func parseStatement(nodeName string, ts *tokenStream) (Statement, error) {
	t := ts.Peek()
	switch t.class.id {
	case tkText.id:
		return parseLine(nodeName, ts)
	case tkCommandOpen.id:
		return parseCommand(nodeName, ts)
	case tkOptionOpen.id:
		return parseOption(nodeName, ts)
	default:
		return nil, &ParseError{NodeName: nodeName, Line: t.line, Token: t.lexeme, Message: "unexpected token", SourceLine: t.fullLine, Column: t.column}
	}
}

// consumeHashTags gathers any run of tkHashTag tokens and extracts a
// "line:<id>" pin if present.
func consumeHashTags(ts *tokenStream) (tags []string, lineID string) {
	for ts.Peek().class.id == tkHashTag.id {
		tg := ts.Next().lexeme
		tags = append(tags, tg)
		if strings.HasPrefix(tg, "line:") {
			lineID = strings.TrimPrefix(tg, "line:")
		}
	}
	return tags, lineID
}

func parseLine(nodeName string, ts *tokenStream) (Statement, error) {
	t := ts.Next()
	_, lineID := consumeHashTags(ts)
	return &LineStatement{baseStmt: baseStmt{line: t.line}, Text: t.lexeme, LineID: lineID}, nil
}

func parseOption(nodeName string, ts *tokenStream) (Statement, error) {
	open := ts.Next() // '[['
	label := ts.Next()
	if label.class.id != tkText.id {
		return nil, &ParseError{NodeName: nodeName, Line: open.line, Token: label.lexeme, Expected: "option text", Message: "malformed option"}
	}
	_, lineID := consumeHashTags(ts)

	stmt := &OptionStatement{baseStmt: baseStmt{line: open.line}, LineID: lineID}
	if ts.Peek().class.id == tkOptionPipe.id {
		ts.Next()
		dest := ts.Next()
		if dest.class.id != tkIdentifier.id {
			return nil, &ParseError{NodeName: nodeName, Line: open.line, Token: dest.lexeme, Expected: "destination node name", Message: "malformed option"}
		}
		stmt.Label = label.lexeme
		stmt.Dest = dest.lexeme
	} else {
		stmt.Dest = label.lexeme
	}
	if ts.Peek().class.id != tkOptionClose.id {
		return nil, &ParseError{NodeName: nodeName, Line: open.line, Token: ts.Peek().lexeme, Expected: "']]'", Message: "unterminated option"}
	}
	ts.Next()
	return stmt, nil
}

func parseShortcutGroup(nodeName string, ts *tokenStream) (Statement, error) {
	first := ts.Peek()
	group := &ShortcutOptionGroupStatement{baseStmt: baseStmt{line: first.line}}
	for ts.Peek().class.id == tkArrow.id {
		opt, err := parseShortcutOption(nodeName, ts)
		if err != nil {
			return nil, err
		}
		group.Options = append(group.Options, opt)
	}
	return group, nil
}

func parseShortcutOption(nodeName string, ts *tokenStream) (ShortcutOption, error) {
	arrow := ts.Next() // '->'
	label := ts.Next()
	if label.class.id != tkText.id {
		return ShortcutOption{}, &ParseError{NodeName: nodeName, Line: arrow.line, Token: label.lexeme, Expected: "option text", Message: "malformed shortcut option"}
	}
	_, lineID := consumeHashTags(ts)

	opt := ShortcutOption{Label: label.lexeme, LineID: lineID, Line: arrow.line}

	if ts.Peek().class.id == tkCommandOpen.id && peekAt(ts, 1).class.id == tkIf.id {
		ts.Next() // '<<'
		ts.Next() // 'if'
		cond, err := parseExpr(ts, 0)
		if err != nil {
			return ShortcutOption{}, err
		}
		if ts.Peek().class.id != tkCommandClose.id {
			return ShortcutOption{}, &ParseError{NodeName: nodeName, Line: arrow.line, Token: ts.Peek().lexeme, Expected: "'>>'", Message: "unterminated inline condition"}
		}
		ts.Next()
		opt.Condition = cond
	}

	for ts.Peek().context == ctxShortcut && ts.Peek().class.id != tkArrow.id && ts.Peek().class.id != tkEOF.id {
		stmt, err := parseStatement(nodeName, ts)
		if err != nil {
			return ShortcutOption{}, err
		}
		opt.Statements = append(opt.Statements, stmt)
	}
	return opt, nil
}

func parseCommand(nodeName string, ts *tokenStream) (Statement, error) {
	open := ts.Next() // '<<'
	switch ts.Peek().class.id {
	case tkIf.id:
		return parseIf(nodeName, ts, open.line)
	case tkSet.id:
		return parseAssignment(nodeName, ts, open.line)
	default:
		return parseCustomCommand(nodeName, ts, open.line)
	}
}

func parseIf(nodeName string, ts *tokenStream, line int) (Statement, error) {
	stmt := &IfStatement{baseStmt: baseStmt{line: line}}

	// first clause: '<<if' expr '>>' body
	ts.Next() // 'if'
	cond, err := parseExpr(ts, 0)
	if err != nil {
		return nil, err
	}
	if err := expectClose(nodeName, ts); err != nil {
		return nil, err
	}
	body, err := parseStatements(nodeName, ts, clauseStopKeywords)
	if err != nil {
		return nil, err
	}
	stmt.Clauses = append(stmt.Clauses, Clause{Condition: cond, Statements: body})

	for {
		t := ts.Peek()
		if t.class.id != tkCommandOpen.id {
			return nil, &ParseError{NodeName: nodeName, Line: t.line, Token: t.lexeme, Expected: "'<<elseif'/'<<else'/'<<endif'", Message: "unterminated if"}
		}
		kw := peekAt(ts, 1)
		switch kw.class.id {
		case tkElseif.id:
			ts.Next() // '<<'
			ts.Next() // 'elseif'
			cond, err := parseExpr(ts, 0)
			if err != nil {
				return nil, err
			}
			if err := expectClose(nodeName, ts); err != nil {
				return nil, err
			}
			body, err := parseStatements(nodeName, ts, clauseStopKeywords)
			if err != nil {
				return nil, err
			}
			stmt.Clauses = append(stmt.Clauses, Clause{Condition: cond, Statements: body})
		case tkElse.id:
			ts.Next()
			ts.Next()
			if err := expectClose(nodeName, ts); err != nil {
				return nil, err
			}
			body, err := parseStatements(nodeName, ts, clauseStopKeywords)
			if err != nil {
				return nil, err
			}
			stmt.Clauses = append(stmt.Clauses, Clause{Condition: nil, Statements: body})
		case tkEndif.id:
			ts.Next()
			ts.Next()
			if err := expectClose(nodeName, ts); err != nil {
				return nil, err
			}
			return stmt, nil
		default:
			return nil, &ParseError{NodeName: nodeName, Line: kw.line, Token: kw.lexeme, Expected: "'elseif'/'else'/'endif'", Message: "unterminated if"}
		}
	}
}

func expectClose(nodeName string, ts *tokenStream) error {
	if ts.Peek().class.id != tkCommandClose.id {
		t := ts.Peek()
		return &ParseError{NodeName: nodeName, Line: t.line, Token: t.lexeme, Expected: "'>>'", Message: "unterminated command"}
	}
	ts.Next()
	return nil
}

var assignOps = map[string]string{
	tkOpSet.id:    "=",
	tkOpIncSet.id: "+=",
	tkOpDecSet.id: "-=",
	tkOpMulSet.id: "*=",
	tkOpDivSet.id: "/=",
	tkOpModSet.id: "%=",
}

func parseAssignment(nodeName string, ts *tokenStream, line int) (Statement, error) {
	ts.Next() // 'set'
	dest := ts.Next()
	if dest.class.id != tkVariable.id {
		return nil, &ParseError{NodeName: nodeName, Line: line, Token: dest.lexeme, Expected: "variable", Message: "malformed set statement"}
	}

	opTok := ts.Next()
	op, ok := assignOps[opTok.class.id]
	if !ok {
		// "<<set $x to 23>>" spelling: 'to' plays the role of '='.
		if opTok.class.id == tkTo.id {
			op = "="
		} else {
			return nil, &ParseError{NodeName: nodeName, Line: line, Token: opTok.lexeme, Expected: "assignment operator", Message: "malformed set statement"}
		}
	}

	val, err := parseExpr(ts, 0)
	if err != nil {
		return nil, err
	}
	if err := expectClose(nodeName, ts); err != nil {
		return nil, err
	}
	return &AssignmentStatement{
		baseStmt: baseStmt{line: line},
		DestName: strings.TrimPrefix(dest.lexeme, "$"),
		Op:       op,
		Value:    val,
	}, nil
}

func parseCustomCommand(nodeName string, ts *tokenStream, line int) (Statement, error) {
	start := ts.cur
	if expr, err := tryParseExpr(ts); err == nil && ts.Peek().class.id == tkCommandClose.id {
		ts.Next()
		return &CustomCommandStatement{baseStmt: baseStmt{line: line}, Expression: expr}, nil
	}
	ts.cur = start

	var words []string
	for ts.Peek().class.id != tkCommandClose.id {
		if ts.Peek().class.id == tkEOF.id {
			return nil, &ParseError{NodeName: nodeName, Line: line, Message: "unterminated command"}
		}
		words = append(words, ts.Next().lexeme)
	}
	ts.Next() // '>>'
	return &CustomCommandStatement{baseStmt: baseStmt{line: line}, Text: strings.Join(words, " ")}, nil
}

// tryParseExpr attempts to parse an expression at the current cursor,
// restoring the cursor on failure.
func tryParseExpr(ts *tokenStream) (Expr, error) {
	start := ts.cur
	e, err := parseExpr(ts, 0)
	if err != nil {
		ts.cur = start
		return nil, err
	}
	return e, nil
}

// --- Pratt expression parsing ---

func parseExpr(ts *tokenStream, rbp int) (Expr, error) {
	t := ts.Next()
	left, err := nud(t, ts)
	if err != nil {
		return nil, err
	}
	for rbp < ts.Peek().class.lbp {
		t = ts.Next()
		left, err = led(t, left, ts)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func nud(t token, ts *tokenStream) (Expr, error) {
	switch t.class.id {
	case tkNumber.id:
		f, err := strconv.ParseFloat(t.lexeme, 32)
		if err != nil {
			return nil, fmt.Errorf("malformed number literal %q", t.lexeme)
		}
		return &LiteralExpr{baseExpr{t.line}, NewNumber(float32(f))}, nil
	case tkString.id:
		return &LiteralExpr{baseExpr{t.line}, NewString(t.lexeme)}, nil
	case tkTrue.id:
		return &LiteralExpr{baseExpr{t.line}, NewBool(true)}, nil
	case tkFalse.id:
		return &LiteralExpr{baseExpr{t.line}, NewBool(false)}, nil
	case tkNull.id:
		return &LiteralExpr{baseExpr{t.line}, NewNull()}, nil
	case tkVariable.id:
		return &VariableExpr{baseExpr{t.line}, strings.TrimPrefix(t.lexeme, "$")}, nil
	case tkOpMinus.id:
		operand, err := parseExpr(ts, 100)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{baseExpr{t.line}, "UnaryMinus", operand}, nil
	case tkOpNot.id:
		operand, err := parseExpr(ts, 100)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{baseExpr{t.line}, "Not", operand}, nil
	case tkParenOpen.id:
		inner, err := parseExpr(ts, 0)
		if err != nil {
			return nil, err
		}
		if ts.Peek().class.id != tkParenClose.id {
			return nil, fmt.Errorf("line %d: expected ')', got %q", t.line, ts.Peek().lexeme)
		}
		ts.Next()
		return &GroupExpr{baseExpr{t.line}, inner}, nil
	case tkIdentifier.id:
		if ts.Peek().class.id == tkParenOpen.id {
			return parseFuncCall(t, ts)
		}
		return nil, fmt.Errorf("line %d: bare identifier %q is not a valid expression", t.line, t.lexeme)
	default:
		return nil, fmt.Errorf("line %d: unexpected token %q in expression", t.line, t.lexeme)
	}
}

func parseFuncCall(name token, ts *tokenStream) (Expr, error) {
	ts.Next() // '('
	call := &FuncCallExpr{baseExpr{name.line}, name.lexeme, nil}
	if ts.Peek().class.id != tkParenClose.id {
		for {
			arg, err := parseExpr(ts, 0)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if ts.Peek().class.id == tkComma.id {
				ts.Next()
				continue
			}
			break
		}
	}
	if ts.Peek().class.id != tkParenClose.id {
		return nil, fmt.Errorf("line %d: expected ')' to close call to %q", name.line, name.lexeme)
	}
	ts.Next()
	return call, nil
}

func led(t token, left Expr, ts *tokenStream) (Expr, error) {
	opName := operatorFuncName(t.class)
	if opName == "" {
		return nil, fmt.Errorf("line %d: %q is not a binary operator", t.line, t.lexeme)
	}
	right, err := parseExpr(ts, t.class.lbp)
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{baseExpr{t.line}, opName, left, right}, nil
}
