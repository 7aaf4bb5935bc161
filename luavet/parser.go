package luavet

import "fmt"

// ParseError describes why the expression text could not be parsed. The
// analyzer reports it as a single violation and short-circuits.
type ParseError struct {
	Message string
	Line    int
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("syntax error at line %d: %s", err.Line, err.Message)
}

// Parser builds an AST for the Lua expression subset the sandbox
// accepts. The entry point parses a block so that a stray assignment
// such as "x = 5" parses cleanly and is then rejected by the walk,
// rather than surfacing as a syntax error.
type Parser struct {
	lexer *Lexer
	cur   Token
}

// NewParser creates a Parser over the given expression text.
func NewParser(input string) *Parser {
	parser := &Parser{lexer: NewLexer(input)}
	parser.advance()
	return parser
}

// Parse consumes the input as a single top-level statement — normally
// one expression, but a bare assignment parses too so the walk can
// reject it with a precise message rather than a syntax error.
func (parser *Parser) Parse() ([]Stmt, error) {
	var statement Stmt
	var err error
	for statement == nil {
		if parser.cur.Type == TokenEOF {
			return nil, parser.errorf("expected an expression")
		}
		statement, err = parser.parseStmt()
		if err != nil {
			return nil, err
		}
	}
	if parser.cur.Type != TokenEOF {
		return nil, parser.errorf("unexpected %q after expression", parser.cur.Value)
	}
	return []Stmt{statement}, nil
}

func (parser *Parser) advance() {
	parser.cur = parser.lexer.NextToken()
}

func (parser *Parser) errorf(format string, args ...any) error {
	return &ParseError{Message: fmt.Sprintf(format, args...), Line: parser.cur.Line}
}

func (parser *Parser) expectOp(op string) error {
	if parser.cur.Type != TokenOp || parser.cur.Value != op {
		return parser.errorf("expected %q, found %q", op, parser.cur.Value)
	}
	parser.advance()
	return nil
}

func (parser *Parser) expectKeyword(keyword string) error {
	if parser.cur.Type != TokenKeyword || parser.cur.Value != keyword {
		return parser.errorf("expected %q, found %q", keyword, parser.cur.Value)
	}
	parser.advance()
	return nil
}

func (parser *Parser) atKeyword(keywords ...string) bool {
	if parser.cur.Type != TokenKeyword {
		return false
	}
	for _, keyword := range keywords {
		if parser.cur.Value == keyword {
			return true
		}
	}
	return false
}

func (parser *Parser) atOp(op string) bool {
	return parser.cur.Type == TokenOp && parser.cur.Value == op
}

// parseBlock parses statements until EOF or a block terminator keyword
// (end, else, elseif), which the caller consumes.
func (parser *Parser) parseBlock() ([]Stmt, error) {
	var block []Stmt
	for parser.cur.Type != TokenEOF && !parser.atKeyword("end", "else", "elseif") {
		statement, err := parser.parseStmt()
		if err != nil {
			return nil, err
		}
		if statement != nil {
			block = append(block, statement)
		}
	}
	return block, nil
}

func (parser *Parser) parseStmt() (Stmt, error) {
	if parser.atOp(";") {
		parser.advance()
		return nil, nil
	}

	line := parser.cur.Line

	switch {
	case parser.atKeyword("local"):
		parser.advance()
		return parser.parseLocal(line)
	case parser.atKeyword("return"):
		parser.advance()
		statement := &ReturnStmt{Line: line}
		if parser.cur.Type == TokenEOF || parser.atKeyword("end", "else", "elseif") || parser.atOp(";") {
			return statement, nil
		}
		values, err := parser.parseExprList()
		if err != nil {
			return nil, err
		}
		statement.Values = values
		return statement, nil
	case parser.atKeyword("if"):
		parser.advance()
		return parser.parseIf(line)
	}

	// Expression statement or assignment.
	targets, err := parser.parseExprList()
	if err != nil {
		return nil, err
	}
	if parser.atOp("=") {
		parser.advance()
		values, err := parser.parseExprList()
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Targets: targets, Values: values, Line: line}, nil
	}
	if len(targets) != 1 {
		return nil, parser.errorf("unexpected expression list")
	}
	return &ExprStmt{Expr: targets[0], Line: line}, nil
}

func (parser *Parser) parseLocal(line int) (Stmt, error) {
	statement := &LocalStmt{Line: line}
	for {
		if parser.cur.Type != TokenName {
			return nil, parser.errorf("expected name after 'local', found %q", parser.cur.Value)
		}
		statement.Names = append(statement.Names, parser.cur.Value)
		parser.advance()
		if !parser.atOp(",") {
			break
		}
		parser.advance()
	}
	if parser.atOp("=") {
		parser.advance()
		values, err := parser.parseExprList()
		if err != nil {
			return nil, err
		}
		statement.Values = values
	}
	return statement, nil
}

func (parser *Parser) parseIf(line int) (Stmt, error) {
	statement := &IfStmt{Line: line}
	for {
		condition, err := parser.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := parser.expectKeyword("then"); err != nil {
			return nil, err
		}
		block, err := parser.parseBlock()
		if err != nil {
			return nil, err
		}
		statement.Conds = append(statement.Conds, condition)
		statement.Blocks = append(statement.Blocks, block)

		if parser.atKeyword("elseif") {
			parser.advance()
			continue
		}
		break
	}
	if parser.atKeyword("else") {
		parser.advance()
		block, err := parser.parseBlock()
		if err != nil {
			return nil, err
		}
		statement.Else = block
	}
	return statement, parser.expectKeyword("end")
}

func (parser *Parser) parseExprList() ([]Node, error) {
	var list []Node
	for {
		expression, err := parser.parseExpr(0)
		if err != nil {
			return nil, err
		}
		list = append(list, expression)
		if !parser.atOp(",") {
			return list, nil
		}
		parser.advance()
	}
}

// Binary operator precedence, per the Lua reference manual. The
// concatenation and exponentiation operators are right-associative.
var binaryPrecedence = map[string]int{
	"or": 1, "and": 2,
	"<": 3, ">": 3, "<=": 3, ">=": 3, "~=": 3, "==": 3,
	"..": 4,
	"+":  5, "-": 5,
	"*": 6, "/": 6, "%": 6,
	"^": 8,
}

const unaryPrecedence = 7

func (parser *Parser) binaryOp() (string, int, bool) {
	switch parser.cur.Type {
	case TokenOp:
		if precedence, ok := binaryPrecedence[parser.cur.Value]; ok && parser.cur.Value != "=" {
			return parser.cur.Value, precedence, true
		}
	case TokenKeyword:
		if parser.cur.Value == "and" || parser.cur.Value == "or" {
			return parser.cur.Value, binaryPrecedence[parser.cur.Value], true
		}
	}
	return "", 0, false
}

func (parser *Parser) parseExpr(limit int) (Node, error) {
	left, err := parser.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, precedence, ok := parser.binaryOp()
		if !ok || precedence <= limit {
			return left, nil
		}
		line := parser.cur.Line
		parser.advance()
		// Right-associative operators reuse their own precedence as the
		// limit; left-associative ones bind one level tighter.
		nextLimit := precedence
		if op == ".." || op == "^" {
			nextLimit = precedence - 1
		}
		right, err := parser.parseExpr(nextLimit)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right, Line: line}
	}
}

func (parser *Parser) parseUnary() (Node, error) {
	if parser.atOp("-") || parser.atOp("#") || parser.atKeyword("not") {
		op := parser.cur.Value
		line := parser.cur.Line
		parser.advance()
		operand, err := parser.parseExpr(unaryPrecedence)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Operand: operand, Line: line}, nil
	}
	return parser.parseSuffixed()
}

// parseSuffixed parses a primary expression followed by any chain of
// field accesses, index accesses, and calls.
func (parser *Parser) parseSuffixed() (Node, error) {
	expression, err := parser.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		line := parser.cur.Line
		switch {
		case parser.atOp("."):
			parser.advance()
			if parser.cur.Type != TokenName {
				return nil, parser.errorf("expected name after '.', found %q", parser.cur.Value)
			}
			expression = &FieldExpr{Base: expression, Name: parser.cur.Value, Line: line}
			parser.advance()
		case parser.atOp("["):
			parser.advance()
			key, err := parser.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if err := parser.expectOp("]"); err != nil {
				return nil, err
			}
			expression = &IndexExpr{Base: expression, Key: key, Line: line}
		case parser.atOp(":"):
			parser.advance()
			if parser.cur.Type != TokenName {
				return nil, parser.errorf("expected method name after ':', found %q", parser.cur.Value)
			}
			callee := &FieldExpr{Base: expression, Name: parser.cur.Value, Line: line}
			parser.advance()
			args, err := parser.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expression = &CallExpr{Callee: callee, Args: args, Method: true, Line: line}
		case parser.atOp("(") || parser.cur.Type == TokenString || parser.atOp("{"):
			args, err := parser.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expression = &CallExpr{Callee: expression, Args: args, Line: line}
		default:
			return expression, nil
		}
	}
}

// parseCallArgs handles parenthesized argument lists plus Lua's string
// and table-constructor call sugar (f"x", f{...}).
func (parser *Parser) parseCallArgs() ([]Node, error) {
	switch {
	case parser.cur.Type == TokenString:
		arg := &LiteralExpr{Value: parser.cur.Value, Line: parser.cur.Line}
		parser.advance()
		return []Node{arg}, nil
	case parser.atOp("{"):
		table, err := parser.parseTable()
		if err != nil {
			return nil, err
		}
		return []Node{table}, nil
	case parser.atOp("("):
		parser.advance()
		if parser.atOp(")") {
			parser.advance()
			return nil, nil
		}
		args, err := parser.parseExprList()
		if err != nil {
			return nil, err
		}
		return args, parser.expectOp(")")
	}
	return nil, parser.errorf("expected call arguments, found %q", parser.cur.Value)
}

func (parser *Parser) parsePrimary() (Node, error) {
	token := parser.cur
	switch token.Type {
	case TokenNumber, TokenString:
		parser.advance()
		return &LiteralExpr{Value: token.Value, Line: token.Line}, nil
	case TokenName:
		parser.advance()
		return &NameExpr{Name: token.Value, Line: token.Line}, nil
	case TokenKeyword:
		switch token.Value {
		case "nil", "true", "false":
			parser.advance()
			return &LiteralExpr{Value: token.Value, Line: token.Line}, nil
		case "function":
			parser.advance()
			return parser.parseFunction(token.Line)
		}
	case TokenOp:
		switch token.Value {
		case "(":
			parser.advance()
			expression, err := parser.parseExpr(0)
			if err != nil {
				return nil, err
			}
			return expression, parser.expectOp(")")
		case "{":
			return parser.parseTable()
		case "...":
			parser.advance()
			return &LiteralExpr{Value: "...", Line: token.Line}, nil
		}
	}
	return nil, parser.errorf("unexpected %q", token.Value)
}

func (parser *Parser) parseFunction(line int) (Node, error) {
	function := &FuncExpr{Line: line}
	if err := parser.expectOp("("); err != nil {
		return nil, err
	}
	for !parser.atOp(")") {
		if parser.cur.Type != TokenName && !parser.atOp("...") {
			return nil, parser.errorf("expected parameter name, found %q", parser.cur.Value)
		}
		function.Params = append(function.Params, parser.cur.Value)
		parser.advance()
		if parser.atOp(",") {
			parser.advance()
			continue
		}
		break
	}
	if err := parser.expectOp(")"); err != nil {
		return nil, err
	}
	body, err := parser.parseBlock()
	if err != nil {
		return nil, err
	}
	function.Body = body
	return function, parser.expectKeyword("end")
}

func (parser *Parser) parseTable() (Node, error) {
	table := &TableExpr{Line: parser.cur.Line}
	if err := parser.expectOp("{"); err != nil {
		return nil, err
	}
	for !parser.atOp("}") {
		switch {
		case parser.atOp("["):
			parser.advance()
			key, err := parser.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if err := parser.expectOp("]"); err != nil {
				return nil, err
			}
			if err := parser.expectOp("="); err != nil {
				return nil, err
			}
			value, err := parser.parseExpr(0)
			if err != nil {
				return nil, err
			}
			table.Keys = append(table.Keys, key)
			table.Values = append(table.Values, value)
		case parser.cur.Type == TokenName && parser.peekIsFieldAssign():
			key := &LiteralExpr{Value: parser.cur.Value, Line: parser.cur.Line}
			parser.advance() // name
			parser.advance() // '='
			value, err := parser.parseExpr(0)
			if err != nil {
				return nil, err
			}
			table.Keys = append(table.Keys, key)
			table.Values = append(table.Values, value)
		default:
			value, err := parser.parseExpr(0)
			if err != nil {
				return nil, err
			}
			table.Keys = append(table.Keys, nil)
			table.Values = append(table.Values, value)
		}
		if parser.atOp(",") || parser.atOp(";") {
			parser.advance()
			continue
		}
		break
	}
	return table, parser.expectOp("}")
}

// peekIsFieldAssign reports whether the current name token is followed
// by '=' (a table field assignment) without consuming input.
func (parser *Parser) peekIsFieldAssign() bool {
	saved := *parser.lexer
	next := parser.lexer.NextToken()
	*parser.lexer = saved
	return next.Type == TokenOp && next.Value == "="
}
