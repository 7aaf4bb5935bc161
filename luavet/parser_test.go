package luavet

import "testing"

func parseOne(t *testing.T, input string) Stmt {
	t.Helper()
	block, err := NewParser(input).Parse()
	if err != nil {
		t.Fatalf("parsing %q : %v", input, err)
	}
	if len(block) != 1 {
		t.Fatalf("wanted 1 statement\ngot: %d", len(block))
	}
	return block[0]
}

func TestParser_Expressions(t *testing.T) {
	t.Run("binary precedence", func(t *testing.T) {
		statement := parseOne(t, `1 + 2 * 3`)
		expression, ok := statement.(*ExprStmt)
		if !ok {
			t.Fatalf("wanted ExprStmt\ngot: %T", statement)
		}
		sum, ok := expression.Expr.(*BinaryExpr)
		if !ok || sum.Op != "+" {
			t.Fatalf("wanted top-level +\ngot: %#v", expression.Expr)
		}
		product, ok := sum.Right.(*BinaryExpr)
		if !ok || product.Op != "*" {
			t.Fatalf("wanted * bound tighter on the right\ngot: %#v", sum.Right)
		}
	})

	t.Run("call with field callee", func(t *testing.T) {
		statement := parseOne(t, `math.max(1, 2)`)
		call, ok := statement.(*ExprStmt).Expr.(*CallExpr)
		if !ok {
			t.Fatalf("wanted CallExpr\ngot: %#v", statement)
		}
		if len(call.Args) != 2 {
			t.Fatalf("wanted 2 args\ngot: %d", len(call.Args))
		}
		field, ok := call.Callee.(*FieldExpr)
		if !ok || field.Name != "max" {
			t.Fatalf("wanted field callee max\ngot: %#v", call.Callee)
		}
		if base, ok := field.Base.(*NameExpr); !ok || base.Name != "math" {
			t.Fatalf("wanted base math\ngot: %#v", field.Base)
		}
	})

	t.Run("method call marks Method", func(t *testing.T) {
		statement := parseOne(t, `value:render()`)
		call := statement.(*ExprStmt).Expr.(*CallExpr)
		if !call.Method {
			t.Fatalf("wanted a method call")
		}
	})

	t.Run("string call sugar", func(t *testing.T) {
		statement := parseOne(t, `greet "world"`)
		call, ok := statement.(*ExprStmt).Expr.(*CallExpr)
		if !ok || len(call.Args) != 1 {
			t.Fatalf("wanted call with 1 string arg\ngot: %#v", statement)
		}
	})

	t.Run("table constructor shapes", func(t *testing.T) {
		statement := parseOne(t, `{1, name = "x", ["k"] = 2}`)
		table, ok := statement.(*ExprStmt).Expr.(*TableExpr)
		if !ok {
			t.Fatalf("wanted TableExpr\ngot: %#v", statement)
		}
		if len(table.Values) != 3 {
			t.Fatalf("wanted 3 entries\ngot: %d", len(table.Values))
		}
		if table.Keys[0] != nil {
			t.Fatalf("wanted array-style first entry")
		}
	})

	t.Run("function body statements", func(t *testing.T) {
		statement := parseOne(t, `(function(a) local b = a + 1 if b > 2 then return b end return 0 end)()`)
		call := statement.(*ExprStmt).Expr.(*CallExpr)
		function, ok := call.Callee.(*FuncExpr)
		if !ok {
			t.Fatalf("wanted inline function callee\ngot: %#v", call.Callee)
		}
		if len(function.Params) != 1 || function.Params[0] != "a" {
			t.Fatalf("wanted single parameter a\ngot: %v", function.Params)
		}
		if len(function.Body) != 3 {
			t.Fatalf("wanted 3 body statements\ngot: %d", len(function.Body))
		}
	})

	t.Run("line numbers survive to nodes", func(t *testing.T) {
		statement := parseOne(t, "(function()\nreturn callMe()\nend)()")
		function := statement.(*ExprStmt).Expr.(*CallExpr).Callee.(*FuncExpr)
		inner := function.Body[0].(*ReturnStmt).Values[0].(*CallExpr)
		if inner.Line != 2 {
			t.Fatalf("wanted call on line 2\ngot: %d", inner.Line)
		}
	})
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ``},
		{name: "two expressions", input: `1 2`},
		{name: "missing end", input: `(function() return 1)()`},
		{name: "missing table close", input: `{1, 2`},
		{name: "bad field name", input: `a.1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(tt.input).Parse()
			if err == nil {
				t.Fatalf("wanted a parse error\ngot: nil")
			}
		})
	}
}
