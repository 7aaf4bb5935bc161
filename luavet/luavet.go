// Package luavet statically validates untrusted Lua expressions before
// the sandbox is allowed to run them. It is a structural allow-list
// analyzer: a lexical pass rejects a fixed set of dangerous keywords
// outright, then a parse-and-walk pass rejects every assignment and
// every call whose callee does not resolve to a known-safe name.
// Validation is purely structural; it is not a type checker.
package luavet

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tfkr-ae/pinpoint/domain"
)

// denyWords are rejected as whole words anywhere in the expression,
// one violation per matching line. The set covers process/OS access,
// dynamic code construction, module loading, host-global and metatable
// escape hatches, and loop keywords (the sandbox evaluates a single
// expression; unbounded iteration has no place in it). "process" guards
// against host-runtime process objects leaking in through the variable
// context.
var denyWords = []string{
	"os", "io", "process",
	"load", "loadstring", "dofile", "loadfile",
	"require", "package",
	"_G", "_ENV", "debug", "collectgarbage",
	"rawget", "rawset", "rawequal",
	"setmetatable", "getmetatable",
	"while", "for", "repeat", "until", "goto",
}

// asyncWords are rejected by default but can be permitted by policy.
var asyncWords = []string{"coroutine"}

// safeGlobals are the side-effect-free utility namespaces the sandbox
// exposes; calls whose base resolves to one of these are always
// allowed. The capitalized aliases exist in the sandbox environment as
// well.
var safeGlobals = map[string]bool{
	"math": true, "Math": true,
	"table": true,
	"json":  true, "JSON": true,
	"strings": true,
	"time":    true,
	"tostring": true, "tonumber": true, "type": true,
	"pairs": true, "ipairs": true, "select": true,
	"print": true,
}

// Analyzer validates expressions against the fixed deny and allow
// lists. The zero value bans asynchronous constructs; AllowAsync lifts
// that ban.
type Analyzer struct {
	AllowAsync bool
}

// New returns an Analyzer with the default policy.
func New() *Analyzer {
	return &Analyzer{}
}

// Validate runs both passes over the expression text. knownSafeNames
// are the variable names available in the current context; calls whose
// base is one of them are allowed. Any lexical violation short-circuits
// the structural pass; a parse failure is itself a single violation.
func (analyzer *Analyzer) Validate(expression string, knownSafeNames []string) domain.ValidationResult {
	violations := analyzer.lexicalPass(expression)
	if len(violations) > 0 {
		return domain.ValidationResult{Valid: false, Violations: violations}
	}

	block, err := NewParser(expression).Parse()
	if err != nil {
		violation := domain.Violation{Message: err.Error(), Line: 1}
		if parseErr, ok := err.(*ParseError); ok {
			violation.Line = parseErr.Line
		}
		return domain.ValidationResult{Valid: false, Violations: []domain.Violation{violation}}
	}

	known := make(map[string]bool, len(knownSafeNames))
	for _, name := range knownSafeNames {
		known[name] = true
	}

	walker := &walker{known: known}
	walker.walkBlock(block)

	return domain.ValidationResult{
		Valid:      len(walker.violations) == 0,
		Violations: walker.violations,
	}
}

// Validate runs the default analyzer over the expression.
func Validate(expression string, knownSafeNames []string) domain.ValidationResult {
	return New().Validate(expression, knownSafeNames)
}

var denyPatterns = compilePatterns(denyWords)
var asyncPatterns = compilePatterns(asyncWords)

func compilePatterns(words []string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(words))
	for _, word := range words {
		patterns[word] = regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return patterns
}

// lexicalPass scans the raw text line by line and reports one violation
// per (line, keyword) hit, in line order.
func (analyzer *Analyzer) lexicalPass(expression string) []domain.Violation {
	banned := denyWords
	patterns := denyPatterns
	if !analyzer.AllowAsync {
		banned = append(append([]string{}, denyWords...), asyncWords...)
		patterns = make(map[string]*regexp.Regexp, len(denyPatterns)+len(asyncPatterns))
		for word, pattern := range denyPatterns {
			patterns[word] = pattern
		}
		for word, pattern := range asyncPatterns {
			patterns[word] = pattern
		}
	}

	var violations []domain.Violation
	for lineIdx, line := range strings.Split(expression, "\n") {
		for _, word := range banned {
			if patterns[word].MatchString(line) {
				violations = append(violations, domain.Violation{
					Message: fmt.Sprintf("use of disallowed keyword %q", word),
					Line:    lineIdx + 1,
				})
			}
		}
	}
	return violations
}

// walker accumulates structural violations in discovery order.
type walker struct {
	known      map[string]bool
	violations []domain.Violation
}

func (walker *walker) reportf(line int, format string, args ...any) {
	walker.violations = append(walker.violations, domain.Violation{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
	})
}

func (walker *walker) walkBlock(block []Stmt) {
	for _, statement := range block {
		walker.walkStmt(statement)
	}
}

func (walker *walker) walkStmt(statement Stmt) {
	switch node := statement.(type) {
	case *AssignStmt:
		walker.reportf(node.Line, "assignment is not allowed in custom log code")
		for _, target := range node.Targets {
			walker.walkExpr(target)
		}
		for _, value := range node.Values {
			walker.walkExpr(value)
		}
	case *LocalStmt:
		for _, value := range node.Values {
			walker.walkExpr(value)
		}
	case *IfStmt:
		for i, condition := range node.Conds {
			walker.walkExpr(condition)
			walker.walkBlock(node.Blocks[i])
		}
		walker.walkBlock(node.Else)
	case *ReturnStmt:
		for _, value := range node.Values {
			walker.walkExpr(value)
		}
	case *ExprStmt:
		walker.walkExpr(node.Expr)
	}
}

func (walker *walker) walkExpr(expression Node) {
	switch node := expression.(type) {
	case *UnaryExpr:
		walker.walkExpr(node.Operand)
	case *BinaryExpr:
		walker.walkExpr(node.Left)
		walker.walkExpr(node.Right)
	case *FieldExpr:
		walker.walkExpr(node.Base)
	case *IndexExpr:
		walker.walkExpr(node.Base)
		walker.walkExpr(node.Key)
	case *TableExpr:
		for _, key := range node.Keys {
			if key != nil {
				walker.walkExpr(key)
			}
		}
		for _, value := range node.Values {
			walker.walkExpr(value)
		}
	case *FuncExpr:
		walker.walkBlock(node.Body)
	case *CallExpr:
		if !walker.safeCallee(node.Callee) {
			walker.reportf(node.Line, "call to %q is not allowed", describeCallee(node.Callee))
		}
		walker.walkExpr(node.Callee)
		for _, arg := range node.Args {
			walker.walkExpr(arg)
		}
	}
}

// safeCallee reports whether a call target resolves to something the
// policy trusts: an allow-listed utility namespace, a name from the
// variable context, a literal receiver, or an inline function literal
// invoked immediately.
func (walker *walker) safeCallee(callee Node) bool {
	base := unwrapBase(callee)
	switch node := base.(type) {
	case *NameExpr:
		return safeGlobals[node.Name] || walker.known[node.Name]
	case *LiteralExpr, *TableExpr:
		// Methods on literals are always safe.
		return true
	case *FuncExpr:
		return true
	case *CallExpr:
		// Chained call such as f()(); safe iff the inner call is, and
		// the inner call is checked on its own when walked.
		return true
	}
	return false
}

// unwrapBase strips nested field and index accesses down to the root of
// the callee chain.
func unwrapBase(node Node) Node {
	for {
		switch expression := node.(type) {
		case *FieldExpr:
			node = expression.Base
		case *IndexExpr:
			node = expression.Base
		default:
			return node
		}
	}
}

// describeCallee reconstructs a best-effort textual form of the callee
// for violation messages.
func describeCallee(node Node) string {
	switch expression := node.(type) {
	case *NameExpr:
		return expression.Name
	case *FieldExpr:
		return describeCallee(expression.Base) + "." + expression.Name
	case *IndexExpr:
		return describeCallee(expression.Base) + "[...]"
	case *CallExpr:
		return describeCallee(expression.Callee) + "()"
	}
	return "<expression>"
}
