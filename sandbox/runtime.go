package sandbox

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/Shopify/goluago/util"
)

// restrictedGlobals are scrubbed from the state after the base
// libraries open. The os and io libraries are never opened in the
// first place; the rest are base-library escape hatches (dynamic code
// loading, module system, metatable surgery) that have no place in a
// single-expression sandbox.
var restrictedGlobals = []string{
	"os", "io",
	"dofile", "loadfile", "load", "loadstring",
	"require", "package", "debug", "collectgarbage",
	"rawget", "rawset", "rawequal",
	"setmetatable", "getmetatable",
	"coroutine",
	"string", // the strings library below is the supported text utility surface
}

// Runtime evaluates custom log expressions. It holds no Lua state of
// its own; every Evaluate call builds a fresh, isolated state, so
// nothing can leak between calls.
type Runtime struct {
	diag *log.Logger // receives sandbox print output, never the sink
}

// New creates a Runtime and applies the given options.
func New(options ...func(*Runtime) error) (*Runtime, error) {
	runtime := &Runtime{
		diag: log.New(io.Discard, "", log.LstdFlags),
	}
	for _, option := range options {
		if err := option(runtime); err != nil {
			return nil, fmt.Errorf("applying option on sandbox runtime : %w", err)
		}
	}
	return runtime, nil
}

// WithDiagnostics routes the sandbox's print output to the given
// logger.
func WithDiagnostics(logger *log.Logger) func(*Runtime) error {
	return func(runtime *Runtime) error {
		runtime.diag = logger
		return nil
	}
}

// Evaluate runs a single expression against the given variable context
// and returns the produced value as a Go value. The expression must
// already have passed static validation; an immediately-invoked
// function literal is the idiom for multi-step logic. A runtime error
// raised by the expression is returned as an error, never a panic.
func (runtime *Runtime) Evaluate(expression string, vars map[string]any) (any, error) {
	l := runtime.prepareState(vars)

	if err := lua.DoString(l, "return ("+expression+");"); err != nil {
		return nil, fmt.Errorf("%s", luaErrorMessage(err))
	}

	value, err := goValue(l, -1)
	if err != nil {
		return nil, fmt.Errorf("reading expression result : %w", err)
	}
	return value, nil
}

// prepareState builds the isolated evaluation scope: base, math, table
// and string libraries, minus the restricted globals, plus the json,
// strings and time utility libraries and every context variable as a
// global.
func (runtime *Runtime) prepareState(vars map[string]any) *lua.State {
	l := lua.NewState()

	lua.Require(l, "_G", lua.BaseOpen, true)
	l.Pop(1)
	lua.Require(l, "math", lua.MathOpen, true)
	l.Pop(1)
	lua.Require(l, "table", lua.TableOpen, true)
	l.Pop(1)
	// string is opened for the method metatable on string values, then
	// its global is scrubbed below.
	lua.Require(l, "string", lua.StringOpen, true)
	l.Pop(1)

	for _, name := range restrictedGlobals {
		l.PushNil()
		l.SetGlobal(name)
	}

	registerJSONLibrary(l)
	registerStringsLibrary(l)
	registerTimeLibrary(l)

	// Capitalized aliases for callers used to host-runtime naming.
	l.Global("math")
	l.SetGlobal("Math")
	l.Global("json")
	l.SetGlobal("JSON")

	runtime.registerPrint(l)

	for name, value := range vars {
		pushVariable(l, value)
		l.SetGlobal(name)
	}

	return l
}

// registerPrint replaces the base print with one that writes to the
// diagnostic logger, so sandboxed code can never reach the process
// stdout or the configured sink.
func (runtime *Runtime) registerPrint(l *lua.State) {
	diag := runtime.diag
	l.PushGoFunction(func(l *lua.State) int {
		top := l.Top()
		parts := make([]string, 0, top)
		for index := 1; index <= top; index++ {
			value, err := goValue(l, index)
			if err != nil {
				parts = append(parts, "<value>")
				continue
			}
			parts = append(parts, fmt.Sprintf("%v", value))
		}
		diag.Printf("[*] sandbox print : %s", strings.Join(parts, "\t"))
		return 0
	})
	l.SetGlobal("print")
}

// pushVariable pushes a Go value into the Lua state. Values outside the
// shapes DeepPush understands fall back to their fmt rendering so that
// an exotic context variable can never abort the surrounding log call.
func pushVariable(l *lua.State, value any) {
	defer func() {
		if r := recover(); r != nil {
			l.PushString(fmt.Sprintf("%v", value))
		}
	}()
	util.DeepPush(l, value)
}

// goValue converts the Lua value at index into a Go value.
func goValue(l *lua.State, index int) (any, error) {
	switch l.TypeOf(index) {
	case lua.TypeNil:
		return nil, nil
	case lua.TypeBoolean:
		return l.ToBoolean(index), nil
	case lua.TypeNumber:
		number, _ := l.ToNumber(index)
		return number, nil
	case lua.TypeString:
		text, _ := l.ToString(index)
		return text, nil
	case lua.TypeTable:
		return util.PullTable(l, l.AbsIndex(index))
	}
	return nil, fmt.Errorf("unsupported lua value of type %s", lua.TypeNameOf(l, index))
}

// luaErrorMessage strips go-lua's internal prefix noise from a runtime
// error so diagnostics carry just the script's message.
func luaErrorMessage(err error) string {
	message := err.Error()
	// go-lua formats runtime errors as "runtime error: <chunk>:<line>: msg".
	if index := strings.Index(message, ": "); index >= 0 && strings.HasPrefix(message, "runtime error") {
		message = message[index+2:]
	}
	return message
}
