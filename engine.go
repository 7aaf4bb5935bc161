package pinpoint

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tfkr-ae/pinpoint/domain"
	"github.com/tfkr-ae/pinpoint/luavet"
	"github.com/tfkr-ae/pinpoint/sandbox"
)

// Sink is the delivery collaborator for rendered log lines. It may
// return an error or panic; both are caught and reported on the
// diagnostic channel, never propagated to the instrumented caller.
type Sink func(line string) error

// Outcome is the terminal state of a single log call. The engine never
// returns an error from Log; hosts and tests observe the decision
// through the outcome instead.
type Outcome int

const (
	// OutcomeAborted means the call ended before sampling: empty key,
	// fetch failure or timeout, absent or malformed configuration, or
	// caller cancellation.
	OutcomeAborted Outcome = iota
	// OutcomeSkipped means the sampling gate declined the call.
	OutcomeSkipped
	// OutcomeDelivered means the sink accepted the rendered line.
	OutcomeDelivered
	// OutcomeDeliveryFailed means the sink returned an error or
	// panicked; the call is still considered complete.
	OutcomeDeliveryFailed
)

// String returns the outcome name.
func (outcome Outcome) String() string {
	switch outcome {
	case OutcomeAborted:
		return "Aborted"
	case OutcomeSkipped:
		return "Skipped"
	case OutcomeDelivered:
		return "Delivered"
	case OutcomeDeliveryFailed:
		return "DeliveryFailed"
	}
	return "Unknown"
}

// Engine is the decision engine for conditional log emission. One
// engine is constructed per process (see Init) with its fetch and sink
// collaborators; individual log calls share nothing else.
type Engine struct {
	fetch      Fetcher
	sink       Sink
	timeout    time.Duration
	verbose    bool
	allowAsync bool
	diag       *log.Logger
	gate       *SamplingGate
	analyzer   *luavet.Analyzer
	runtime    *sandbox.Runtime
}

// New creates an Engine, applies the given options, and wires the
// static analyzer and sandbox runtime. A fetcher and a sink are
// required; everything else has defaults (2000ms fetch timeout,
// diagnostics discarded unless verbose).
func New(options ...func(*Engine) error) (*Engine, error) {
	engine := &Engine{
		timeout: DefaultFetchTimeout,
		gate:    NewSamplingGate(),
	}

	if err := engine.WithOptions(options...); err != nil {
		return nil, err
	}

	if engine.fetch == nil {
		return nil, ErrNoFetcher
	}
	if engine.sink == nil {
		return nil, ErrNoSink
	}

	if engine.diag == nil {
		output := io.Discard
		if engine.verbose {
			output = os.Stderr
		}
		engine.diag = log.New(output, "pinpoint ", log.LstdFlags)
	}

	engine.analyzer = luavet.New()
	engine.analyzer.AllowAsync = engine.allowAsync

	runtime, err := sandbox.New(sandbox.WithDiagnostics(engine.diag))
	if err != nil {
		return nil, fmt.Errorf("creating sandbox runtime : %w", err)
	}
	engine.runtime = runtime

	return engine, nil
}

// Log runs the full decision sequence for one call: resolve the
// configuration for the key (bounded wait), sample, merge the local
// variables with the ambient ones from the context, optionally validate
// and execute the configured custom code, format the line, and hand it
// to the sink. It never returns an error and never panics into the
// caller; logging must not be able to alter the control flow of the
// instrumented program.
func (engine *Engine) Log(ctx context.Context, key string, message string, localVars map[string]any) Outcome {
	callID := uuid.New()

	if key == "" {
		engine.diag.Printf("[*] [%s] rejecting log call : empty call key", callID)
		return OutcomeAborted
	}

	resolver := &resolver{fetch: engine.fetch, timeout: engine.timeout, diag: engine.diag}
	raw := resolver.resolve(ctx, key)
	if raw == nil {
		// No configuration for this key, or the fetch failed; either
		// way the call ends in silence.
		return OutcomeAborted
	}

	config, ok := domain.ParseConfig(raw)
	if !ok {
		engine.diag.Printf("[*] [%s] malformed config for key %q", callID, key)
		return OutcomeAborted
	}

	if !engine.gate.ShouldProceed(config.SamplingRate) {
		return OutcomeSkipped
	}

	ambient, _ := VarsFromContext(ctx)
	merged := MergeVars(localVars, ambient)
	filtered := FilterVars(config.VariablesToLog, merged)

	var customOutput *string
	if config.CustomCode != "" {
		output := engine.runCustomCode(config.CustomCode, merged)
		customOutput = &output
	}

	line := FormatLine(key, config.PrefixMessage+message, filtered, customOutput)

	// The caller may have been torn down while we were deciding; a
	// dead logical task must not reach the sink.
	if ctx.Err() != nil {
		engine.diag.Printf("[*] [%s] caller gone before delivery : %v", callID, ctx.Err())
		return OutcomeAborted
	}

	return engine.deliver(callID, line)
}

// runCustomCode validates and then evaluates the configured custom
// code against the merged variable context. Validation failures and
// runtime errors become the custom output's diagnostic text; they never
// abort the surrounding log call.
func (engine *Engine) runCustomCode(code string, vars map[string]any) string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}

	result := engine.analyzer.Validate(code, names)
	if !result.Valid {
		descriptions := make([]string, 0, len(result.Violations))
		for _, violation := range result.Violations {
			descriptions = append(descriptions, violation.String())
		}
		return fmt.Sprintf("Custom code failed validation: %s", strings.Join(descriptions, "; "))
	}

	value, err := engine.runtime.Evaluate(code, vars)
	if err != nil {
		return fmt.Sprintf("Error executing custom log code: %s", err)
	}
	if value == nil {
		return NotApplicable
	}
	return Serialize(value)
}

// deliver hands the line to the sink, recovering a panicking sink so
// the failure stays on the diagnostic channel.
func (engine *Engine) deliver(callID uuid.UUID, line string) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			engine.diag.Printf("[*] [%s] sink panicked : %v", callID, r)
			outcome = OutcomeDeliveryFailed
		}
	}()

	if err := engine.sink(line); err != nil {
		engine.diag.Printf("[*] [%s] sink failed : %v", callID, err)
		return OutcomeDeliveryFailed
	}
	return OutcomeDelivered
}
