package pinpoint

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// WithOptions applies a series of configuration functions to the engine
// instance. Each option function can modify the engine configuration
// and return an error if it fails.
func (engine *Engine) WithOptions(options ...func(*Engine) error) error {
	for _, option := range options {
		err := option(engine)
		if err != nil {
			return fmt.Errorf("applying option on pinpoint : %w", err)
		}
	}
	return nil
}

// WithFetcher configures the configuration fetch collaborator.
func WithFetcher(fetch Fetcher) func(*Engine) error {
	return func(engine *Engine) error {
		if engine.fetch != nil {
			return errors.New("engine already has a fetcher defined")
		}
		engine.fetch = fetch
		return nil
	}
}

// WithSink configures the delivery collaborator for rendered lines.
func WithSink(sink Sink) func(*Engine) error {
	return func(engine *Engine) error {
		if engine.sink != nil {
			return errors.New("engine already has a sink defined")
		}
		engine.sink = sink
		return nil
	}
}

// WithTimeout overrides the bounded wait for configuration fetches.
func WithTimeout(timeout time.Duration) func(*Engine) error {
	return func(engine *Engine) error {
		if timeout <= 0 {
			return fmt.Errorf("fetch timeout must be positive, got %s", timeout)
		}
		engine.timeout = timeout
		return nil
	}
}

// WithVerbose routes diagnostics to stderr instead of discarding them.
func WithVerbose() func(*Engine) error {
	return func(engine *Engine) error {
		engine.verbose = true
		return nil
	}
}

// WithDiagnostics routes diagnostics to the given logger regardless of
// the verbose flag. The diagnostic channel is distinct from the sink.
func WithDiagnostics(logger *log.Logger) func(*Engine) error {
	return func(engine *Engine) error {
		engine.diag = logger
		return nil
	}
}

// WithSamplingGate replaces the sampling gate, e.g. with a seeded one
// for reproducible trials.
func WithSamplingGate(gate *SamplingGate) func(*Engine) error {
	return func(engine *Engine) error {
		engine.gate = gate
		return nil
	}
}

// WithAllowAsync lifts the static analyzer's ban on asynchronous
// constructs in custom log code.
func WithAllowAsync() func(*Engine) error {
	return func(engine *Engine) error {
		engine.allowAsync = true
		return nil
	}
}

// WithConfigDir configures the engine from a yaml config file in the
// specified directory, creating the directory and a default config file
// if they don't exist. The file carries the construction-time settings:
// fetch_timeout_ms, verbose, and allow_async.
func WithConfigDir(appConfigDir string) func(*Engine) error {
	return func(engine *Engine) error {
		_, err := os.ReadDir(appConfigDir)
		if err != nil {
			if os.IsNotExist(err) {
				log.Println("[*] creating config dir")
				err := os.MkdirAll(appConfigDir, 0700)
				if err != nil {
					return fmt.Errorf("creating config dir %s: %w", appConfigDir, err)
				}
			} else {
				return fmt.Errorf("checking if directory exists %s: %w", appConfigDir, err)
			}
		}

		viper.SetConfigName("pinpoint")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(appConfigDir)
		viper.SetDefault("fetch_timeout_ms", int(DefaultFetchTimeout/time.Millisecond))
		viper.SetDefault("verbose", false)
		viper.SetDefault("allow_async", false)
		err = viper.ReadInConfig()
		if err != nil {
			// need to check if the error is config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				err = viper.SafeWriteConfig()
				if err != nil {
					return fmt.Errorf("writing config file : %w", err)
				}
			} else {
				return fmt.Errorf("reading config file : %w", err)
			}
		}

		timeoutMs := viper.GetInt("fetch_timeout_ms")
		if timeoutMs <= 0 {
			return fmt.Errorf("fetch_timeout_ms must be positive, got %d", timeoutMs)
		}
		engine.timeout = time.Duration(timeoutMs) * time.Millisecond
		engine.verbose = viper.GetBool("verbose")
		engine.allowAsync = viper.GetBool("allow_async")
		return nil
	}
}
