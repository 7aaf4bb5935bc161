package pinpoint

import "sync"

// The process-wide engine instance. One configured engine per process;
// re-initialization before teardown is an explicit error, not silently
// ignored.
var (
	instanceMu sync.Mutex
	instance   *Engine
)

// Init creates the process-wide engine instance with the given options.
// It returns ErrAlreadyInitialized if an instance already exists.
func Init(options ...func(*Engine) error) (*Engine, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance != nil {
		return nil, ErrAlreadyInitialized
	}

	engine, err := New(options...)
	if err != nil {
		return nil, err
	}
	instance = engine
	return engine, nil
}

// Instance returns the process-wide engine, or ErrNotInitialized before
// Init succeeded.
func Instance() (*Engine, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance == nil {
		return nil, ErrNotInitialized
	}
	return instance, nil
}

// Teardown discards the process-wide engine so Init may run again.
func Teardown() {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instance = nil
}
