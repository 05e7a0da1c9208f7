// Package debug is a minimal mutex-guarded debug logger, mirroring the
// teacher's internal/debug package: disabled by default, enabled by the
// DEBUG environment variable or by SetOutput, component-tagged.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	output io.Writer
)

// SetOutput sets (or, with nil, disables) the debug writer.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Enabled reports whether debug logging is active: an explicit output
// writer has been set, or DEBUG=1/true is set in the environment, in
// which case output defaults to stderr on first use.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	if output != nil {
		return true
	}
	v := os.Getenv("DEBUG")
	return v == "1" || v == "true"
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	if output != nil {
		return output
	}
	if v := os.Getenv("DEBUG"); v == "1" || v == "true" {
		output = os.Stderr
		return output
	}
	return nil
}

// Log writes a component-tagged debug line if logging is enabled.
func Log(component, format string, args ...interface{}) {
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format+"\n", append([]interface{}{component}, args...)...)
}
