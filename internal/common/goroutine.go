package common

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/ternarybob/arbor"
)

var goroutineCounter int64

// GetGoroutineCount returns the number of goroutines spawned via SafeGo
func GetGoroutineCount() int64 {
	return atomic.LoadInt64(&goroutineCounter)
}

// SafeGo runs fn in a goroutine and logs, rather than propagates, any panic.
// Used for scheduled refreshes and evaluation workers where one bad user must not stop the process.
func SafeGo(logger arbor.ILogger, name string, fn func()) {
	atomic.AddInt64(&goroutineCounter, 1)

	go func() {
		defer RecoverAndLog(logger, name)
		fn()
	}()
}

// RecoverAndLog recovers a panic in the calling goroutine and logs it with its stack.
// Must be called directly via defer.
func RecoverAndLog(logger arbor.ILogger, name string) {
	r := recover()
	if r == nil {
		return
	}

	stackTrace := GetStackTrace()
	if logger != nil {
		logger.Error().
			Str("goroutine", name).
			Str("panic", fmt.Sprintf("%v", r)).
			Str("stack", stackTrace).
			Msg("Recovered from panic in goroutine")
		return
	}
	fmt.Fprintf(os.Stderr, "PANIC in goroutine %s: %v\n%s\n", name, r, stackTrace)
}

// GetStackTrace returns the current goroutine's stack trace
func GetStackTrace() string {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
