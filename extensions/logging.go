package extensions

import (
	"fmt"
	"time"

	"github.com/reactivestate/atoms"
)

// LoggingExtension prints start/complete/fail timing for every atom
// evaluation the kernel wraps, ported close to the teacher's
// extensions/logging.go LoggingExtension, retargeted from Resolve/Update to
// this kernel's evaluations.
type LoggingExtension struct {
	atoms.BaseExtension
}

// NewLoggingExtension constructs a LoggingExtension.
func NewLoggingExtension() *LoggingExtension {
	return &LoggingExtension{}
}

func (LoggingExtension) Name() string { return "logging" }
func (LoggingExtension) Order() int   { return 100 }

func (LoggingExtension) Wrap(op atoms.Operation, next func() (any, error)) (any, error) {
	start := time.Now()
	fmt.Printf("[atoms] %s %s starting\n", op.Kind, op.Key)

	result, err := next()

	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("[atoms] %s %s failed after %s: %v\n", op.Kind, op.Key, elapsed, err)
	} else {
		fmt.Printf("[atoms] %s %s completed in %s\n", op.Kind, op.Key, elapsed)
	}
	return result, err
}
