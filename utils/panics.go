package utils

import (
	"fmt"
	"runtime/debug"
)

// PanicError carries the recovered value together with the stack of the
// goroutine that panicked.
type PanicError struct {
	Value interface{}
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("got panic: %v", e.Value)
}

// RecoverWithError turns a panic into *err. It must be deferred directly.
func RecoverWithError(err *error) {
	if rv := recover(); rv != nil {
		*err = &PanicError{Value: rv, Stack: string(debug.Stack())}
	}
}
