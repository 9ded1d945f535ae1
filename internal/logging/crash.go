package logging

import (
	"fmt"
	"runtime/debug"
)

// PanicError is returned by Guard when fn panicked.
type PanicError struct {
	Op    string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: panic: %v", e.Op, e.Value)
}

// Guard runs fn and converts a panic into a *PanicError, logging it with
// the stack at error level. Host callbacks use it so that a bug never takes
// the input method process down.
func Guard(l *Logger, op string, fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			stack := debug.Stack()
			if l != nil {
				l.Error("recovered panic",
					"op", op,
					"panic", fmt.Sprint(v),
					"stack", string(stack),
				)
			}
			err = &PanicError{Op: op, Value: v, Stack: stack}
		}
	}()
	return fn()
}
