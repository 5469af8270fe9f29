package errors

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// stackTrace returns the first found stack trace frame carried by given error
// or any wrapped error. It returns nil if no stack trace is found.
func stackTrace(err error) errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}

	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

// Format works like pkg/errors, with additions.
//   %s is just the error message
//   %+v is the full stack trace
//   %v appends a compressed [filename:line] where the error was created
func (e *wrappedError) Format(s fmt.State, verb rune) {
	st := stackTrace(e)
	switch {
	case verb == 'v' && s.Flag('+'):
		io.WriteString(s, e.Error())
		if st != nil {
			fmt.Fprintf(s, "%+v", st)
		}
	case verb == 'v' && len(st) > 0:
		fmt.Fprintf(s, "%s [%v]", e.Error(), st[0])
	default:
		io.WriteString(s, e.Error())
	}
}
