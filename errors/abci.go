package errors

import (
	"errors"
)

// SuccessABCICode is the code of a successful response.
const SuccessABCICode = 0

// internalABCILog replaces the message of errors without a code, so
// implementation details never leave the node.
const internalABCILog = "internal error"

// ABCIInfo returns the code and log of an abci response for err. Errors
// without a registered code are reported with code 1 and, unless debug is
// set, a generic message.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessABCICode, ""
	}
	code := abciCode(err)
	if code == internalCode && !debug {
		return code, internalABCILog
	}
	return code, err.Error()
}

type coder interface {
	ABCICode() uint32
}

// abciCode returns the code of the first error in the chain providing one.
func abciCode(err error) uint32 {
	if isNilErr(err) {
		return SuccessABCICode
	}
	for {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}
		c, ok := err.(causer)
		if !ok {
			return internalCode
		}
		err = c.Cause()
	}
}

// ABCIError rebuilds an error from the code and log of an abci response. A
// registered code maps back to its root error, so a client can test the
// result with ErrNotFound.Is(err). Unknown codes never match any root error.
//
// Only clients need this. Node code always returns registered errors.
func ABCIError(code uint32, log string) error {
	if e, ok := usedCodes[code]; ok {
		return Wrap(e, log)
	}
	return Wrap(&Error{code: code, desc: "unknown error code"}, log)
}

// Redact replaces errors that must not reach a client, recovered panics and
// errors without a code, with a generic internal error. In debug mode err is
// returned unchanged.
func Redact(err error, debug bool) error {
	if debug {
		return err
	}
	if ErrPanic.Is(err) || abciCode(err) == internalCode {
		return errors.New(internalABCILog)
	}
	return err
}
