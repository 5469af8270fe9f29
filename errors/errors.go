package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// Root errors shared by all packages. Extensions register their own codes
// next to their handlers.
var (
	// ErrUnauthorized is returned when a required signature is missing,
	// for example a withdraw not signed by the campaign owner.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = Register(3, "not found")

	// ErrMsg is returned for a message that cannot be handled.
	ErrMsg = Register(4, "invalid message")

	// ErrModel is returned for an entity that cannot be persisted.
	ErrModel = Register(5, "invalid model")

	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = Register(6, "duplicate")

	// ErrHuman signals a code path that correct callers never reach.
	ErrHuman = Register(7, "coding error")

	// ErrImmutable is returned on an attempt to change a value that is set
	// once.
	ErrImmutable = Register(8, "cannot be modified")

	// ErrEmpty is returned when a required value is missing.
	ErrEmpty = Register(9, "value is empty")

	// ErrState is returned when an entity is not in a state allowing the
	// operation.
	ErrState = Register(10, "invalid state")

	// ErrType is returned when a value is not of the expected type.
	ErrType = Register(11, "invalid type")

	// ErrInsufficientAmount is returned when a wallet cannot cover a
	// transfer.
	ErrInsufficientAmount = Register(12, "insufficient amount")

	// ErrAmount is returned for a zero, negative or malformed amount.
	ErrAmount = Register(13, "invalid amount")

	// ErrInput is returned for malformed user input.
	ErrInput = Register(14, "invalid input")

	// ErrExpired is returned when a deadline has passed.
	ErrExpired = Register(15, "expired")

	// ErrOverflow is returned when a result does not fit its type.
	ErrOverflow = Register(16, "an operation cannot be completed due to value overflow")

	// ErrCurrency is returned when coins of different tickers are mixed or
	// a ticker is invalid.
	ErrCurrency = Register(17, "currency")

	// ErrDatabase is returned when the store fails or holds data that
	// cannot be decoded.
	ErrDatabase = Register(18, "database")

	// ErrIteratorDone is returned by an exhausted iterator.
	ErrIteratorDone = Register(19, "iterator done")

	// ErrMetadata is returned for missing or broken metadata.
	ErrMetadata = Register(20, "invalid metadata")

	// ErrPanic wraps a recovered panic. Its message is redacted before it
	// reaches a client.
	ErrPanic = Register(111222, "panic")
)

// Code 1 is reported for any error that does not carry a code.
const internalCode uint32 = 1

var usedCodes = map[uint32]*Error{
	internalCode: {code: internalCode, desc: "internal"},
}

// Register declares a root error with a code unique for the whole
// application. It panics when the code is taken, so it must only be called
// while initializing packages.
func Register(code uint32, description string) *Error {
	if prev, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, prev.desc))
	}
	e := &Error{code: code, desc: description}
	usedCodes[code] = e
	return e
}

// Error is a root error. Errors created at runtime wrap one of them, which
// gives each failure a stable code that can be safely reported to a client.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// ABCICode returns the code reported to the client.
func (e Error) ABCICode() uint32 {
	return e.code
}

// New wraps e with a description. It is equal to Wrap(e, description).
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is New with formatting.
func (e *Error) Newf(format string, args ...interface{}) error {
	return Wrapf(e, format, args...)
}

// Is returns true if err is e or wraps it at any depth. A nil e matches any
// nil error, including a typed nil pointer.
func (e *Error) Is(err error) bool {
	if e == nil {
		return isNilErr(err)
	}
	for err != nil {
		if err == e {
			return true
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

// Wrap adds a description to err. A stack trace is attached at the first
// wrap. Errors without a code are reported as internal. Wrapping nil
// returns nil.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &wrappedError{parent: err, msg: description}
}

// Wrapf is Wrap with formatting.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithType wraps err with the name of the type of obj.
func WithType(err error, obj interface{}) error {
	return Wrapf(err, "%T", obj)
}

type wrappedError struct {
	msg    string
	parent error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.parent.Error()
}

func (e *wrappedError) Cause() error {
	return e.parent
}

// Recover turns a panic into an ErrPanic assigned to err. It must be called
// with defer.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

type causer interface {
	Cause() error
}

func isNilErr(err error) bool {
	if err == nil {
		return true
	}
	v := reflect.ValueOf(err)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
