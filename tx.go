package crowdfund

import (
	"reflect"

	"github.com/iov-one/crowdfund/errors"
)

// Msg is the action a transaction asks for, such as a contribution to a
// campaign. It carries no authentication, that is the job of the Tx.
type Msg interface {
	// Path routes the message to its handler. Several message types may
	// share one path. Allowed characters are [0-9A-Za-z_\-/].
	Path() string

	// Validate checks the message on its own, without reading state.
	Validate() error
}

// Marshaller is anything with a binary form.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent can also be loaded back. Unmarshal usually needs a pointer
// receiver, so it is kept apart from Marshaller.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Tx is what a client submits: one message plus whatever the decorators
// need, such as signatures.
type Tx interface {
	Persistent
	GetMsg() (Msg, error)
}

// GetPath returns the path of the message of tx, or "(missing)".
func GetPath(tx Tx) string {
	if msg, err := tx.GetMsg(); err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// TxDecoder parses a transaction received from tendermint.
type TxDecoder func(txBytes []byte) (Tx, error)

// LoadMsg stores the validated message of tx into dest, which must be a
// non nil pointer to the message type. A different type is ErrType.
// dest may point to either the message pointer or the message value.
//
//   var msg ContributeMsg
//   if err := crowdfund.LoadMsg(tx, &msg); err != nil {
//     return err
//   }
func LoadMsg(tx Tx, dest interface{}) error {
	msg, err := tx.GetMsg()
	switch {
	case err != nil:
		return errors.Wrap(err, "message")
	case msg == nil:
		return errors.Wrap(errors.ErrMsg, "transaction carries no message")
	}

	ptr := reflect.ValueOf(dest)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return errors.Wrapf(errors.ErrType, "destination %T is not a pointer", dest)
	}
	val, target := reflect.ValueOf(msg), ptr.Elem().Type()
	if !val.Type().AssignableTo(target) && val.Kind() == reflect.Ptr && !val.IsNil() {
		val = val.Elem()
	}
	if !val.Type().AssignableTo(target) {
		return errors.Wrapf(errors.ErrType, "want %s, got %T", target, msg)
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	ptr.Elem().Set(val)
	return nil
}
