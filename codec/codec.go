/*
Package codec holds the binary serialization used for everything that is
persisted in the store or sent over the wire.

Models, messages and transactions are encoded with go-amino. Every message
type must be registered with RegisterMsg before it can be carried inside a
transaction, as the message is stored as an interface value.
*/
package codec

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	amino "github.com/tendermint/go-amino"
)

// Cdc is the codec shared by the whole application. Registration must happen
// during program initialization only.
var Cdc = amino.NewCodec()

func init() {
	Cdc.RegisterInterface((*crowdfund.Msg)(nil), nil)
}

// RegisterMsg makes given message type available for encoding as a
// crowdfund.Msg. The message path is used as the amino name, so msg must be
// a pointer to a message declaring a static Path.
func RegisterMsg(msg crowdfund.Msg) {
	Cdc.RegisterConcrete(msg, msg.Path(), nil)
}

// Marshal serializes given value into its binary representation.
func Marshal(o interface{}) ([]byte, error) {
	bz, err := Cdc.MarshalBinaryBare(o)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrType, "marshal %T: %s", o, err)
	}
	return bz, nil
}

// Unmarshal loads the binary representation into ptr, which must be a
// pointer.
func Unmarshal(bz []byte, ptr interface{}) error {
	if err := Cdc.UnmarshalBinaryBare(bz, ptr); err != nil {
		return errors.Wrapf(errors.ErrType, "unmarshal %T: %s", ptr, err)
	}
	return nil
}
