package crowdfundd

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/codec"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/x/sigs"
)

// Tx is the transaction format accepted by the crowdfund daemon. It carries
// exactly one message together with the signatures authorizing it.
type Tx struct {
	Msg        crowdfund.Msg        `json:"msg"`
	Signatures []*sigs.StdSignature `json:"signatures"`
}

// make sure tx fulfills all interfaces
var _ crowdfund.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (crowdfund.Tx, error) {
	tx := new(Tx)
	err := tx.Unmarshal(bz)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Marshal implements crowdfund.Persistent.
func (tx *Tx) Marshal() ([]byte, error) {
	return codec.Marshal(tx)
}

// Unmarshal implements crowdfund.Persistent.
func (tx *Tx) Unmarshal(bz []byte) error {
	return codec.Unmarshal(bz, tx)
}

// GetMsg returns the single message carried by this transaction.
func (tx *Tx) GetMsg() (crowdfund.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "transaction carries no message")
	}
	return tx.Msg, nil
}

// GetSignatures implements sigs.SignedTx.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign...
func (tx *Tx) GetSignBytes() ([]byte, error) {
	// temporarily unset the signatures, as the sign bytes
	// should only come from the data itself, not previous signatures
	sigs := tx.Signatures
	tx.Signatures = nil

	bz, err := tx.Marshal()

	// reset the signatures after calculating the bytes
	tx.Signatures = sigs
	return bz, err
}
