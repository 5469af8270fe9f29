package sigs

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/crowdfundtest"
)

// StdTx is a signable transaction used across tests.
type StdTx struct {
	crowdfundtest.Tx
	Signatures []*StdSignature
}

var _ SignedTx = (*StdTx)(nil)
var _ crowdfund.Tx = (*StdTx)(nil)

func (s StdTx) GetSignatures() []*StdSignature {
	return s.Signatures
}

func (s StdTx) GetSignBytes() ([]byte, error) {
	// Signatures are not part of the signed content.
	return []byte(s.Tx.Msg.Path()), nil
}

func NewStdTx(payload []byte) *StdTx {
	return &StdTx{
		Tx: crowdfundtest.Tx{Msg: &crowdfundtest.Msg{RoutePath: string(payload)}},
	}
}
