package crowdfundtest

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/crypto"
)

// NewKey returns a random private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the signature condition of a random key.
func NewCondition() crowdfund.Condition {
	return NewKey().PublicKey().Condition()
}
