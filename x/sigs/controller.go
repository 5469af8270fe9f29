package sigs

import (
	"bytes"
	"crypto/sha512"
	"encoding/binary"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/crypto"
	"github.com/iov-one/crowdfund/errors"
)

// SignCodeV1 prefixes every signed payload. Changing the layout of the
// payload requires a new code.
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// VerifyTxSignatures checks every signature of tx and bumps the sequence of
// each signer. The signer conditions are returned in signature order. A
// single invalid signature fails the whole transaction.
func VerifyTxSignatures(store crowdfund.KVStore, tx SignedTx, chainID string) ([]crowdfund.Condition, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	var signers []crowdfund.Condition
	for i, sig := range tx.GetSignatures() {
		cond, err := VerifySignature(store, sig, payload, chainID)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		signers = append(signers, cond)
	}
	if signers == nil {
		signers = []crowdfund.Condition{}
	}
	return signers, nil
}

// VerifySignature checks sig over signBytes on chainID. The signer record is
// created on first use and its sequence moves forward on success.
func VerifySignature(db crowdfund.KVStore, sig *StdSignature, signBytes []byte, chainID string) (crowdfund.Condition, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	digest, err := BuildSignBytes(signBytes, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}

	users := NewBucket()
	obj, err := users.GetOrCreate(db, sig.Pubkey)
	if err != nil {
		return nil, err
	}
	user := AsUser(obj)
	if !user.Pubkey.Verify(digest, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if err := users.Save(db, obj); err != nil {
		return nil, err
	}
	return user.Pubkey.Condition(), nil
}

// BuildSignBytes returns the sha512 digest of the payload a key signs.
//
//   code (4) | len(chainID) (1) | chainID | sequence (8, big endian) | signBytes
func BuildSignBytes(signBytes []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !crowdfund.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}

	var buf bytes.Buffer
	buf.Grow(len(SignCodeV1) + 1 + len(chainID) + 8 + len(signBytes))
	buf.Write(SignCodeV1)
	buf.WriteByte(byte(len(chainID)))
	buf.WriteString(chainID)
	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], uint64(seq))
	buf.Write(seqBytes[:])
	buf.Write(signBytes)

	digest := sha512.Sum512(buf.Bytes())
	return digest[:], nil
}

// SignTx signs tx with signer, expecting seq to be the signer's next
// sequence on chainID.
func SignTx(signer crypto.Signer, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	digest, err := BuildSignBytes(payload, chainID, seq)
	if err != nil {
		return nil, err
	}
	raw, err := signer.Sign(digest)
	if err != nil {
		return nil, err
	}
	return &StdSignature{Pubkey: signer.PublicKey(), Signature: raw, Sequence: seq}, nil
}

// NextNonce returns the sequence the next signature of signer must carry.
// Unknown signers start at zero.
func NextNonce(db crowdfund.ReadOnlyKVStore, signer crowdfund.Address) (int64, error) {
	obj, err := NewBucket().Get(db, signer)
	if err != nil {
		return 0, errors.Wrap(err, "load signer")
	}
	user := AsUser(obj)
	if user == nil {
		return 0, nil
	}
	return user.Sequence, nil
}
