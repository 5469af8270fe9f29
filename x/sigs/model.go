package sigs

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/codec"
	"github.com/iov-one/crowdfund/crypto"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/orm"
)

// BucketName is the bucket holding one UserData per public key.
const BucketName = "sigs"

// maxSequenceValue keeps sequences exact for clients that store numbers as
// float64 (2^53 - 1).
const maxSequenceValue = 1<<53 - 1

// UserData is the replay protection state of a public key. Every accepted
// signature must carry the current Sequence, which then moves up by one.
type UserData struct {
	Metadata *crowdfund.Metadata `json:"metadata"`
	Pubkey   *crypto.PublicKey   `json:"pubkey"`
	Sequence int64               `json:"sequence"`
}

var _ orm.CloneableData = (*UserData)(nil)

// Validate requires a non negative sequence. Only a record with a known
// public key can have signed anything.
func (u *UserData) Validate() error {
	if err := u.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	switch {
	case u.Sequence < 0:
		return errors.Wrap(ErrInvalidSequence, "negative")
	case u.Sequence > 0 && u.Pubkey == nil:
		return errors.Wrap(ErrInvalidSequence, "sequence without public key")
	}
	return nil
}

func (u *UserData) Copy() orm.CloneableData {
	cp := *u
	cp.Metadata = u.Metadata.Copy()
	return &cp
}

func (u *UserData) Marshal() ([]byte, error) {
	return codec.Marshal(u)
}

func (u *UserData) Unmarshal(raw []byte) error {
	return codec.Unmarshal(raw, u)
}

// CheckAndIncrementSequence moves the sequence forward if it equals
// expected. The sequence never grows past maxSequenceValue.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "expected %d, got %d", u.Sequence, expected)
	}
	if u.Sequence >= maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence")
	}
	u.Sequence++
	return nil
}

// AsUser returns the UserData held by obj, or nil for a missing object.
func AsUser(obj orm.Object) *UserData {
	if obj == nil {
		return nil
	}
	u, _ := obj.Value().(*UserData)
	return u
}

// NewUser returns a fresh record for pubkey, keyed by its address. A nil
// pubkey gives the template object of the bucket.
func NewUser(pubkey *crypto.PublicKey) orm.Object {
	user := &UserData{Metadata: &crowdfund.Metadata{Schema: 1}, Pubkey: pubkey}
	if pubkey == nil {
		return orm.NewSimpleObj(nil, user)
	}
	return orm.NewSimpleObj(pubkey.Address(), user)
}

// Bucket stores UserData by signer address.
type Bucket struct {
	orm.Bucket
}

func NewBucket() Bucket {
	return Bucket{Bucket: orm.NewBucket(BucketName, NewUser(nil))}
}

// GetOrCreate loads the record of pubkey, or returns an unsaved new one.
func (b Bucket) GetOrCreate(db crowdfund.KVStore, pubkey *crypto.PublicKey) (orm.Object, error) {
	obj, err := b.Get(db, pubkey.Address())
	switch {
	case err != nil:
		return nil, err
	case obj == nil:
		return NewUser(pubkey), nil
	}
	return obj, nil
}
