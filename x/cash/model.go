package cash

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/codec"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

//---- Set

// Set is the content of a wallet: all coins held by a single address.
type Set struct {
	Metadata *crowdfund.Metadata `json:"metadata"`
	Coins    coin.Coins          `json:"coins"`
}

var _ orm.CloneableData = (*Set)(nil)

// Validate requires that all coins are in alphabetical order
// and that no balance is negative.
func (s *Set) Validate() error {
	if err := s.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := s.Coins.Validate(); err != nil {
		return errors.Wrap(err, "coins")
	}
	if !s.Coins.IsNonNegative() {
		return errors.Wrap(errors.ErrAmount, "negative balance")
	}
	return nil
}

// Copy makes a new set with the same coins
func (s *Set) Copy() orm.CloneableData {
	return &Set{
		Metadata: s.Metadata.Copy(),
		Coins:    s.Coins.Clone(),
	}
}

// Marshal implements crowdfund.Persistent.
func (s *Set) Marshal() ([]byte, error) {
	return codec.Marshal(s)
}

// Unmarshal implements crowdfund.Persistent.
func (s *Set) Unmarshal(bz []byte) error {
	return codec.Unmarshal(bz, s)
}

//--- Wallet (Set object, wallet + key)

// NewWallet creates an empty wallet with this address
// serves as an object for the bucket
func NewWallet(key crowdfund.Address) orm.Object {
	return orm.NewSimpleObj(key, &Set{
		Metadata: &crowdfund.Metadata{Schema: 1},
	})
}

// WalletWith creates a wallet with a balance
func WalletWith(key crowdfund.Address, coins ...*coin.Coin) (orm.Object, error) {
	obj := NewWallet(key)
	if err := Concat(obj, coins); err != nil {
		return nil, err
	}
	return obj, nil
}

// AsSet will safely type-cast any value from Bucket to a Set
func AsSet(obj orm.Object) *Set {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Set)
}

// Add modifies the wallet to add Coin c
func Add(obj orm.Object, c coin.Coin) error {
	set := AsSet(obj)
	cs, err := set.Coins.Add(c)
	if err != nil {
		return err
	}
	set.Coins = cs
	return nil
}

// Subtract modifies the wallet to remove Coin c
func Subtract(obj orm.Object, c coin.Coin) error {
	return Add(obj, c.Negative())
}

// Concat combines the coins to make sure they are sorted
// and rounded off, with no duplicates or 0 values.
func Concat(obj orm.Object, coins coin.Coins) error {
	set := AsSet(obj)
	joint, err := set.Coins.Combine(coins)
	if err != nil {
		return err
	}
	set.Coins = joint
	return nil
}

//--- cash.Bucket - type-safe bucket

// Bucket is a type-safe wrapper around orm.Bucket
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes a cash.Bucket with default name
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, NewWallet(nil)),
	}
}

// GetOrCreate will return the object if found, or create one
// if not.
func (b Bucket) GetOrCreate(db crowdfund.KVStore, key crowdfund.Address) (orm.Object, error) {
	obj, err := b.Get(db, key)
	if err == nil && obj == nil {
		obj = NewWallet(key)
	}
	return obj, err
}

// Save enforces the proper type
func (b Bucket) Save(db crowdfund.KVStore, obj orm.Object) error {
	if _, ok := obj.Value().(*Set); !ok {
		return errors.WithType(errors.ErrModel, obj.Value())
	}
	return b.Bucket.Save(db, obj)
}
