package cash

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/errors"
)

// Balance returns all coins held by given address.
type Balance interface {
	Balance(crowdfund.ReadOnlyKVStore, crowdfund.Address) (coin.Coins, error)
}

// CoinMover is an interface for moving coins between accounts.
type CoinMover interface {
	// MoveCoins transfers the given amount from src to dest. It fails
	// without any state change when src does not hold enough funds.
	MoveCoins(crowdfund.KVStore, crowdfund.Address, crowdfund.Address, coin.Coin) error
}

// CoinMinter is an interface to create new coins.
type CoinMinter interface {
	IssueCoins(crowdfund.KVStore, crowdfund.Address, coin.Coin) error
}

// Controller is the functionality needed by cash.Handler and every extension
// holding funds on behalf of users.
type Controller interface {
	Balance
	CoinMover
	CoinMinter
}

// BaseController is a simple implementation of controller
// wallet must return something that supports AsSet
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a basic controller implementation
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the amount of funds stored under given account address.
func (c BaseController) Balance(store crowdfund.ReadOnlyKVStore, src crowdfund.Address) (coin.Coins, error) {
	state, err := c.bucket.Get(store, src)
	if err != nil {
		return nil, errors.Wrap(err, "cannot get account state")
	}
	if state == nil {
		return nil, errors.Wrap(errors.ErrNotFound, "no wallet")
	}
	return AsSet(state).Coins, nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(store crowdfund.KVStore, src crowdfund.Address, dest crowdfund.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive send: %s", amount)
	}

	sender, err := c.bucket.Get(store, src)
	if err != nil {
		return errors.Wrap(err, "cannot get source wallet")
	}
	if sender == nil {
		return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
	}
	if !AsSet(sender).Coins.Contains(amount) {
		return errors.Wrap(errors.ErrInsufficientAmount, "funds")
	}

	// Moving to self is a no-op once the balance is proven.
	if src.Equals(dest) {
		return nil
	}

	recipient, err := c.bucket.GetOrCreate(store, dest)
	if err != nil {
		return errors.Wrap(err, "cannot get destination wallet")
	}
	if err := Subtract(sender, amount); err != nil {
		return err
	}
	if err := Add(recipient, amount); err != nil {
		return errors.Wrap(err, "recipient")
	}

	if err := c.bucket.Save(store, sender); err != nil {
		return errors.Wrap(err, "cannot save source wallet")
	}
	if err := c.bucket.Save(store, recipient); err != nil {
		return errors.Wrap(err, "cannot save destination wallet")
	}
	return nil
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
//
// Note the amount may also be negative:
// "the lord giveth and the lord taketh away"
func (c BaseController) IssueCoins(store crowdfund.KVStore, dest crowdfund.Address, amount coin.Coin) error {
	recipient, err := c.bucket.GetOrCreate(store, dest)
	if err != nil {
		return err
	}
	if err := Add(recipient, amount); err != nil {
		return err
	}
	return c.bucket.Save(store, recipient)
}
