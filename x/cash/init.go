package cash

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file
// use crowdfund.Address, so address in hex, not base64
type GenesisAccount struct {
	Address crowdfund.Address `json:"address"`
	Coins   coin.Coins        `json:"coins"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ crowdfund.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts crowdfund.Options, params crowdfund.GenesisParams, kv crowdfund.KVStore) error {
	accts := []GenesisAccount{}
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	bucket := NewBucket()
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		wallet, err := WalletWith(acct.Address, acct.Coins...)
		if err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		if err := bucket.Save(kv, wallet); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
