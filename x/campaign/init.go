package campaign

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/errors"
)

const optKey = "campaign"

// Initializer creates the campaigns declared in the genesis file. The genesis
// time is used as the creation time of all of them.
type Initializer struct{}

var _ crowdfund.Initializer = Initializer{}

// FromGenesis will parse initial campaigns from genesis and save them.
func (Initializer) FromGenesis(opts crowdfund.Options, params crowdfund.GenesisParams, db crowdfund.KVStore) error {
	var campaigns []struct {
		Owner        crowdfund.Address `json:"owner"`
		FundingGoal  coin.Coin         `json:"funding_goal"`
		DurationDays uint32            `json:"duration_days"`
	}
	if err := opts.ReadOptions(optKey, &campaigns); err != nil {
		return err
	}

	// Genesis campaigns never move funds, no bank is needed.
	ctrl := NewController(nil)
	for i, c := range campaigns {
		if _, _, err := ctrl.create(db, c.Owner, c.FundingGoal, params.Time, c.DurationDays); err != nil {
			return errors.Wrapf(err, "campaign %d", i)
		}
	}
	return nil
}
