package campaign

import (
	"encoding/hex"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/orm"
	"github.com/iov-one/crowdfund/x/cash"
)

// Controller implements all campaign operations on top of a store. It holds
// no state of its own and does no locking. Callers that are not already
// serialized, as the ABCI application is, should use a Ledger.
type Controller struct {
	campaigns     orm.ModelBucket
	contributions orm.ModelBucket
	bank          cash.Controller
	observers     []Observer
}

// NewController returns a controller moving funds through bank and
// notifying all observers about successful operations.
func NewController(bank cash.Controller, observers ...Observer) *Controller {
	return &Controller{
		campaigns:     NewCampaignBucket(),
		contributions: NewContributionBucket(),
		bank:          bank,
		observers:     observers,
	}
}

// Create stores a new campaign owned by owner. The block time is used as the
// creation time. The new campaign key is returned.
func (c *Controller) Create(ctx crowdfund.Context, db crowdfund.KVStore, owner crowdfund.Address, goal coin.Coin, durationDays uint32) ([]byte, *Campaign, error) {
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	key, camp, err := c.create(db, owner, goal, now, durationDays)
	if err != nil {
		return nil, nil, err
	}
	crowdfund.GetLogger(ctx).Info("campaign created",
		"campaign", hex.EncodeToString(key),
		"owner", owner,
		"goal", goal.String(),
		"deadline", camp.Deadline.String())
	return key, camp, nil
}

func (c *Controller) create(db crowdfund.KVStore, owner crowdfund.Address, goal coin.Coin, createdAt crowdfund.UnixTime, durationDays uint32) ([]byte, *Campaign, error) {
	camp, err := NewCampaign(owner, goal, createdAt, durationDays)
	if err != nil {
		return nil, nil, err
	}
	key, err := campaignSeq.NextVal(db)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot acquire key")
	}
	camp.Address = Condition(key).Address()
	if _, err := c.campaigns.Put(db, key, camp); err != nil {
		return nil, nil, errors.Wrap(err, "cannot store campaign")
	}
	return key, camp, nil
}

// Contribute moves amount from the contributor into the campaign escrow and
// records it.
func (c *Controller) Contribute(ctx crowdfund.Context, db crowdfund.KVStore, campaignID []byte, contributor crowdfund.Address, amount coin.Coin) error {
	now, err := blockNow(ctx)
	if err != nil {
		return err
	}
	if err := contributor.Validate(); err != nil {
		return errors.Wrap(err, "contributor")
	}

	err = atomically(db, func(db crowdfund.KVStore) error {
		camp, err := c.campaign(db, campaignID)
		if err != nil {
			return err
		}
		if err := canContribute(camp, now, amount); err != nil {
			return err
		}
		rec, err := c.record(db, campaignID, camp, contributor)
		if err != nil {
			return err
		}
		if rec.Amount, err = rec.Amount.Add(amount); err != nil {
			return errors.Wrap(err, "contribution")
		}
		if camp.TotalRaised, err = camp.TotalRaised.Add(amount); err != nil {
			return errors.Wrap(err, "total raised")
		}

		if _, err := c.contributions.Put(db, contributionKey(campaignID, contributor), rec); err != nil {
			return errors.Wrap(err, "cannot store contribution")
		}
		if _, err := c.campaigns.Put(db, campaignID, camp); err != nil {
			return errors.Wrap(err, "cannot store campaign")
		}
		return errors.Wrap(c.bank.MoveCoins(db, contributor, camp.Address, amount), "deposit")
	})
	if err != nil {
		return err
	}

	crowdfund.GetLogger(ctx).Info("contribution received",
		"campaign", hex.EncodeToString(campaignID),
		"contributor", contributor,
		"amount", amount.String())
	e := ContributionReceived{CampaignID: campaignID, Contributor: contributor, Amount: amount}
	for _, o := range c.observers {
		o.OnContribution(e)
	}
	return nil
}

// Withdraw releases the whole escrowed pool of a successful campaign to its
// owner. This can happen only once. The released amount is returned.
func (c *Controller) Withdraw(ctx crowdfund.Context, db crowdfund.KVStore, campaignID []byte, caller crowdfund.Address) (coin.Coin, error) {
	now, err := blockNow(ctx)
	if err != nil {
		return coin.Coin{}, err
	}

	var released coin.Coin
	err = atomically(db, func(db crowdfund.KVStore) error {
		camp, err := c.campaign(db, campaignID)
		if err != nil {
			return err
		}
		if err := canWithdraw(camp, now, caller); err != nil {
			return err
		}

		// The flag must be visible before any coin moves.
		camp.FundsWithdrawn = true
		if _, err := c.campaigns.Put(db, campaignID, camp); err != nil {
			return errors.Wrap(err, "cannot store campaign")
		}

		balance, err := c.bank.Balance(db, camp.Address)
		if err != nil {
			return errors.Wrap(err, "escrow balance")
		}
		released = balance.Get(camp.FundingGoal.Ticker)
		return errors.Wrap(c.bank.MoveCoins(db, camp.Address, camp.Owner, released), "release")
	})
	if err != nil {
		return coin.Coin{}, err
	}

	crowdfund.GetLogger(ctx).Info("funds withdrawn",
		"campaign", hex.EncodeToString(campaignID),
		"owner", caller,
		"amount", released.String())
	e := FundsReleased{CampaignID: campaignID, Owner: caller, Amount: released}
	for _, o := range c.observers {
		o.OnWithdraw(e)
	}
	return released, nil
}

// Refund returns the whole contribution of the caller to a failed campaign.
// The returned amount is returned.
func (c *Controller) Refund(ctx crowdfund.Context, db crowdfund.KVStore, campaignID []byte, caller crowdfund.Address) (coin.Coin, error) {
	now, err := blockNow(ctx)
	if err != nil {
		return coin.Coin{}, err
	}
	if err := caller.Validate(); err != nil {
		return coin.Coin{}, errors.Wrap(err, "caller")
	}

	var refunded coin.Coin
	err = atomically(db, func(db crowdfund.KVStore) error {
		camp, err := c.campaign(db, campaignID)
		if err != nil {
			return err
		}
		rec, err := c.record(db, campaignID, camp, caller)
		if err != nil {
			return err
		}
		if err := canRefund(camp, now, rec.Amount); err != nil {
			return err
		}

		// Zero the record before any coin moves.
		refunded = rec.Amount
		rec.Amount = coin.NewCoin(0, 0, refunded.Ticker)
		if _, err := c.contributions.Put(db, contributionKey(campaignID, caller), rec); err != nil {
			return errors.Wrap(err, "cannot store contribution")
		}
		return errors.Wrap(c.bank.MoveCoins(db, camp.Address, caller, refunded), "refund")
	})
	if err != nil {
		return coin.Coin{}, err
	}

	crowdfund.GetLogger(ctx).Info("contribution refunded",
		"campaign", hex.EncodeToString(campaignID),
		"contributor", caller,
		"amount", refunded.String())
	e := ContributionRefunded{CampaignID: campaignID, Contributor: caller, Amount: refunded}
	for _, o := range c.observers {
		o.OnRefund(e)
	}
	return refunded, nil
}

// Campaign returns the stored campaign or ErrNotFound.
func (c *Controller) Campaign(db crowdfund.ReadOnlyKVStore, campaignID []byte) (*Campaign, error) {
	return c.campaign(db, campaignID)
}

// ContributionOf returns the amount the contributor currently has in the
// campaign. It is zero for addresses that never contributed or were
// refunded.
func (c *Controller) ContributionOf(db crowdfund.ReadOnlyKVStore, campaignID []byte, contributor crowdfund.Address) (coin.Coin, error) {
	if err := contributor.Validate(); err != nil {
		return coin.Coin{}, errors.Wrap(err, "contributor")
	}
	camp, err := c.campaign(db, campaignID)
	if err != nil {
		return coin.Coin{}, err
	}
	rec, err := c.record(db, campaignID, camp, contributor)
	if err != nil {
		return coin.Coin{}, err
	}
	return rec.Amount, nil
}

// Contributions returns all contribution records of the campaign.
func (c *Controller) Contributions(db crowdfund.ReadOnlyKVStore, campaignID []byte) ([]*Contribution, error) {
	_, models, err := c.contributions.ByIndex(db, "campaign", campaignID)
	if err != nil {
		return nil, errors.Wrap(err, "by campaign")
	}
	res := make([]*Contribution, 0, len(models))
	for _, m := range models {
		rec, ok := m.(*Contribution)
		if !ok {
			return nil, errors.WithType(errors.ErrModel, m)
		}
		res = append(res, rec)
	}
	return res, nil
}

func (c *Controller) campaign(db crowdfund.ReadOnlyKVStore, campaignID []byte) (*Campaign, error) {
	if err := orm.ValidateSequence(campaignID); err != nil {
		return nil, errors.Wrap(err, "campaign id")
	}
	var camp Campaign
	if err := c.campaigns.One(db, campaignID, &camp); err != nil {
		return nil, errors.Wrap(err, "cannot load campaign")
	}
	return &camp, nil
}

// record returns the contribution record of contributor, a zero record in
// the campaign currency if there is none yet.
func (c *Controller) record(db crowdfund.ReadOnlyKVStore, campaignID []byte, camp *Campaign, contributor crowdfund.Address) (*Contribution, error) {
	var rec Contribution
	switch err := c.contributions.One(db, contributionKey(campaignID, contributor), &rec); {
	case err == nil:
		return &rec, nil
	case errors.ErrNotFound.Is(err):
		return &Contribution{
			Metadata:    &crowdfund.Metadata{Schema: 1},
			CampaignID:  campaignID,
			Contributor: contributor,
			Amount:      coin.NewCoin(0, 0, camp.FundingGoal.Ticker),
		}, nil
	default:
		return nil, errors.Wrap(err, "cannot load contribution")
	}
}

// blockNow reads the clock. It must be called once per operation.
func blockNow(ctx crowdfund.Context) (crowdfund.UnixTime, error) {
	t, err := crowdfund.BlockTime(ctx)
	if err != nil {
		return 0, errors.Wrap(errors.ErrState, err.Error())
	}
	return crowdfund.AsUnixTime(t), nil
}

// atomically runs fn on a cache wrap of db. All writes done by fn are
// applied only if fn returns no error.
func atomically(db crowdfund.KVStore, fn func(crowdfund.KVStore) error) error {
	cstore, ok := db.(crowdfund.CacheableKVStore)
	if !ok {
		return errors.Wrapf(errors.ErrHuman, "%T does not support savepoints", db)
	}
	cache := cstore.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	return errors.Wrap(cache.Write(), "writing savepoint")
}
