package campaign

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/codec"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/orm"
)

const (
	// CampaignBucketName is where campaigns are stored.
	CampaignBucketName = "campaign"
	// ContributionBucketName is where per contributor balances are stored.
	ContributionBucketName = "contrib"

	secondsPerDay = 24 * 60 * 60
)

// Campaign holds the funding parameters of a single campaign together with
// its aggregated state.
type Campaign struct {
	Metadata *crowdfund.Metadata `json:"metadata"`
	// Owner is the beneficiary. Only the owner can withdraw.
	Owner       crowdfund.Address  `json:"owner"`
	FundingGoal coin.Coin          `json:"funding_goal"`
	CreatedAt   crowdfund.UnixTime `json:"created_at"`
	Deadline    crowdfund.UnixTime `json:"deadline"`
	// TotalRaised is the sum of all contributions ever received. Refunds
	// do not decrease it.
	TotalRaised    coin.Coin `json:"total_raised"`
	FundsWithdrawn bool      `json:"funds_withdrawn"`
	// Address is the escrow account holding the contributed funds.
	Address crowdfund.Address `json:"address"`
}

var _ orm.Model = (*Campaign)(nil)

// NewCampaign builds a campaign owned by owner that is open for durationDays
// starting at createdAt. TotalRaised starts at zero in the goal currency.
func NewCampaign(owner crowdfund.Address, goal coin.Coin, createdAt crowdfund.UnixTime, durationDays uint32) (*Campaign, error) {
	if !goal.IsPositive() {
		return nil, errors.Wrap(ErrConstructionInvalid, "funding goal must be positive")
	}
	if err := goal.Validate(); err != nil {
		return nil, errors.Wrap(ErrConstructionInvalid, err.Error())
	}
	if durationDays == 0 || durationDays > maxDurationDays {
		return nil, errors.Wrapf(ErrConstructionInvalid, "duration must be between 1 and %d days", maxDurationDays)
	}
	c := &Campaign{
		Metadata:    &crowdfund.Metadata{Schema: 1},
		Owner:       owner,
		FundingGoal: goal,
		CreatedAt:   createdAt,
		Deadline:    createdAt + crowdfund.UnixTime(durationDays)*secondsPerDay,
		TotalRaised: coin.NewCoin(0, 0, goal.Ticker),
	}
	if err := c.Owner.Validate(); err != nil {
		return nil, errors.Wrap(ErrConstructionInvalid, "owner")
	}
	return c, nil
}

// Validate ensures the campaign is consistent.
func (c *Campaign) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := c.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if err := c.FundingGoal.Validate(); err != nil {
		return errors.Wrap(err, "funding goal")
	}
	if !c.FundingGoal.IsPositive() {
		return errors.Wrap(ErrConstructionInvalid, "funding goal must be positive")
	}
	if err := c.CreatedAt.Validate(); err != nil {
		return errors.Wrap(err, "created at")
	}
	if c.Deadline <= c.CreatedAt {
		return errors.Wrap(ErrConstructionInvalid, "deadline must be after creation")
	}
	if err := c.TotalRaised.Validate(); err != nil {
		return errors.Wrap(err, "total raised")
	}
	if !c.TotalRaised.IsNonNegative() {
		return errors.Wrap(errors.ErrAmount, "negative total raised")
	}
	if !c.FundingGoal.SameType(c.TotalRaised) {
		return errors.Wrap(errors.ErrCurrency, "total raised and goal currency differ")
	}
	if err := c.Address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	return nil
}

// Copy returns a deep copy of the campaign.
func (c *Campaign) Copy() orm.CloneableData {
	return &Campaign{
		Metadata:       c.Metadata.Copy(),
		Owner:          append(crowdfund.Address(nil), c.Owner...),
		FundingGoal:    c.FundingGoal,
		CreatedAt:      c.CreatedAt,
		Deadline:       c.Deadline,
		TotalRaised:    c.TotalRaised,
		FundsWithdrawn: c.FundsWithdrawn,
		Address:        append(crowdfund.Address(nil), c.Address...),
	}
}

// Marshal implements crowdfund.Persistent.
func (c *Campaign) Marshal() ([]byte, error) {
	return codec.Marshal(c)
}

// Unmarshal implements crowdfund.Persistent.
func (c *Campaign) Unmarshal(bz []byte) error {
	return codec.Unmarshal(bz, c)
}

// GoalReached returns true once the raised amount is at least the goal.
// Because TotalRaised never decreases, so does this.
func (c *Campaign) GoalReached() bool {
	return c.TotalRaised.Compare(c.FundingGoal) >= 0
}

// Condition returns the condition that owns the escrowed funds of the
// campaign with given key.
func Condition(key []byte) crowdfund.Condition {
	return crowdfund.NewCondition("campaign", "seq", key)
}

// Contribution is the amount a single contributor has escrowed in a campaign.
type Contribution struct {
	Metadata    *crowdfund.Metadata `json:"metadata"`
	CampaignID  []byte              `json:"campaign_id"`
	Contributor crowdfund.Address   `json:"contributor"`
	Amount      coin.Coin           `json:"amount"`
}

var _ orm.Model = (*Contribution)(nil)

// Validate ensures the contribution record is consistent.
func (c *Contribution) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := orm.ValidateSequence(c.CampaignID); err != nil {
		return errors.Wrap(err, "campaign id")
	}
	if err := c.Contributor.Validate(); err != nil {
		return errors.Wrap(err, "contributor")
	}
	if err := c.Amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if !c.Amount.IsNonNegative() {
		return errors.Wrap(errors.ErrAmount, "negative contribution")
	}
	return nil
}

// Copy returns a deep copy of the record.
func (c *Contribution) Copy() orm.CloneableData {
	return &Contribution{
		Metadata:    c.Metadata.Copy(),
		CampaignID:  append([]byte(nil), c.CampaignID...),
		Contributor: append(crowdfund.Address(nil), c.Contributor...),
		Amount:      c.Amount,
	}
}

// Marshal implements crowdfund.Persistent.
func (c *Contribution) Marshal() ([]byte, error) {
	return codec.Marshal(c)
}

// Unmarshal implements crowdfund.Persistent.
func (c *Contribution) Unmarshal(bz []byte) error {
	return codec.Unmarshal(bz, c)
}

// contributionKey returns the primary key of the record of contributor in
// given campaign.
func contributionKey(campaignID []byte, contributor crowdfund.Address) []byte {
	key := make([]byte, 0, len(campaignID)+len(contributor))
	key = append(key, campaignID...)
	return append(key, contributor...)
}

var campaignSeq = orm.NewSequence(CampaignBucketName, orm.SeqID)

// NewCampaignBucket returns a bucket for storing campaigns.
func NewCampaignBucket() orm.ModelBucket {
	return orm.NewModelBucket(CampaignBucketName, &Campaign{},
		orm.WithIndex("owner", idxOwner, false),
	)
}

// NewContributionBucket returns a bucket for storing contribution records,
// indexed by the contributor and by the campaign.
func NewContributionBucket() orm.ModelBucket {
	return orm.NewModelBucket(ContributionBucketName, &Contribution{},
		orm.WithIndex("contributor", idxContributor, false),
		orm.WithIndex("campaign", idxCampaign, false),
	)
}

func idxOwner(obj orm.Object) ([]byte, error) {
	c, ok := obj.Value().(*Campaign)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return c.Owner, nil
}

func idxContributor(obj orm.Object) ([]byte, error) {
	c, ok := obj.Value().(*Contribution)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return c.Contributor, nil
}

func idxCampaign(obj orm.Object) ([]byte, error) {
	c, ok := obj.Value().(*Contribution)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return c.CampaignID, nil
}
