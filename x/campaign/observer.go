package campaign

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/coin"
	"github.com/prometheus/client_golang/prometheus"
)

// ContributionReceived is published after a contribution was accepted.
type ContributionReceived struct {
	CampaignID  []byte
	Contributor crowdfund.Address
	Amount      coin.Coin
}

// FundsReleased is published after the owner withdrew the pool.
type FundsReleased struct {
	CampaignID []byte
	Owner      crowdfund.Address
	Amount     coin.Coin
}

// ContributionRefunded is published after a contributor got their funds
// back.
type ContributionRefunded struct {
	CampaignID  []byte
	Contributor crowdfund.Address
	Amount      coin.Coin
}

// Observer is notified about every successful ledger operation. Notification
// happens only once the operation state was written, never for a rejected or
// rolled back call.
type Observer interface {
	OnContribution(ContributionReceived)
	OnWithdraw(FundsReleased)
	OnRefund(ContributionRefunded)
}

// MetricsObserver exposes ledger activity as prometheus metrics.
type MetricsObserver struct {
	contributions *prometheus.CounterVec
	contributed   *prometheus.CounterVec
	withdrawals   *prometheus.CounterVec
	refunds       *prometheus.CounterVec
}

var _ Observer = (*MetricsObserver)(nil)

// NewMetricsObserver returns an observer with all collectors created but
// not registered.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		contributions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crowdfund",
			Subsystem: "campaign",
			Name:      "contributions_total",
			Help:      "Number of accepted contributions.",
		}, []string{"ticker"}),
		contributed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crowdfund",
			Subsystem: "campaign",
			Name:      "contributed_amount_total",
			Help:      "Sum of all accepted contributions.",
		}, []string{"ticker"}),
		withdrawals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crowdfund",
			Subsystem: "campaign",
			Name:      "withdrawals_total",
			Help:      "Number of campaigns paid out to their owner.",
		}, []string{"ticker"}),
		refunds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crowdfund",
			Subsystem: "campaign",
			Name:      "refunds_total",
			Help:      "Number of contributions returned from failed campaigns.",
		}, []string{"ticker"}),
	}
}

// Register adds all collectors to given registry.
func (m *MetricsObserver) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.contributions, m.contributed, m.withdrawals, m.refunds} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *MetricsObserver) OnContribution(e ContributionReceived) {
	m.contributions.WithLabelValues(e.Amount.Ticker).Inc()
	m.contributed.WithLabelValues(e.Amount.Ticker).Add(asFloat(e.Amount))
}

func (m *MetricsObserver) OnWithdraw(e FundsReleased) {
	m.withdrawals.WithLabelValues(e.Amount.Ticker).Inc()
}

func (m *MetricsObserver) OnRefund(e ContributionRefunded) {
	m.refunds.WithLabelValues(e.Amount.Ticker).Inc()
}

// asFloat is lossy and must only be used for reporting.
func asFloat(c coin.Coin) float64 {
	return float64(c.Whole) + float64(c.Fractional)/float64(coin.FracUnit)
}
