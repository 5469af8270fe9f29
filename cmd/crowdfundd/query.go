package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/client"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/x/campaign"
	"github.com/spf13/cobra"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Read the application state from a node",
	}
	cmd.PersistentFlags().String(flagNode, defaultNode(), "tendermint node RPC address, CROWDFUND_NODE environment variable can be used to set it")
	cmd.AddCommand(
		queryWalletCmd(),
		queryCampaignCmd(),
		queryContributionsCmd(),
	)
	return cmd
}

func nodeClient(cmd *cobra.Command) *client.Client {
	return client.NewClient(client.NewHTTPConnection(flagString(cmd, flagNode)))
}

func queryWalletCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wallet <address>",
		Short: "Print the balance of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := crowdfund.ParseAddress(args[0])
			if err != nil {
				return err
			}
			set, err := client.Wallet(nodeClient(cmd), addr)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), struct {
				Address crowdfund.Address `json:"address"`
				Coins   coin.Coins        `json:"coins"`
			}{addr, set.Coins})
		},
	}
}

func queryCampaignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "campaign <campaign-id>",
		Short: "Print a campaign together with its current phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCampaignID(args[0])
			if err != nil {
				return err
			}
			c, err := client.Campaign(nodeClient(cmd), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), campaignView(id, c, time.Now()))
		},
	}
}

func queryContributionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contributions <campaign-id>",
		Short: "List the contributions recorded for a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCampaignID(args[0])
			if err != nil {
				return err
			}
			contributions, err := client.Contributions(nodeClient(cmd), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), contributions)
		},
	}
}

type campaignInfo struct {
	ID             string             `json:"id"`
	Owner          crowdfund.Address  `json:"owner"`
	Escrow         crowdfund.Address  `json:"escrow"`
	FundingGoal    coin.Coin          `json:"funding_goal"`
	TotalRaised    coin.Coin          `json:"total_raised"`
	Deadline       crowdfund.UnixTime `json:"deadline"`
	FundsWithdrawn bool               `json:"funds_withdrawn"`
	Phase          string             `json:"phase"`
}

// campaignView describes the campaign as seen at the time now. The phase is
// computed with the local clock and may differ from the one the chain
// observes at its latest block time.
func campaignView(id []byte, c *campaign.Campaign, now time.Time) campaignInfo {
	return campaignInfo{
		ID:             fmt.Sprintf("%X", id),
		Owner:          c.Owner,
		Escrow:         c.Address,
		FundingGoal:    c.FundingGoal,
		TotalRaised:    c.TotalRaised,
		Deadline:       c.Deadline,
		FundsWithdrawn: c.FundsWithdrawn,
		Phase:          campaign.PhaseOf(c, crowdfund.AsUnixTime(now)).String(),
	}
}

func printJSON(w io.Writer, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
