package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/client"
	crowdfundd "github.com/iov-one/crowdfund/cmd/crowdfundd/app"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/crypto"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/orm"
	"github.com/iov-one/crowdfund/x/campaign"
	"github.com/iov-one/crowdfund/x/cash"
	"github.com/iov-one/crowdfund/x/sigs"
	"github.com/spf13/cobra"
)

const (
	flagNode    = "node"
	flagChainID = "chain-id"
	flagTimeout = "timeout"
	flagGoal    = "goal"
	flagDays    = "days"
	flagAmount  = "amount"
	flagMemo    = "memo"
)

func defaultNode() string {
	return env("CROWDFUND_NODE", "tcp://localhost:26657")
}

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Sign and broadcast transactions",
		Long: `Sign and broadcast transactions.

Every transaction is signed with the private key stored under --key. The
signer nonce is read from the node. The command returns once the transaction
is included in a block.`,
	}
	cmd.PersistentFlags().String(flagNode, defaultNode(), "tendermint node RPC address, CROWDFUND_NODE environment variable can be used to set it")
	cmd.PersistentFlags().String(flagKey, defaultKeyPath(), "path to the private key file, CROWDFUND_PRIV_KEY environment variable can be used to set it")
	cmd.PersistentFlags().String(flagChainID, "", "chain ID the transaction is signed for, read from the node if empty")
	cmd.PersistentFlags().Duration(flagTimeout, 30*time.Second, "how long to wait for the transaction to be included in a block")

	cmd.AddCommand(
		txCreateCmd(),
		txContributeCmd(),
		txWithdrawCmd(),
		txRefundCmd(),
		txSendCmd(),
	)
	return cmd
}

func txCreateCmd() *cobra.Command {
	var goal coin.Coin
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new campaign owned by the signer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetUint32(flagDays)
			msg := &campaign.CreateMsg{
				Metadata:     &crowdfund.Metadata{Schema: 1},
				FundingGoal:  &goal,
				DurationDays: days,
			}
			return broadcast(cmd, msg, printCreated)
		},
	}
	cmd.Flags().Var(&goal, flagGoal, "funding goal of the campaign, for example \"10 ETH\"")
	cmd.Flags().Uint32(flagDays, 30, "number of days the campaign accepts contributions")
	return cmd
}

func txContributeCmd() *cobra.Command {
	var amount coin.Coin
	cmd := &cobra.Command{
		Use:   "contribute <campaign-id>",
		Short: "Move funds from the signer into the campaign escrow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCampaignID(args[0])
			if err != nil {
				return err
			}
			msg := &campaign.ContributeMsg{
				Metadata:   &crowdfund.Metadata{Schema: 1},
				CampaignID: id,
				Amount:     &amount,
			}
			return broadcast(cmd, msg, printResult)
		},
	}
	cmd.Flags().Var(&amount, flagAmount, "amount to contribute, for example \"1 ETH\"")
	return cmd
}

func txWithdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <campaign-id>",
		Short: "Release the funds of a successful campaign to its owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCampaignID(args[0])
			if err != nil {
				return err
			}
			msg := &campaign.WithdrawMsg{
				Metadata:   &crowdfund.Metadata{Schema: 1},
				CampaignID: id,
			}
			return broadcast(cmd, msg, printResult)
		},
	}
}

func txRefundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refund <campaign-id>",
		Short: "Reclaim the signer contribution to a failed campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCampaignID(args[0])
			if err != nil {
				return err
			}
			msg := &campaign.RefundMsg{
				Metadata:   &crowdfund.Metadata{Schema: 1},
				CampaignID: id,
			}
			return broadcast(cmd, msg, printResult)
		},
	}
}

func txSendCmd() *cobra.Command {
	var amount coin.Coin
	cmd := &cobra.Command{
		Use:   "send <destination>",
		Short: "Transfer funds from the signer wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dst, err := crowdfund.ParseAddress(args[0])
			if err != nil {
				return err
			}
			key, err := readKey(flagString(cmd, flagKey))
			if err != nil {
				return err
			}
			memo, _ := cmd.Flags().GetString(flagMemo)
			msg := &cash.SendMsg{
				Metadata:    &crowdfund.Metadata{Schema: 1},
				Source:      key.PublicKey().Address(),
				Destination: dst,
				Amount:      &amount,
				Memo:        memo,
			}
			return broadcast(cmd, msg, printResult)
		},
	}
	cmd.Flags().Var(&amount, flagAmount, "amount to send, for example \"1 ETH\"")
	cmd.Flags().String(flagMemo, "", "optional, human readable note attached to the transfer")
	return cmd
}

// parseCampaignID accepts either the sequence number of a campaign or its
// hex encoded key.
func parseCampaignID(raw string) ([]byte, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil && len(raw) < 16 {
		if n <= 0 {
			return nil, errors.Wrap(errors.ErrInput, "campaign sequence must be positive")
		}
		return orm.EncodeSequence(n), nil
	}
	id, err := hex.DecodeString(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "campaign id %q: %s", raw, err)
	}
	if err := orm.ValidateSequence(id); err != nil {
		return nil, errors.Wrap(err, "campaign id")
	}
	return id, nil
}

// signTx wraps msg into a transaction and signs it with the given key.
func signTx(key crypto.Signer, msg crowdfund.Msg, chainID string, nonce int64) (*crowdfundd.Tx, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "message")
	}
	tx := &crowdfundd.Tx{Msg: msg}
	sig, err := sigs.SignTx(key, tx, chainID, nonce)
	if err != nil {
		return nil, errors.Wrap(err, "sign")
	}
	tx.Signatures = append(tx.Signatures, sig)
	return tx, nil
}

type resultPrinter func(w io.Writer, res *client.CommitResult) error

// broadcast signs msg with the configured key and waits until the
// transaction is part of a block.
func broadcast(cmd *cobra.Command, msg crowdfund.Msg, output resultPrinter) error {
	key, err := readKey(flagString(cmd, flagKey))
	if err != nil {
		return err
	}
	timeout, _ := cmd.Flags().GetDuration(flagTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c := client.NewClient(client.NewHTTPConnection(flagString(cmd, flagNode)))
	chainID := flagString(cmd, flagChainID)
	if chainID == "" {
		status, err := c.Status(ctx)
		if err != nil {
			return err
		}
		chainID = status.ChainID
	}
	nonce, err := client.NextNonce(c, key.PublicKey().Address())
	if err != nil {
		return errors.Wrap(err, "nonce")
	}
	tx, err := signTx(key, msg, chainID, nonce)
	if err != nil {
		return err
	}
	res, err := c.CommitTx(ctx, tx)
	if err != nil {
		return err
	}
	if res.Err != nil {
		return res.Err
	}
	return output(cmd.OutOrStdout(), res)
}

func printResult(w io.Writer, res *client.CommitResult) error {
	_, err := fmt.Fprintf(w, "tx %s committed at height %d\n", res.ID, res.Height)
	return err
}

func printCreated(w io.Writer, res *client.CommitResult) error {
	if err := printResult(w, res); err != nil {
		return err
	}
	var data []byte
	if res.Result != nil {
		data = res.Result.Data
	}
	seq, err := orm.DecodeSequence(data)
	if err != nil {
		return errors.Wrap(err, "campaign id")
	}
	_, err = fmt.Fprintf(w, "campaign %d (%x)\n", seq, data)
	return err
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
