package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/client"
	crowdfundd "github.com/iov-one/crowdfund/cmd/crowdfundd/app"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/crypto"
	"github.com/iov-one/crowdfund/x/campaign"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
	nm "github.com/tendermint/tendermint/node"
	rpctest "github.com/tendermint/tendermint/rpc/test"
	tmtypes "github.com/tendermint/tendermint/types"
)

// Node and key shared by all tests that talk to a running chain.
var (
	nodeAddr string
	keyPath  string
	richAddr crowdfund.Address
)

func TestMain(m *testing.M) {
	os.Exit(runWithNode(m))
}

func runWithNode(m *testing.M) int {
	dir, err := ioutil.TempDir("", "crowdfundd-node")
	if err != nil {
		fmt.Printf("Cannot create temp dir: %s\n", err)
		return 1
	}
	defer os.RemoveAll(dir)

	seed, _ := hex.DecodeString("6d7973656372657473656564666f7274657374696e67313233343536373839")
	key, err := crypto.DeriveKey(seed, "")
	if err != nil {
		fmt.Printf("Cannot derive key: %s\n", err)
		return 1
	}
	keyPath = filepath.Join(dir, "rich.priv")
	if err := writeKey(keyPath, key); err != nil {
		fmt.Printf("Cannot write key: %s\n", err)
		return 1
	}
	richAddr = key.PublicKey().Address()

	config := rpctest.GetConfig()
	config.Moniker = "CrowdfunddTest"
	config.TxIndex.IndexTags = ""
	config.TxIndex.IndexAllTags = true
	nodeAddr = config.RPC.ListenAddress

	// The node loads the genesis from disk, so the application state
	// must be written before it starts.
	gen, err := tmtypes.GenesisDocFromFile(config.GenesisFile())
	if err != nil {
		fmt.Printf("Cannot read genesis: %s\n", err)
		return 1
	}
	gen.AppState = json.RawMessage(`{
		"cash": [{"address": "` + richAddr.String() + `", "coins": ["100 ETH"]}]
	}`)
	if err := gen.SaveAs(config.GenesisFile()); err != nil {
		fmt.Printf("Cannot write genesis: %s\n", err)
		return 1
	}

	application, err := crowdfundd.GenerateApp("", log.NewNopLogger(), false)
	if err != nil {
		fmt.Printf("Cannot create application: %s\n", err)
		return 1
	}
	return client.TestWithTendermint(application, func(*nm.Node) {}, m)
}

func TestCampaignThroughNode(t *testing.T) {
	out, err := run(t, "tx", "create", "--goal", "10 ETH", "--days", "1", "--key", keyPath, "--node", nodeAddr)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2, out)
	var seq int64
	_, err = fmt.Sscanf(lines[1], "campaign %d", &seq)
	require.NoError(t, err, out)
	id := fmt.Sprint(seq)

	_, err = run(t, "tx", "contribute", id, "--amount", "3 ETH", "--key", keyPath, "--node", nodeAddr)
	require.NoError(t, err)

	out, err = run(t, "query", "campaign", id, "--node", nodeAddr)
	require.NoError(t, err)
	var info campaignInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, richAddr, info.Owner)
	assert.Equal(t, int64(3), info.TotalRaised.Whole)
	assert.Equal(t, int64(10), info.FundingGoal.Whole)
	assert.Equal(t, campaign.PhaseOpen.String(), info.Phase)

	out, err = run(t, "query", "wallet", info.Escrow.String(), "--node", nodeAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(3), walletOf(t, out).Get("ETH").Whole)

	out, err = run(t, "query", "contributions", id, "--node", nodeAddr)
	require.NoError(t, err)
	var contributions []campaign.Contribution
	require.NoError(t, json.Unmarshal([]byte(out), &contributions))
	require.Len(t, contributions, 1)
	assert.Equal(t, richAddr, contributions[0].Contributor)
	assert.Equal(t, int64(3), contributions[0].Amount.Whole)

	// Nothing can be settled before the deadline.
	_, err = run(t, "tx", "withdraw", id, "--key", keyPath, "--node", nodeAddr)
	require.Error(t, err)
	assert.True(t, campaign.ErrTooEarly.Is(err), "%+v", err)

	_, err = run(t, "tx", "refund", id, "--key", keyPath, "--node", nodeAddr)
	require.Error(t, err)
	assert.True(t, campaign.ErrTooEarly.Is(err), "%+v", err)
}

func TestSendThroughNode(t *testing.T) {
	recipient := crypto.GenPrivKeyEd25519().PublicKey().Address()

	_, err := run(t, "tx", "send", recipient.String(), "--amount", "2 ETH", "--memo", "thanks", "--key", keyPath, "--node", nodeAddr)
	require.NoError(t, err)

	out, err := run(t, "query", "wallet", recipient.String(), "--node", nodeAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(2), walletOf(t, out).Get("ETH").Whole)
}

func walletOf(t testing.TB, raw string) coin.Coins {
	t.Helper()
	var w struct {
		Coins coin.Coins `json:"coins"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &w))
	return w.Coins
}
