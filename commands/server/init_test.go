package server

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/crowdfund/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

const tmGenesis = `{
  "genesis_time": "2019-05-01T12:00:00Z",
  "chain_id": "test-chain-LgVOZ0",
  "validators": [{"power": "10", "name": ""}],
  "app_hash": ""
}`

// setupHome creates a home directory holding a genesis file as created by
// `tendermint init`.
func setupHome(t *testing.T, genesis string) (string, func()) {
	t.Helper()
	home, err := ioutil.TempDir("", "crowdfund-server")
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(home, "config"), 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(home, "config", "genesis.json"), []byte(genesis), 0600))
	return home, func() { os.RemoveAll(home) }
}

func staticOptions(state string) GenOptions {
	return func(args []string) (json.RawMessage, error) {
		return json.RawMessage(state), nil
	}
}

func TestInitGenesis(t *testing.T) {
	home, cleanup := setupHome(t, tmGenesis)
	defer cleanup()

	logger := log.NewNopLogger()
	require.NoError(t, InitGenesis(staticOptions(`{"cash":[]}`), logger, home, nil))

	bz, err := ioutil.ReadFile(filepath.Join(home, "config", "genesis.json"))
	require.NoError(t, err)
	var doc genesisDoc
	require.NoError(t, json.Unmarshal(bz, &doc))

	// keep old values, and add our values
	assert.EqualValues(t, []byte(`"test-chain-LgVOZ0"`), doc["chain_id"])
	assert.NotEmpty(t, doc["validators"])
	assert.JSONEq(t, `{"cash":[]}`, string(doc[appStateKey]))

	// app state is never overwritten
	err = InitGenesis(staticOptions(`{}`), logger, home, nil)
	assert.True(t, errors.ErrState.Is(err), "%+v", err)
}

func TestInitGenesisWithoutTendermint(t *testing.T) {
	home, err := ioutil.TempDir("", "crowdfund-server")
	require.NoError(t, err)
	defer os.RemoveAll(home)

	err = InitGenesis(staticOptions(`{}`), log.NewNopLogger(), home, nil)
	assert.True(t, errors.ErrInput.Is(err), "%+v", err)
}

func TestInitCmd(t *testing.T) {
	home, cleanup := setupHome(t, tmGenesis)
	defer cleanup()

	var gotArgs []string
	gen := func(args []string) (json.RawMessage, error) {
		gotArgs = args
		return json.RawMessage(`{"campaign":[]}`), nil
	}
	cmd := InitCmd(gen, log.NewNopLogger())
	cmd.Flags().String(flagHome, "", "")
	cmd.SetArgs([]string{"--home", home, "ETH", "abc"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"ETH", "abc"}, gotArgs)
}
