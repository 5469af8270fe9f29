package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

// run executes the command tree with given arguments and returns what was
// written to the output.
func run(t testing.TB, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd(&levelLogger{Logger: log.NewNopLogger()})
	cmd.SetOutput(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func tempDir(t testing.TB) (string, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "crowdfundd")
	require.NoError(t, err)
	return dir, func() { os.RemoveAll(dir) }
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, crowdfund.Version()+"\n", out)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "verbose", "version")
	assert.Error(t, err)
}

func TestKeygenAndKeyaddr(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	keyPath := filepath.Join(dir, "key.priv")

	const seed = "d34c1970ae90acf3405f2d99dcaca16d0c7db379f4beafcfdf667b9d69ce350d"
	out, err := run(t, "keygen", "--key", keyPath, "--seed", seed)
	require.NoError(t, err)
	assert.Empty(t, out, "a provided seed must not be printed")

	key, err := readKey(keyPath)
	require.NoError(t, err)

	out, err = run(t, "keyaddr", "--key", keyPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	addr := key.PublicKey().Address()
	assert.Equal(t, addr.String(), lines[0])
	parsed, err := crowdfund.ParseAddress(lines[1])
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)

	// The same seed always derives the same key.
	otherPath := filepath.Join(dir, "other.priv")
	_, err = run(t, "keygen", "--key", otherPath, "--seed", seed)
	require.NoError(t, err)
	other, err := readKey(otherPath)
	require.NoError(t, err)
	assert.Equal(t, key.Ed25519, other.Ed25519)
}

func TestKeygenRandomSeed(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	keyPath := filepath.Join(dir, "key.priv")

	out, err := run(t, "keygen", "--key", keyPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "seed: "), out)
	_, err = readKey(keyPath)
	assert.NoError(t, err)
}

func TestKeygenDoesNotOverwrite(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	keyPath := filepath.Join(dir, "key.priv")
	require.NoError(t, ioutil.WriteFile(keyPath, []byte("precious"), 0600))

	_, err := run(t, "keygen", "--key", keyPath)
	require.Error(t, err)
	assert.True(t, errors.ErrDuplicate.Is(err), "%+v", err)

	raw, err := ioutil.ReadFile(keyPath)
	require.NoError(t, err)
	assert.Equal(t, "precious", string(raw))
}

func TestKeygenInvalidSeed(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	_, err := run(t, "keygen", "--key", filepath.Join(dir, "key.priv"), "--seed", "not hex")
	require.Error(t, err)
	assert.True(t, errors.ErrInput.Is(err), "%+v", err)
}

func TestReadKeyInvalidLength(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	keyPath := filepath.Join(dir, "key.priv")
	require.NoError(t, ioutil.WriteFile(keyPath, []byte("short"), 0600))

	_, err := readKey(keyPath)
	assert.True(t, errors.ErrInput.Is(err), "%+v", err)
}

func TestValidateGenesis(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	good := filepath.Join(dir, "good.json")
	require.NoError(t, ioutil.WriteFile(good, []byte(`{
		"chain_id": "test",
		"app_state": {
			"cash": [{"address": "0102030405060708090a0b0c0d0e0f1011121314", "coins": ["5 ETH"]}],
			"campaign": [{"owner": "0102030405060708090a0b0c0d0e0f1011121314", "funding_goal": "10 ETH", "duration_days": 7}]
		}
	}`), 0600))
	_, err := run(t, "validate", good)
	assert.NoError(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, ioutil.WriteFile(bad, []byte(`{
		"chain_id": "test",
		"app_state": {
			"campaign": [{"owner": "0102030405060708090a0b0c0d0e0f1011121314", "funding_goal": "10 ETH", "duration_days": 0}]
		}
	}`), 0600))
	_, err = run(t, "validate", bad)
	assert.Error(t, err)
}

func TestMetricsRegistry(t *testing.T) {
	reg, obs, err := metricsRegistry()
	require.NoError(t, err)
	require.NotNil(t, obs)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
