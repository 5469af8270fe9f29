package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/iov-one/crowdfund/crypto"
	"github.com/iov-one/crowdfund/errors"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ed25519"
)

const (
	flagKey  = "key"
	flagSeed = "seed"
	flagPath = "path"

	// bech32Prefix is the human readable part of the printed addresses.
	bech32Prefix = "cf"
	seedSize     = 32
)

func defaultKeyPath() string {
	return env("CROWDFUND_PRIV_KEY", os.ExpandEnv("$HOME/.crowdfund.priv.key"))
}

func keygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new private key",
		Long: `Generate a new private key.

The key is derived from a seed using the given SLIP-10 path. When no seed is
provided a random one is created and printed out, so that the key can be
recovered later. This command fails if the private key file already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keyPath, _ := cmd.Flags().GetString(flagKey)
			seedHex, _ := cmd.Flags().GetString(flagSeed)
			path, _ := cmd.Flags().GetString(flagPath)

			var seed []byte
			if seedHex == "" {
				seed = make([]byte, seedSize)
				if _, err := rand.Read(seed); err != nil {
					return errors.Wrapf(errors.ErrState, "cannot read random seed: %s", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seed: %x\n", seed)
			} else {
				s, err := hex.DecodeString(seedHex)
				if err != nil {
					return errors.Wrapf(errors.ErrInput, "seed must be hex encoded: %s", err)
				}
				seed = s
			}

			key, err := crypto.DeriveKey(seed, path)
			if err != nil {
				return err
			}
			return writeKey(keyPath, key)
		},
	}
	cmd.Flags().String(flagKey, defaultKeyPath(), "path to the private key file, CROWDFUND_PRIV_KEY environment variable can be used to set it")
	cmd.Flags().String(flagSeed, "", "hex encoded seed to derive the key from, random if empty")
	cmd.Flags().String(flagPath, crypto.DefaultDerivationPath, "SLIP-10 derivation path")
	return cmd
}

func keyaddrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyaddr",
		Short: "Print out the address associated with your private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keyPath, _ := cmd.Flags().GetString(flagKey)
			key, err := readKey(keyPath)
			if err != nil {
				return err
			}
			addr := key.PublicKey().Address()
			b32, err := addr.Bech32(bech32Prefix)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", addr, b32)
			return err
		},
	}
	cmd.Flags().String(flagKey, defaultKeyPath(), "path to the private key file, CROWDFUND_PRIV_KEY environment variable can be used to set it")
	return cmd
}

// writeKey stores the raw private key bytes. An existing file is never
// overwritten.
func writeKey(path string, key *crypto.PrivateKey) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		// Do not allow to overwrite already existing private key. User
		// must manually delete it first.
		return errors.Wrapf(errors.ErrDuplicate, "private key file %q already exists, delete this file and try again", path)
	}

	fd, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fd.Write(key.Ed25519); err != nil {
		return errors.Wrapf(errors.ErrState, "cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return errors.Wrapf(errors.ErrState, "cannot close private key file: %s", err)
	}
	return nil
}

func readKey(path string) (*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot read private key file: %s", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "invalid private key length: %d", len(raw))
	}
	return &crypto.PrivateKey{Ed25519: raw}, nil
}
