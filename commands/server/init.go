package server

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"

	"github.com/iov-one/crowdfund/errors"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	appStateKey = "app_state"
	flagHome    = "home"
)

// GenOptions can parse command-line and flag to
// generate default app_state for the genesis file.
// This is application-specific
type GenOptions func(args []string) (json.RawMessage, error)

// InitCmd returns a command that adds the app_state to a genesis file
// created by `tendermint init` in the same home directory. Home directory
// is read from the "home" flag.
func InitCmd(gen GenOptions, logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "init [args...]",
		Short: "Initialize app_state in the tendermint genesis file",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := cmd.Flags().GetString(flagHome)
			if err != nil {
				return err
			}
			return InitGenesis(gen, logger, home, args)
		},
	}
}

// InitGenesis generates the application state and writes it into the
// genesis file found under home directory. Existing state is never
// overwritten.
func InitGenesis(gen GenOptions, logger log.Logger, home string, args []string) error {
	genFile := filepath.Join(home, "config", "genesis.json")

	options, err := gen(args)
	if err != nil {
		return err
	}
	if err := addGenesisOptions(genFile, options); err != nil {
		return err
	}
	logger.Info("App state written", "path", genFile)
	return nil
}

// genesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type genesisDoc map[string]json.RawMessage

func addGenesisOptions(filename string, options json.RawMessage) error {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot read genesis, run `tendermint init` first: %s", err)
	}

	var doc genesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return errors.Wrapf(errors.ErrInput, "invalid genesis file: %s", err)
	}

	if state, ok := doc[appStateKey]; ok && len(state) > 0 && string(state) != "null" && string(state) != "{}" {
		return errors.Wrap(errors.ErrState, "genesis file already contains an app_state")
	}

	doc[appStateKey] = options
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return ioutil.WriteFile(filename, out, 0600)
}
