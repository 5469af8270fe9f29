package server

import (
	"encoding/json"
	"io/ioutil"
	"time"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/store"
)

// ValidateGenesis runs the initializer against the app_state of every given
// genesis file, discarding the result.
func ValidateGenesis(ini crowdfund.Initializer, genesisPaths []string) error {
	for _, path := range genesisPaths {
		if err := validateGenesis(ini, path); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

func validateGenesis(ini crowdfund.Initializer, genesisPath string) error {
	b, err := ioutil.ReadFile(genesisPath)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot read genesis file: %s", err)
	}

	var genesis struct {
		ChainID     string            `json:"chain_id"`
		GenesisTime time.Time         `json:"genesis_time"`
		State       crowdfund.Options `json:"app_state"`
	}
	if err := json.Unmarshal(b, &genesis); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot JSON deserialize genesis: %s", err)
	}

	// Use in memory store because we want to discard the result.
	db := store.MemStore()

	params := crowdfund.GenesisParams{ChainID: genesis.ChainID}
	if !genesis.GenesisTime.IsZero() {
		params.Time = crowdfund.AsUnixTime(genesis.GenesisTime)
	}
	if err := ini.FromGenesis(genesis.State, params, db); err != nil {
		return errors.Wrap(err, "cannot initialize from genesis")
	}
	return nil
}
