package app

import (
	"encoding/json"
	"io/ioutil"
	"time"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// Genesis file format, designed to be overlayed with tendermint genesis
type Genesis struct {
	ChainID     string            `json:"chain_id"`
	GenesisTime time.Time         `json:"genesis_time"`
	AppState    crowdfund.Options `json:"app_state"`
}

// loadGenesis tries to load a given file into a Genesis struct
func loadGenesis(filePath string) (Genesis, error) {
	var gen Genesis

	bytes, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "loading genesis file: %s", err)
	}

	if err := json.Unmarshal(bytes, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "unmarshaling genesis file: %s", err)
	}
	return gen, nil
}

// LoadGenesis will read the genesis file and call the initializer. It
// replaces InitChain when the application is run without a tendermint node,
// for example in tests.
func (s *StoreApp) LoadGenesis(filePath string, init crowdfund.Initializer) error {
	gen, err := loadGenesis(filePath)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(gen.AppState)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	params := crowdfund.GenesisParams{
		ChainID: gen.ChainID,
		Time:    crowdfund.AsUnixTime(gen.GenesisTime),
	}
	return s.parseAppState(raw, params, init)
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...crowdfund.Initializer) crowdfund.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []crowdfund.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts crowdfund.Options, params crowdfund.GenesisParams, kv crowdfund.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, params, kv); err != nil {
			return err
		}
	}
	return nil
}
