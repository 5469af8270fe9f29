package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp is the storage half of an abci application. It owns the
// committed state with its check and deliver caches, answers queries and
// loads the genesis. Transaction processing is added by BaseApp.
//
// Failures in the steps that take no user input (Info, InitChain, Commit)
// leave the node in an unknown state and panic.
type StoreApp struct {
	name        string
	logger      log.Logger
	store       *CommitStore
	initializer crowdfund.Initializer
	queryRouter crowdfund.QueryRouter

	// chainID is empty until the genesis is loaded
	chainID string

	// baseContext is valid for the lifetime of the app, blockContext is
	// rebuilt on every BeginBlock.
	baseContext  crowdfund.Context
	blockContext crowdfund.Context
}

// NewStoreApp loads the latest committed state of store. It panics when the
// state cannot be read.
func NewStoreApp(name string, store crowdfund.CommitKVStore,
	queryRouter crowdfund.QueryRouter, baseContext crowdfund.Context) *StoreApp {
	s := &StoreApp{
		name:        name,
		store:       NewCommitStore(store),
		queryRouter: queryRouter,
		baseContext: baseContext,
	}
	s.WithLogger(log.NewNopLogger())

	if chainID := mustLoadChainID(s.DeliverStore()); chainID != "" {
		s.setChainID(chainID)
	}

	latest, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}
	s.blockContext = crowdfund.WithHeight(s.baseContext, latest.Version)
	return s
}

// GetChainID returns the chain id, empty before genesis.
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithInit sets the initializer called with the genesis app state.
func (s *StoreApp) WithInit(init crowdfund.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithLogger sets the logger of the app and of every context it creates.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.logger = logger
	s.baseContext = crowdfund.WithLogger(s.baseContext, logger)
	return s
}

// Logger returns the application logger.
func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// BlockContext returns the context of the block being processed.
func (s *StoreApp) BlockContext() crowdfund.Context {
	return s.blockContext
}

// DeliverStore returns the cache DeliverTx writes to.
func (s *StoreApp) DeliverStore() crowdfund.CacheableKVStore {
	return s.store.DeliverStore()
}

// CheckStore returns the cache CheckTx writes to.
func (s *StoreApp) CheckStore() crowdfund.CacheableKVStore {
	return s.store.CheckStore()
}

func (s *StoreApp) setChainID(chainID string) {
	s.chainID = chainID
	s.baseContext = crowdfund.WithChainID(s.baseContext, chainID)
}

// parseAppState persists the chain id and passes the app state to init. It
// runs once in the life of a chain, restarts load the chain id from the
// store instead.
func (s *StoreApp) parseAppState(data []byte, params crowdfund.GenesisParams, init crowdfund.Initializer) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "genesis already loaded for chain %s", s.chainID)
	}
	if len(data) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app_state missing from genesis")
	}
	var state crowdfund.Options
	if err := json.Unmarshal(data, &state); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	if err := saveChainID(s.DeliverStore(), params.ChainID); err != nil {
		return err
	}
	s.setChainID(params.ChainID)

	if init == nil {
		return nil
	}
	return init.FromGenesis(state, params, s.DeliverStore())
}

// Info returns the name of the app with the height and hash of the last
// commit.
func (s *StoreApp) Info(req abci.RequestInfo) abci.ResponseInfo {
	latest, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}
	s.logger.Info("Info synced", "height", latest.Version, "hash", fmt.Sprintf("%X", latest.Hash))
	return abci.ResponseInfo{
		Data:             s.name,
		LastBlockHeight:  latest.Version,
		LastBlockAppHash: latest.Hash,
	}
}

// SetOption is not supported.
func (s *StoreApp) SetOption(res abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "Not Implemented"}
}

// Query reads the last committed state. The path selects a registered
// handler, "/" for raw keys, "/<bucket>" or "/<bucket>/<index>", optionally
// followed by "?prefix". Key and Value of the response are both encoded
// ResultSets of the same length.
//
// Only the latest height can be queried.
func (s *StoreApp) Query(req abci.RequestQuery) abci.ResponseQuery {
	path, mod := splitPath(req.Path)
	handler := s.queryRouter.Handler(path)
	if handler == nil {
		return queryError(errors.Wrapf(errors.ErrNotFound, "unexpected query path: %v", req.Path))
	}

	latest, err := s.store.CommitInfo()
	if err != nil {
		return queryError(err)
	}
	if req.Height != 0 && req.Height != latest.Version {
		return queryError(errors.Wrapf(errors.ErrInput, "only height %d can be queried", latest.Version))
	}

	models, err := handler.Query(s.store.ReadStore(), mod, req.Data)
	if err != nil {
		return queryError(err)
	}
	res := abci.ResponseQuery{Height: latest.Version}
	if res.Key, err = ResultsFromKeys(models).Marshal(); err != nil {
		return queryError(err)
	}
	if res.Value, err = ResultsFromValues(models).Marshal(); err != nil {
		return queryError(err)
	}
	return res
}

// splitPath separates the handler path from the query mod that follows "?".
func splitPath(path string) (string, string) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}

func queryError(err error) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, false)
	return abci.ResponseQuery{Code: code, Log: log}
}

// Commit persists the deliver cache and returns the new app hash.
func (s *StoreApp) Commit() abci.ResponseCommit {
	id, err := s.store.Commit()
	if err != nil {
		panic(err)
	}
	s.logger.Debug("Commit synced", "height", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return abci.ResponseCommit{Data: id.Hash}
}

// InitChain loads the genesis app state.
func (s *StoreApp) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	params := crowdfund.GenesisParams{
		ChainID: req.ChainId,
		Time:    crowdfund.AsUnixTime(req.Time),
	}
	if err := s.parseAppState(req.AppStateBytes, params, s.initializer); err != nil {
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock sets the height and the time of the block context. All
// transactions of the block read the clock from this context.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	ctx := crowdfund.WithHeight(s.baseContext, req.Header.GetHeight())
	s.blockContext = crowdfund.WithBlockTime(ctx, req.Header.GetTime())
	return abci.ResponseBeginBlock{}
}

// EndBlock does nothing.
func (s *StoreApp) EndBlock(_ abci.RequestEndBlock) abci.ResponseEndBlock {
	return abci.ResponseEndBlock{}
}
