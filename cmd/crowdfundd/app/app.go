/*
Package crowdfundd links together all the various components
to construct the crowdfund daemon application.
*/
package crowdfundd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/app"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/orm"
	"github.com/iov-one/crowdfund/store/iavl"
	"github.com/iov-one/crowdfund/x"
	"github.com/iov-one/crowdfund/x/campaign"
	"github.com/iov-one/crowdfund/x/cash"
	"github.com/iov-one/crowdfund/x/sigs"
	"github.com/iov-one/crowdfund/x/utils"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, and recovery
func Chain(authFn x.Authenticator) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewActionTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, bad tx will increment nonce
		// even if the message fails
		utils.NewSavepoint().OnDeliver(),
	)
}

// Controller returns the campaign controller moving funds through the cash
// wallets and notifying given observers.
func Controller(observers ...campaign.Observer) *campaign.Controller {
	return campaign.NewController(cash.NewController(cash.NewBucket()), observers...)
}

// Router returns a router dispatching to the sigs, cash and campaign
// handlers.
func Router(authFn x.Authenticator, ctrl *campaign.Controller) *app.Router {
	r := app.NewRouter()
	sigs.RegisterRoutes(r, authFn)
	cash.RegisterRoutes(r, authFn, cash.NewController(cash.NewBucket()))
	campaign.RegisterRoutes(r, authFn, ctrl)
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/wallets", "/auth", "/campaigns", "/contributions"
// and "/"
func QueryRouter() crowdfund.QueryRouter {
	r := crowdfund.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		sigs.RegisterQuery,
		campaign.RegisterQuery,
		orm.RegisterQuery,
	)
	return r
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack(observers ...campaign.Observer) crowdfund.Handler {
	authFn := Authenticator()
	return Chain(authFn).
		WithHandler(Router(authFn, Controller(observers...)))
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h crowdfund.Handler,
	tx crowdfund.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {

	ctx := context.Background()
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	store := app.NewStoreApp(name, kv, QueryRouter(), ctx)
	base := app.NewBaseApp(store, tx, h, debug)
	return base, nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (crowdfund.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}

	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	kv, err := iavl.OpenCommitStore(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return kv, nil
}
