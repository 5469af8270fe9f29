package crowdfundd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/app"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/crypto"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/x/campaign"
	"github.com/iov-one/crowdfund/x/cash"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode
//
// You can set the ticker of the minted coins as the first argument and the
// hex address of the rich account as the second one. Passing a third
// argument opens a campaign owned by that account, with the argument used
// as the funding goal in human format, for example "10 ETH".
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := "ETH"
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsCC(ticker) {
			return nil, errors.Wrapf(errors.ErrCurrency, "invalid ticker %s", ticker)
		}
	}

	var addr crowdfund.Address
	if len(args) > 1 {
		a, err := crowdfund.ParseAddress(args[1])
		if err != nil {
			return nil, err
		}
		addr = a
	} else {
		// if no address provided, auto-generate one
		// and print out the key
		a, keys, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = a
		fmt.Println(keys)
	}

	type campaignOpt struct {
		Owner        crowdfund.Address `json:"owner"`
		FundingGoal  coin.Coin         `json:"funding_goal"`
		DurationDays uint32            `json:"duration_days"`
	}
	campaigns := []campaignOpt{}
	if len(args) > 2 {
		goal, err := coin.ParseHumanFormat(args[2])
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaignOpt{
			Owner:        addr,
			FundingGoal:  goal,
			DurationDays: 30,
		})
	}

	opts := struct {
		Cash     []cash.GenesisAccount `json:"cash"`
		Campaign []campaignOpt         `json:"campaign"`
	}{
		Cash: []cash.GenesisAccount{
			{
				Address: addr,
				Coins:   coin.Coins{coin.NewCoinp(123456789, 0, ticker)},
			},
		},
		Campaign: campaigns,
	}
	return json.MarshalIndent(opts, "", "  ")
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, error) {
	return AppGenerator()(home, logger, debug)
}

// AppGenerator returns an application constructor that notifies given
// observers about every successful campaign operation.
func AppGenerator(observers ...campaign.Observer) func(string, log.Logger, bool) (abci.Application, error) {
	return func(home string, logger log.Logger, debug bool) (abci.Application, error) {
		// db goes in a subdir, but "" -> "" for memdb
		var dbPath string
		if home != "" {
			dbPath = filepath.Join(home, "crowdfund.db")
		}

		stack := Stack(observers...)
		application, err := Application("crowdfundd", stack, TxDecoder, dbPath, debug)
		if err != nil {
			return nil, err
		}
		application.WithInit(Initializers())

		// set the logger and return
		application.WithLogger(logger)
		return application, nil
	}
}

// Initializers returns the genesis initializers of all extensions that
// keep state.
func Initializers() crowdfund.Initializer {
	return app.ChainInitializers(
		&cash.Initializer{},
		&campaign.Initializer{},
	)
}

type output struct {
	Pubkey *crypto.PublicKey  `json:"pub_key"`
	Secret *crypto.PrivateKey `json:"secret"`
}

// GenerateCoinKey returns the address of a public key,
// along with a json representation of the keys.
// You can give coins to this address and
// import the keys in the client to use them
func GenerateCoinKey() (crowdfund.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()
	addr := pubKey.Address()

	out := output{Pubkey: pubKey, Secret: privKey}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", err
	}

	return addr, string(keys), nil
}

