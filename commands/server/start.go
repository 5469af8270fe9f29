package server

import (
	"github.com/iov-one/crowdfund/errors"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagBind  = "bind"
	flagDebug = "debug"
)

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags
type AppGenerator func(home string, logger log.Logger, debug bool) (abci.Application, error)

// StartCmd returns a command that runs the abci server until the process
// receives a termination signal.
func StartCmd(gen AppGenerator, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the abci server",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := cmd.Flags().GetString(flagHome)
			if err != nil {
				return err
			}
			bind, err := cmd.Flags().GetString(flagBind)
			if err != nil {
				return err
			}
			debug, err := cmd.Flags().GetBool(flagDebug)
			if err != nil {
				return err
			}

			app, err := gen(home, logger, debug)
			if err != nil {
				return err
			}
			svr, err := Serve(app, bind, logger)
			if err != nil {
				return err
			}

			cmn.TrapSignal(logger, func() {
				if err := svr.Stop(); err != nil {
					logger.Error("Stopping abci server", "err", err)
				}
			})
			// TrapSignal exits the process.
			select {}
		},
	}
	cmd.Flags().String(flagBind, "tcp://localhost:26658", "address server listens on")
	cmd.Flags().Bool(flagDebug, false, "call stack returned on error")
	return cmd
}

// Serve starts a socket abci server for given application in the
// background.
func Serve(app abci.Application, bind string, logger log.Logger) (cmn.Service, error) {
	logger.Info("Starting ABCI app", "bind", bind)

	svr, err := server.NewServer(bind, "socket", app)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot create listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return nil, errors.Wrapf(errors.ErrState, "cannot start server: %s", err)
	}
	return svr, nil
}
