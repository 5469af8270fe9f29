package main

import (
	"net/http"

	crowdfundd "github.com/iov-one/crowdfund/cmd/crowdfundd/app"
	"github.com/iov-one/crowdfund/commands/server"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/x/campaign"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const flagMetrics = "metrics"

func initCmd(logger log.Logger) *cobra.Command {
	cmd := server.InitCmd(crowdfundd.GenInitOptions, logger)
	cmd.Use = "init [ticker] [address] [campaign goal]"
	cmd.Long = `Add the application state to the genesis file created by tendermint init.

A rich account holding the given ticker is created. When no address is given,
a new key is generated and printed out. Passing a goal, for example "10 ETH",
opens a campaign owned by the rich account.`
	return cmd
}

// startCmd runs the ABCI server. When a metrics address is given, campaign
// activity is exposed in the prometheus format under /metrics.
func startCmd(logger log.Logger) *cobra.Command {
	var metricsAddr string
	gen := func(home string, logger log.Logger, debug bool) (abci.Application, error) {
		var observers []campaign.Observer
		if metricsAddr != "" {
			obs, err := serveMetrics(metricsAddr, logger)
			if err != nil {
				return nil, err
			}
			observers = append(observers, obs)
		}
		return crowdfundd.AppGenerator(observers...)(home, logger, debug)
	}
	cmd := server.StartCmd(gen, logger)
	cmd.Flags().StringVar(&metricsAddr, flagMetrics, "", "address the prometheus metrics are served on, for example :9102. Disabled if empty")
	return cmd
}

// serveMetrics registers a campaign observer within a new registry and
// serves it in the background.
func serveMetrics(addr string, logger log.Logger) (*campaign.MetricsObserver, error) {
	reg, obs, err := metricsRegistry()
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	logger.Info("Serving metrics", "addr", addr)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics server stopped", "err", err)
		}
	}()
	return obs, nil
}

func metricsRegistry() (*prometheus.Registry, *campaign.MetricsObserver, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(prometheus.NewGoCollector()); err != nil {
		return nil, nil, errors.Wrapf(errors.ErrState, "go collector: %s", err)
	}
	obs := campaign.NewMetricsObserver()
	if err := obs.Register(reg); err != nil {
		return nil, nil, err
	}
	return reg, obs, nil
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <genesis-file>...",
		Short: "Check that the app_state of genesis files can be loaded",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.ValidateGenesis(crowdfundd.Initializers(), args)
		},
	}
}
