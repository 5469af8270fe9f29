package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/crowdfund"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagHome     = "home"
	flagLogLevel = "log-level"
)

func main() {
	logger := &levelLogger{Logger: log.NewTMLogger(log.NewSyncWriter(os.Stdout))}
	if err := rootCmd(logger).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

// rootCmd returns the whole command tree. Logger level is configured once
// the flags are parsed.
func rootCmd(logger *levelLogger) *cobra.Command {
	root := &cobra.Command{
		Use:           "crowdfundd",
		Short:         "Escrowed, time-boxed crowdfunding campaigns on tendermint",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := cmd.Flags().GetString(flagLogLevel)
			if err != nil {
				return err
			}
			return logger.setLevel(lvl)
		},
	}
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".crowdfund")
	root.PersistentFlags().String(flagHome, env("CROWDFUND_HOME", defaultHome), "directory to store files under")
	root.PersistentFlags().String(flagLogLevel, "info", "log level, one of debug, info, error or none")

	root.AddCommand(
		initCmd(logger),
		startCmd(logger),
		validateCmd(),
		versionCmd(),
		keygenCmd(),
		keyaddrCmd(),
		txCmd(),
		queryCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the app version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), crowdfund.Version())
			return err
		},
	}
}

// levelLogger delegates to a logger that can be filtered after it was handed
// out to the commands.
type levelLogger struct {
	log.Logger
	base log.Logger
}

func (l *levelLogger) setLevel(lvl string) error {
	if l.base == nil {
		l.base = l.Logger
	}
	opt, err := log.AllowLevel(lvl)
	if err != nil {
		return err
	}
	l.Logger = log.NewFilter(l.base, opt).With("module", "crowdfund")
	return nil
}

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}
