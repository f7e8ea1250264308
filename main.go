package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("querychat failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "querychat",
		Short:         "Channel-based chat over a natural-language database query service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", os.Getenv("QUERYCHAT_CONFIG"), "path to config.json")

	root.AddCommand(newServeCmd(&cfgPath), newBackendCmd(&cfgPath), newChatCmd(&cfgPath))
	return root
}
