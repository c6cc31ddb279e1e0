package main

import (
	"os"

	"github.com/go-i2p/logger"
	"github.com/spf13/cobra"

	"github.com/go-plume/go-plume/lib/config"
)

var log = logger.GetGoI2PLogger()

var rootCmd = &cobra.Command{
	Use:   "plume",
	Short: "Signed-event identity and relay pool client",
	Long: `plume holds a signing identity and talks to a set of relays over
websockets: it publishes signed events and follows subscriptions across
every relay in its pool.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&config.CfgFile, "config", "",
		"config file (default $HOME/.go-plume/config.yaml)")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
