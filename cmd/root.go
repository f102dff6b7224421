package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"example.com/backstage/services/supplychain/config"
)

var (
	cfgPath string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "supplychain-service",
	Short: "Supply chain event tracking service using event sourcing",
	Long:  `A service for tracking items through the supply chain pipeline, deriving stage status and analytics from an append-only event log`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config search path (default is the working directory)")
}

func initConfig() {
	var err error

	cfg, err = config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
}
