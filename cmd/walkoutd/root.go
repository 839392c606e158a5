package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "walkoutd",
	Short: "Walkout is the billing reconciliation service for dental offices",
	Long: `Walkout tracks the lifecycle of an appointment's billing walkout:
the office submission on the day of service, the LC3 reconciliation
afterwards, holds and their escalation, and the final audit.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the service config file (YAML or JSON)")
}
