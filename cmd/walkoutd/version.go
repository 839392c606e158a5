package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claritydental/walkout"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of walkoutd",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("walkoutd version %s\n", walkout.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
