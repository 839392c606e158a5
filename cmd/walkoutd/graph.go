package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claritydental/walkout/internal/config"
	"github.com/claritydental/walkout/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the status lifecycle as a Mermaid diagram",
	Long: `Prints the walkout status machine in Mermaid flowchart syntax.
With --appointment the current status of that walkout is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var overlay *graph.Overlay

		if appointmentID, _ := cmd.Flags().GetString("appointment"); appointmentID != "" {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			stack, err := buildStack(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = stack.close() }()

			w, err := stack.store.GetByAppointment(cmd.Context(), appointmentID)
			if err != nil {
				return err
			}
			overlay = &graph.Overlay{Current: w.Status}
		}

		fmt.Print(graph.GenerateMermaid(overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("appointment", "a", "", "Highlight the current status of this appointment's walkout")
}
