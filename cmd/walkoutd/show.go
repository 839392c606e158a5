package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/claritydental/walkout/internal/cli"
	"github.com/claritydental/walkout/internal/config"
	"github.com/claritydental/walkout/pkg/domain"
)

var showCmd = &cobra.Command{
	Use:   "show <appointment-id>",
	Short: "Show the walkout attached to an appointment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		w, err := stack.store.GetByAppointment(cmd.Context(), args[0])
		if errors.Is(err, domain.ErrWalkoutNotFound) {
			return fmt.Errorf("no walkout for appointment %s", args[0])
		}
		if err != nil {
			return err
		}

		r := cli.NewRenderer(os.Stdout)
		fmt.Printf("Status: %s\n\n", r.StatusLine(w.Status))
		return r.Markdown(cli.WalkoutMarkdown(w, stack.registry))
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
