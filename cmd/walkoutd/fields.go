package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/claritydental/walkout/internal/cli"
	"github.com/claritydental/walkout/internal/config"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the field option sets the engine validates against",
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

		activeOnly, _ := cmd.Flags().GetBool("active")
		sets, err := stack.fields.List(cmd.Context(), activeOnly)
		if err != nil {
			return err
		}

		return cli.NewRenderer(os.Stdout).Markdown(cli.FieldSetsMarkdown(sets))
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
	fieldsCmd.Flags().Bool("active", false, "Only show active options")
}
