package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/DachengChen/querymaster/i18n"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the preset questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		lang := i18n.Parse(flagLang)
		if flagLang == "" {
			if cfg, err := loadConfig(); err == nil {
				lang = i18n.Parse(cfg.Display.Language)
			}
		}

		data := pterm.TableData{{"Key", "ID", "Question"}}
		for _, p := range i18n.Presets(lang) {
			data = append(data, []string{p.Key, p.ID, p.Prompt})
		}
		return pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
