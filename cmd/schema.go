package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DachengChen/querymaster/ai"
)

var schemaFull bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema the model is given for the configured warehouse",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dialect, dataset := cfg.Warehouse.Driver, cfg.Warehouse.BigQuery.Dataset

		out := ai.Schema(dialect, dataset)
		if schemaFull {
			out = ai.SystemInstruction(dialect, dataset)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaFull, "instruction", false, "print the complete system instruction")
	rootCmd.AddCommand(schemaCmd)
}
