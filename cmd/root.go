// Package cmd contains all Cobra commands for QueryMaster.
//
// Design decision: the root command launches the chat TUI directly.
// Running `querymaster` with no arguments starts the interactive UI;
// `ask` and `serve` reuse the same dispatcher for scripts and HTTP clients.
package cmd

import (
	"errors"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/DachengChen/querymaster/config"
	"github.com/DachengChen/querymaster/tui"
)

var version = "0.1.0"

// Global flag values. Empty means "use the configuration".
var (
	flagProvider  string
	flagWarehouse string
	flagLang      string
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "querymaster",
	Short: "Ask business questions about your data in plain language",
	Long: `QueryMaster is a conversational analytics assistant:
  • Turns questions into SQL with Gemini, OpenAI, Groq, Cerebras, Anthropic or Ollama
  • Runs the SQL on BigQuery, PostgreSQL, ClickHouse or DuckDB
  • Shows the answer as a key metric, a table and a chart

Run 'querymaster' to start the chat UI, or 'querymaster ask' for one-off questions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
	// Running with no subcommand launches the TUI.
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer rt.Close()

		return tui.Start(rt.dispatcher, tui.Options{
			Lang:      rt.lang,
			RowLimit:  rt.cfg.History.RowLimit,
			Render:    rt.renderOptions(),
			Provider:  rt.provider.Name(),
			Warehouse: string(rt.warehouse.Dialect()),
		})
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagProvider, "provider", "", "AI provider: gemini, openai, groq, cerebras, anthropic, ollama, placeholder")
	pf.StringVar(&flagWarehouse, "warehouse", "", "warehouse driver: bigquery, postgres, clickhouse, duckdb")
	pf.StringVar(&flagLang, "lang", "", "answer language: en, pt")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// Execute runs the root command and reports failures. Missing credentials
// get a dedicated message.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	var authErr *config.AuthenticationError
	if errors.As(err, &authErr) {
		pterm.Error.WithWriter(os.Stderr).Printfln("Missing credentials for %s: %s", authErr.Component, authErr.Reason)
	} else {
		pterm.Error.WithWriter(os.Stderr).Println(err)
	}
	return err
}
