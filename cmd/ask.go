package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/DachengChen/querymaster/chat"
	"github.com/DachengChen/querymaster/i18n"
	"github.com/DachengChen/querymaster/render"
)

var (
	askPreset  string
	askFormat  string
	askShowSQL bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Example: `  querymaster ask "What are the 5 most profitable brands?"
  querymaster ask --preset revenue-growth --format markdown
  querymaster ask --preset F1 --show-sql`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" && askPreset == "" {
			return fmt.Errorf("a question or --preset is required")
		}

		renderer, err := pickRenderer(askFormat, askShowSQL)
		if err != nil {
			return err
		}

		rt, err := setup(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer rt.Close()

		if askPreset != "" {
			p, ok := i18n.FindPreset(rt.lang, askPreset)
			if !ok {
				return fmt.Errorf("unknown preset %q (see `querymaster presets`)", askPreset)
			}
			question = p.Prompt
		}

		session := chat.NewSession(rt.dispatcher, rt.lang, rt.cfg.History.RowLimit)

		var spinner *pterm.SpinnerPrinter
		if askFormat != "json" {
			spinner, _ = pterm.DefaultSpinner.WithWriter(cmd.ErrOrStderr()).Start(i18n.For(rt.lang).Thinking)
		}
		res := session.Ask(cmd.Context(), question)
		if spinner != nil {
			_ = spinner.Stop()
		}

		view := render.Build(res.Envelope, rt.renderOptions())
		if renderer == nil {
			return writeJSON(cmd.OutOrStdout(), res, view)
		}
		if err := render.Safe(renderer, cmd.OutOrStdout(), view); err != nil {
			rt.log.Warn("renderer failed, falling back to markdown", "error", err)
			return render.Markdown{ShowSQL: askShowSQL}.Render(cmd.OutOrStdout(), view)
		}
		return nil
	},
}

// pickRenderer maps --format to a renderer. JSON output has no renderer.
func pickRenderer(format string, showSQL bool) (render.Renderer, error) {
	switch strings.ToLower(format) {
	case "", "pterm":
		return render.PTerm{ShowSQL: showSQL, Width: pterm.GetTerminalWidth()}, nil
	case "markdown", "md":
		return render.Markdown{ShowSQL: showSQL}, nil
	case "json":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown format %q (use pterm, markdown or json)", format)
	}
}

func writeJSON(w io.Writer, res chat.Result, view render.View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Envelope any         `json:"envelope"`
		View     render.View `json:"view"`
		Cached   bool        `json:"cached"`
	}{res.Envelope, view, res.Cached})
}

func init() {
	askCmd.Flags().StringVarP(&askPreset, "preset", "p", "", "ask a preset question by id or key (see `querymaster presets`)")
	askCmd.Flags().StringVarP(&askFormat, "format", "f", "pterm", "output format: pterm, markdown, json")
	askCmd.Flags().BoolVar(&askShowSQL, "show-sql", false, "print the generated SQL")
	rootCmd.AddCommand(askCmd)
}
