package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phyten/i18nscan/internal/decorate"
	"github.com/phyten/i18nscan/internal/model"
)

type checkResult struct {
	File    string        `json:"file"`
	Matches []model.Match `json:"matches"`
	Error   string        `json:"error,omitempty"`
}

func (a *app) checkCmd() *cobra.Command {
	var (
		stdinName string
		format    string
		context   int
		exitCode  bool
	)
	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Detect untranslated text in single files or stdin",
		Long: `Check runs detection on the given files and prints the source with the
untranslated spans highlighted. With no file, or "-", the source is read
from stdin and --stdin-filename picks the grammar.`,
		Example: `  i18nscan check src/App.vue
  cat page.html | i18nscan check --stdin-filename page.html --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid --format: %s", format)
			}
			det, err := a.detector()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"-"}
			}
			settings := a.highlight.Viper()
			term := a.terminal()
			render := decorate.RenderOptions{
				Color:   term.Color,
				Profile: term.Profile,
				Context: context,
			}

			var results []checkResult
			found, failed := 0, 0
			for _, arg := range args {
				name := arg
				var code []byte
				if arg == "-" {
					name = stdinName
					code, err = io.ReadAll(a.stdin)
				} else {
					code, err = os.ReadFile(arg)
				}
				if err != nil {
					return err
				}
				matches, err := det.Detect(cmd.Context(), code, name)
				if err != nil {
					failed++
					a.logger.Error().Err(err).Str("file", name).Msg("detection failed")
					results = append(results, checkResult{File: name, Matches: []model.Match{}, Error: err.Error()})
					continue
				}
				found += len(matches)
				if matches == nil {
					matches = []model.Match{}
				}
				results = append(results, checkResult{File: name, Matches: matches})
				if format == "json" {
					continue
				}
				view := decorate.NewView(code)
				if _, err := decorate.Apply(view, matches, nil, settings); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "== %s (%d untranslated)\n", name, len(matches))
				if err := view.Render(a.stdout, render); err != nil {
					return err
				}
			}

			if format == "json" {
				enc := json.NewEncoder(a.stdout)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed", failed, len(args))
			}
			if exitCode && found > 0 {
				return exitError{code: 1}
			}
			return nil
		},
	}
	fs := cmd.Flags()
	addDetectFlags(fs)
	addHighlightFlags(fs)
	fs.StringVar(&stdinName, "stdin-filename", "stdin.tsx", "file name used to pick the grammar for stdin")
	fs.StringVar(&format, "format", "text", "text|json")
	fs.IntVarP(&context, "context", "C", 2, "lines of context around marks (-1 = whole file)")
	fs.BoolVar(&exitCode, "exit-code", false, "exit with status 1 when untranslated text is found")
	return cmd
}
