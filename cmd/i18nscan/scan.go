package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/phyten/i18nscan/internal/engine"
	"github.com/phyten/i18nscan/internal/output"
	"github.com/phyten/i18nscan/internal/progress"
)

const maxReportedErrors = 20

func (a *app) scanCmd() *cobra.Command {
	var (
		forceProgress bool
		noProgress    bool
		exitCode      bool
		summary       bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the repository and report untranslated text",
		Long: `Scan lists files with git ls-files (or walks the directory outside git),
runs detection over a worker pool and prints one row per untranslated span.`,
		Example: `  i18nscan scan
  i18nscan scan -p src --path-regex '\.vue$' -o json
  i18nscan scan --fields location,kind,text,url --with-url --sort file,-line`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := a.options()
			if err != nil {
				return err
			}
			sel, err := output.ResolveFields(a.ui.Fields, opts.WithURL)
			if err != nil {
				return err
			}
			opts.WithURL = opts.WithURL || sel.NeedURL
			spec, err := output.ParseSortSpec(a.ui.Sort)
			if err != nil {
				return err
			}
			if progress.ShouldShowProgress(forceProgress, noProgress) {
				opts.Progress = true
				opts.ProgressObserver = progress.NewAutoObserver(a.stderr)
			}

			res, err := engine.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			output.ApplySort(res.Items, spec)

			term := a.terminal()
			style := output.TableStyle{Color: term.Color, Scheme: term.Scheme, Profile: term.Profile}
			if err := output.Write(a.stdout, a.engine.Output, res, sel, style); err != nil {
				return err
			}
			reportErrors(a.stderr, res)
			if summary {
				fmt.Fprintln(a.stderr, output.Summary(res))
			}
			if exitCode && res.Total > 0 {
				return exitError{code: 1}
			}
			return nil
		},
	}
	fs := cmd.Flags()
	addEngineFlags(fs)
	addDetectFlags(fs)
	fs.StringP("output", "o", "", "table|tsv|json|ndjson|csv|markdown (default: table)")
	fs.String("fields", "", "comma separated columns, e.g. location,kind,text (default: location,kind,text)")
	fs.String("sort", "", "sort keys, e.g. file,-line (keys: file line column kind grammar text length)")
	fs.BoolVar(&forceProgress, "progress", false, "force progress output even when piped")
	fs.BoolVar(&noProgress, "no-progress", false, "disable progress output")
	fs.BoolVar(&exitCode, "exit-code", false, "exit with status 1 when untranslated text is found")
	fs.BoolVar(&summary, "summary", false, "print a one line summary to stderr")
	return cmd
}

// reportErrors prints per-file failures to stderr, capped so that a broken
// checkout does not drown the report.
func reportErrors(w io.Writer, res *engine.Result) {
	if res == nil || res.ErrorCount == 0 {
		return
	}
	fmt.Fprintf(w, "i18nscan: %d file(s) could not be scanned\n", res.ErrorCount)
	for i, e := range res.Errors {
		if i == maxReportedErrors {
			fmt.Fprintf(w, "  ... and %d more\n", res.ErrorCount-maxReportedErrors)
			break
		}
		loc := e.File
		if loc == "" {
			loc = "-"
		}
		if e.Line > 0 {
			loc = fmt.Sprintf("%s:%d", loc, e.Line)
		}
		fmt.Fprintf(w, "  %s [%s] %s\n", loc, e.Stage, e.Message)
	}
}
