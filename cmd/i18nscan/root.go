package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/phyten/i18nscan/internal/config"
	"github.com/phyten/i18nscan/internal/detect"
	"github.com/phyten/i18nscan/internal/engine"
	engineopts "github.com/phyten/i18nscan/internal/engine/opts"
	"github.com/phyten/i18nscan/internal/logging"
	"github.com/phyten/i18nscan/internal/termcolor"
	"github.com/phyten/i18nscan/internal/tracing"
)

// app holds what every subcommand shares: the merged configuration, the
// logger and the tracer. It is rebuilt by setup on each invocation.
type app struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	getenv  func(string) string
	environ func() []string

	cfgFile      string
	repo         string
	trace        string
	otlpEndpoint string

	configPath string
	engine     config.EngineSettings
	ui         config.UISettings
	highlight  config.HighlightSettings
	logger     zerolog.Logger
	tracing    *tracing.Provider
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		getenv:  os.Getenv,
		environ: os.Environ,
		logger:  zerolog.Nop(),
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "i18nscan",
		Short: "Find untranslated text in source files",
		Long: `i18nscan reports string literals, JSX text, markup text and attribute
values that still contain Chinese script and therefore still need translation.

Configuration is layered: config file (.i18nscan.yaml searched upward from the
repository, then $XDG_CONFIG_HOME/i18nscan/config.yaml, then ~/.i18nscan.yaml),
.env, I18NSCAN_* environment variables and finally command line flags.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: searched upward from the repository)")
	pf.StringVar(&a.repo, "repo", "", "repository root (default: current dir)")
	pf.String("log-level", "", "debug|info|warn|error (default: warn)")
	pf.String("color", "", "auto|always|never (default: auto)")
	pf.StringVar(&a.trace, "trace", "", "trace exporter: none|stdout|otlp")
	pf.StringVar(&a.otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint (default: localhost:4317)")

	root.AddCommand(
		a.scanCmd(),
		a.checkCmd(),
		a.watchCmd(),
		a.serveCmd(),
	)
	return root
}

// setup merges defaults, the config file, .env, the environment and the
// flags that were explicitly set, in that order.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	repo := strings.TrimSpace(a.repo)
	if repo == "" {
		repo = "."
	}
	dotenvErr := config.LoadDotenv(repo)

	explicit := a.cfgFile
	if explicit == "" {
		explicit = a.getenv("I18NSCAN_CONFIG")
	}
	path, source, err := config.Find(repo, explicit, a.getenv("XDG_CONFIG_HOME"), a.getenv("HOME"))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	fileCfg, err := config.Load(path)
	if err != nil {
		return err
	}
	envCfg, err := config.FromEnv(a.getenv)
	if err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	flagCfg := flagLayer(cmd.Flags())

	base := config.EngineSettingsFromOptions(engineopts.Defaults(repo))
	a.engine, err = config.NormalizeEngine(config.MergeEngine(base, fileCfg.Engine, envCfg.Engine, flagCfg.Engine))
	if err != nil {
		return err
	}
	a.ui, err = config.NormalizeUI(config.MergeUI(config.DefaultUISettings(), fileCfg.UI, envCfg.UI, flagCfg.UI))
	if err != nil {
		return err
	}
	a.highlight, err = config.NormalizeHighlight(config.MergeHighlight(config.DefaultHighlightSettings(), fileCfg.Highlight, envCfg.Highlight, flagCfg.Highlight))
	if err != nil {
		return err
	}
	a.configPath = path

	a.logger, err = logging.New(a.stderr, a.ui.LogLevel, true)
	if err != nil {
		return err
	}
	if dotenvErr != nil {
		a.logger.Warn().Err(dotenvErr).Msg("loading .env failed")
	}
	if path != "" {
		a.logger.Debug().Str("config", path).Str("source", source).Msg("config loaded")
	}

	a.tracing, err = tracing.NewProvider(tracing.Config{
		Exporter:     a.trace,
		OTLPEndpoint: a.otlpEndpoint,
		Writer:       a.stderr,
	})
	return err
}

func (a *app) close(ctx context.Context) error {
	if a.tracing == nil {
		return nil
	}
	return a.tracing.Shutdown(ctx)
}

// options converts the merged engine settings into validated scan options.
func (a *app) options() (engine.Options, error) {
	opts := engineopts.Defaults(a.engine.Repo)
	if err := a.engine.ApplyToOptions(&opts); err != nil {
		return opts, err
	}
	if err := engineopts.NormalizeAndValidate(&opts); err != nil {
		return opts, err
	}
	opts.Logger = &a.logger
	opts.Tracer = a.tracing.Tracer()
	return opts, nil
}

func (a *app) detector() (*engine.Detector, error) {
	exts, err := engineopts.ParseExtensions(a.engine.Extensions)
	if err != nil {
		return nil, err
	}
	return &engine.Detector{
		Table:  detect.NewTable(exts),
		Strict: a.engine.Strict,
		Logger: &a.logger,
		Tracer: a.tracing.Tracer(),
	}, nil
}

// terminal resolves --color and the color profile against stdout.
func (a *app) terminal() termcolor.Terminal {
	mode, err := termcolor.ParseMode(a.engine.Color)
	if err != nil {
		mode = termcolor.ModeNever
	}
	f, _ := a.stdout.(*os.File)
	return termcolor.Probe(mode, f, termcolor.EnvMap(a.environ()))
}

func addEngineFlags(fs *pflag.FlagSet) {
	fs.StringSliceP("path", "p", nil, "limit to pathspecs (repeatable, comma separated)")
	fs.StringSliceP("exclude", "x", nil, "exclude pathspecs or globs (repeatable)")
	fs.StringSlice("path-regex", nil, "keep only paths matching any of the regexes")
	fs.Bool("exclude-typical", true, "exclude vendor/, node_modules/, dist/, build/, coverage/ and *.min.*")
	fs.IntP("jobs", "j", 0, "parallel workers (default: number of CPUs, max 64)")
	fs.Int("max-file-bytes", 0, "skip files larger than N bytes (0 = unlimited)")
	fs.Bool("no-prefilter", false, "parse every file, even without Chinese script in its bytes")
	fs.Bool("with-url", false, "attach blob URLs built from the git remote")
	fs.Int("truncate", 0, "truncate text to N runes (0 = unlimited)")
}

func addDetectFlags(fs *pflag.FlagSet) {
	fs.StringSlice("ext", nil, "map extensions to grammars, e.g. .svelte:component (repeatable)")
	fs.Bool("strict", false, "report whitespace-only spans as errors instead of skipping them")
}

func addHighlightFlags(fs *pflag.FlagSet) {
	fs.String("highlight-color", "", "highlight background color (default: #ff0000)")
	fs.Bool("no-ruler", false, "hide the gutter marker")
	fs.Bool("no-underline", false, "do not underline marked text")
}

// flagLayer builds a config layer from the flags the user actually set, so
// unset flags never shadow the config file or the environment.
func flagLayer(fs *pflag.FlagSet) config.Config {
	var c config.Config
	c.Engine.Paths = changedStrings(fs, "path")
	c.Engine.Excludes = changedStrings(fs, "exclude")
	c.Engine.PathRegex = changedStrings(fs, "path-regex")
	c.Engine.Extensions = changedStrings(fs, "ext")
	c.Engine.ExcludeTypical = changedBool(fs, "exclude-typical")
	c.Engine.Jobs = changedInt(fs, "jobs")
	c.Engine.Repo = changedString(fs, "repo")
	c.Engine.Output = changedString(fs, "output")
	c.Engine.Color = changedString(fs, "color")
	c.Engine.MaxFileBytes = changedInt(fs, "max-file-bytes")
	c.Engine.NoPrefilter = changedBool(fs, "no-prefilter")
	c.Engine.Strict = changedBool(fs, "strict")
	c.Engine.WithURL = changedBool(fs, "with-url")
	c.Engine.Truncate = changedInt(fs, "truncate")

	c.UI.Fields = changedString(fs, "fields")
	c.UI.Sort = changedString(fs, "sort")
	c.UI.LogLevel = changedString(fs, "log-level")

	c.Highlight.Color = changedString(fs, "highlight-color")
	c.Highlight.ShowOverviewRuler = negated(changedBool(fs, "no-ruler"))
	c.Highlight.MarkStringLiterals = negated(changedBool(fs, "no-underline"))
	return c
}

func changedString(fs *pflag.FlagSet, name string) *string {
	if f := fs.Lookup(name); f == nil || !f.Changed {
		return nil
	}
	v, err := fs.GetString(name)
	if err != nil {
		return nil
	}
	return &v
}

func changedStrings(fs *pflag.FlagSet, name string) *[]string {
	if f := fs.Lookup(name); f == nil || !f.Changed {
		return nil
	}
	v, err := fs.GetStringSlice(name)
	if err != nil {
		return nil
	}
	v = engineopts.SplitMulti(v)
	if v == nil {
		v = []string{}
	}
	return &v
}

func changedInt(fs *pflag.FlagSet, name string) *int {
	if f := fs.Lookup(name); f == nil || !f.Changed {
		return nil
	}
	v, err := fs.GetInt(name)
	if err != nil {
		return nil
	}
	return &v
}

func changedBool(fs *pflag.FlagSet, name string) *bool {
	if f := fs.Lookup(name); f == nil || !f.Changed {
		return nil
	}
	v, err := fs.GetBool(name)
	if err != nil {
		return nil
	}
	return &v
}

func negated(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := !*b
	return &v
}
