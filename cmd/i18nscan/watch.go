package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/phyten/i18nscan/internal/debounce"
	"github.com/phyten/i18nscan/internal/decorate"
	"github.com/phyten/i18nscan/internal/watch"
)

func (a *app) watchCmd() *cobra.Command {
	var (
		delay   time.Duration
		context int
	)
	cmd := &cobra.Command{
		Use:   "watch file...",
		Short: "Re-detect files whenever they change",
		Long: `Watch prints the highlighted source of every file, then re-runs detection
after each save. Bursts of writes are coalesced and only the last one is
processed; the difference to the previous report is printed as +/- lines.
While a file does not parse, the last good result stays on screen.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			det, err := a.detector()
			if err != nil {
				return err
			}
			term := a.terminal()
			w, err := watch.New(watch.Config{
				Files:    args,
				Delay:    delay,
				Detector: det,
				Settings: a.highlight.Viper(),
				Render: decorate.RenderOptions{
					Color:   term.Color,
					Profile: term.Profile,
					Context: context,
				},
				Out:    a.stdout,
				Logger: &a.logger,
			})
			if err != nil {
				return err
			}
			a.logger.Info().Strs("files", args).Dur("delay", delay).Msg("watching")
			return w.Run(cmd.Context())
		},
	}
	fs := cmd.Flags()
	addDetectFlags(fs)
	addHighlightFlags(fs)
	fs.DurationVar(&delay, "delay", debounce.DefaultDelay, "quiet period before re-detecting")
	fs.IntVarP(&context, "context", "C", 2, "lines of context around marks (-1 = whole file)")
	return cmd
}
