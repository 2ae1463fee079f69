package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/phyten/i18nscan/internal/web"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		host string
		port int
		open bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the detection API and a small web UI",
		Long: `Serve exposes POST /api/detect for snippets, GET /api/scan and
GET /api/scan/stream for the configured repository, and a web UI on /.
Scan requests accept the same parameters as the scan flags; the repository
itself is fixed at startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := a.options()
			if err != nil {
				return err
			}
			det, err := a.detector()
			if err != nil {
				return err
			}
			srv := &web.Server{Defaults: opts, Detector: det, Logger: &a.logger}

			ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
			if err != nil {
				return err
			}
			httpSrv := &http.Server{
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			url := "http://" + ln.Addr().String() + "/"
			abs, _ := filepath.Abs(opts.RepoDir)
			a.logger.Info().Str("url", url).Str("repo", abs).Msg("i18nscan serve listening")
			fmt.Fprintf(a.stderr, "i18nscan serve listening on %s (repo=%s)\n", url, abs)
			if open {
				if err := browser.OpenURL(url); err != nil {
					a.logger.Warn().Err(err).Msg("opening browser failed")
				}
			}

			errCh := make(chan error, 1)
			go func() { errCh <- httpSrv.Serve(ln) }()
			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return httpSrv.Shutdown(ctx)
			}
		},
	}
	fs := cmd.Flags()
	addEngineFlags(fs)
	addDetectFlags(fs)
	fs.StringVar(&host, "host", "127.0.0.1", "listen host")
	fs.IntVarP(&port, "port", "P", 8080, "listen port (0 = any free port)")
	fs.BoolVar(&open, "open", false, "open the UI in the default browser")
	return cmd
}
