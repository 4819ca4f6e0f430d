package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/researchdesk/api"
	"github.com/seenimoa/researchdesk/internal/datasource"
	"github.com/seenimoa/researchdesk/pkg/models"
)

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}
		noRefresh, _ := cmd.Flags().GetBool("no-refresh")

		return withApp(func(a *app) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(cfg, a.quotes, a.news, a.ws, a.logger)

			if !noRefresh {
				refresher := datasource.NewRefresher(a.quotes, a.logger, func(u *models.UniverseResult) {
					srv.Hub().Publish(api.EventUniverseRefreshed, map[string]interface{}{
						"total":      u.Total,
						"live":       u.Live,
						"fetched_at": u.FetchedAt,
					})
				})
				if err := refresher.Start(cfg.Quotes.RefreshSchedule); err != nil {
					return fmt.Errorf("invalid refresh schedule %q: %w", cfg.Quotes.RefreshSchedule, err)
				}
				defer refresher.Stop()
				go refresher.RunNow()
			}

			fmt.Printf("🌐 Starting researchdesk API server on %s\n", cfg.Server.Addr())
			return srv.ListenAndServe(ctx)
		})
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides server.port)")
	serveCmd.Flags().Bool("no-refresh", false, "do not refresh the universe on a schedule")
}
