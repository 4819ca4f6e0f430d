// researchdesk: equity research workbench.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/seenimoa/researchdesk/internal/config"
	"github.com/seenimoa/researchdesk/internal/datasource"
	"github.com/seenimoa/researchdesk/internal/infra"
	"github.com/seenimoa/researchdesk/internal/storage"
	"github.com/seenimoa/researchdesk/internal/workspace"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "researchdesk",
	Short: "researchdesk: screener, comps and relative valuation",
	Long: `researchdesk
Screen a stock universe, build a comparable-companies set around an
anchor, value it against the peer median, keep thesis notes and save
research snapshots.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(universeCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(watchlistCmd)
	rootCmd.AddCommand(compsCmd)
	rootCmd.AddCommand(thesisCmd)
	rootCmd.AddCommand(researchCmd)
}

// app bundles the long-lived components every command needs.
type app struct {
	logger arbor.ILogger
	store  *storage.Store
	quotes *datasource.QuoteService
	news   *datasource.News
	ws     *workspace.Workspace
}

func openApp() (*app, error) {
	logger := infra.NewLogger(cfg.Logging)
	store, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	yf := datasource.NewYFinance(cfg.Quotes, logger)
	return &app{
		logger: logger,
		store:  store,
		quotes: datasource.NewQuoteService(yf, cfg.Quotes, logger),
		news:   datasource.NewNews(cfg.Quotes, cfg.News, logger),
		ws:     workspace.New(store, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("closing storage")
	}
}

// withApp opens the components around fn.
func withApp(fn func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("researchdesk %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and stored state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			fmt.Println("═══════════════════════════════════════")
			fmt.Println("  researchdesk: System Status")
			fmt.Println("═══════════════════════════════════════")
			fmt.Printf("  Version:       %s (%s)\n", version, commit)
			fmt.Println()

			fmt.Println("  Configuration:")
			fmt.Printf("    API Server:    %s\n", cfg.Server.Addr())
			fmt.Printf("    Quotes:        %s (batch %d, %.1f req/s)\n", cfg.Quotes.BaseURL, cfg.Quotes.BatchSize, cfg.Quotes.RateLimit)
			fmt.Printf("    Refresh:       %s\n", cfg.Quotes.RefreshSchedule)
			fmt.Printf("    Storage:       %s (%s)\n", cfg.Storage.Driver, cfg.Storage.Path)
			fmt.Printf("    Logging:       %s / %s\n", cfg.Logging.Level, cfg.Logging.Format)
			fmt.Println()

			ws := a.ws.WorkingSet()
			anchor := "none"
			if !ws.IsEmpty() {
				anchor = fmt.Sprintf("%s + %d peers", ws.AnchorTicker, len(ws.CompTickers))
			}
			fmt.Println("  Workspace:")
			fmt.Printf("    Watchlist:     %d tickers\n", len(a.ws.Watchlist()))
			fmt.Printf("    Custom stocks: %d\n", len(a.ws.CustomStocks()))
			fmt.Printf("    Working set:   %s\n", anchor)
			fmt.Printf("    Theses:        %d\n", len(a.ws.ThesisTickers()))
			fmt.Printf("    Research sets: %d\n", len(a.ws.ResearchSets()))
			fmt.Println("═══════════════════════════════════════")
			return nil
		})
	},
}
