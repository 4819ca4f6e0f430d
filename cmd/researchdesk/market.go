package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/researchdesk/internal/analysis/sentiment"
	"github.com/seenimoa/researchdesk/internal/datasource"
	"github.com/seenimoa/researchdesk/internal/screener"
	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

func liveTag(live bool) string {
	if live {
		return "live"
	}
	return "fallback"
}

func printStocks(stocks []models.Stock) {
	fmt.Printf("  %-8s %-28s %-24s %10s %8s %10s %8s\n", "TICKER", "NAME", "SECTOR", "PRICE", "1D", "MCAP", "P/E")
	for _, s := range stocks {
		star := " "
		if s.IsWatchlisted {
			star = "★"
		}
		fmt.Printf("%s %-8s %-28.28s %-24.24s %10s %8s %10s %8s\n",
			star, s.Ticker, s.Name, s.Sector,
			utils.FormatUSD(s.Price), utils.FormatPct(s.Change1D),
			utils.FormatBillions(s.MarketCap), utils.FormatMultiple(s.PERatio))
	}
}

// --- Quote Command ---

var quoteCmd = &cobra.Command{
	Use:   "quote [ticker]",
	Short: "Look up one ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := utils.NormalizeTicker(args[0])
		if !utils.IsValidTicker(ticker) {
			return fmt.Errorf("invalid ticker %q", args[0])
		}
		return withApp(func(a *app) error {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Quotes.Timeout()*2)
			defer cancel()

			res, err := a.quotes.Lookup(ctx, ticker)
			if errors.Is(err, datasource.ErrTickerNotFound) {
				return errors.New(datasource.NotFoundMessage(ticker))
			}
			if err != nil {
				return err
			}
			s := res.Stock
			fmt.Printf("📈 %s  %s (%s)  [%s]\n", s.Ticker, s.Name, s.Sector, liveTag(res.Live))
			fmt.Printf("   Price:       %s (%s)\n", utils.FormatUSD(s.Price), utils.FormatPct(s.Change1D))
			fmt.Printf("   Market cap:  %s\n", utils.FormatBillions(s.MarketCap))
			fmt.Printf("   P/E:         %s\n", utils.FormatMultiple(s.PERatio))
			fmt.Printf("   P/B:         %s\n", utils.FormatMultiple(s.PBRatio))
			fmt.Printf("   EV/EBITDA:   %s\n", utils.FormatMultiple(s.EVEbitda))
			fmt.Printf("   Rev growth:  %s\n", utils.FormatPct(s.RevenueGrowthYoY))
			fmt.Printf("   EBITDA mgn:  %s\n", utils.FormatPct(s.EBITDAMargin))

			if n, _ := cmd.Flags().GetInt("news"); n > 0 {
				articles, err := a.news.Headlines(ctx, ticker, n)
				if err != nil {
					a.logger.Warn().Err(err).Msg("headlines unavailable")
					return nil
				}
				fmt.Println("\n   Headlines:")
				for _, art := range sentiment.Annotate(articles) {
					fmt.Printf("   • [%-8s] %s (%s)\n", art.Tone, art.Title, art.Source)
				}
				sum := sentiment.Summarize(ticker, articles, time.Now())
				fmt.Printf("\n   Tone: %s (%.2f over %d headlines)\n", sum.Tone, sum.Score, sum.Articles)
			}
			return nil
		})
	},
}

func init() {
	quoteCmd.Flags().Int("news", 0, "also print this many headlines")
}

// --- Universe Command ---

var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Print the batch universe plus custom stocks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			u := a.quotes.RefreshUniverse(context.Background())
			pool := a.ws.Pool(u.Stocks)
			fmt.Printf("🌐 %d stocks (%d complete) [%s]\n\n", len(pool), screener.CompleteCount(pool), liveTag(u.Live))
			printStocks(screener.Apply(pool, screener.Filters{ShowIncomplete: true}, a.ws.Watchlist()))
			return nil
		})
	},
}

// --- Screen Command ---

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Filter and sort the universe",
	Example: `  researchdesk screen --sector Technology --cap large --sort pe_ratio --dir asc
  researchdesk screen --search bank`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := screener.DefaultFilters()
		f.Search, _ = cmd.Flags().GetString("search")
		if v, _ := cmd.Flags().GetString("sector"); v != "" {
			f.Sector = v
		}
		if v, _ := cmd.Flags().GetString("cap"); v != "" {
			f.MarketCap = screener.CapBucket(v)
		}
		if v, _ := cmd.Flags().GetString("sort"); v != "" {
			f.SortBy = screener.SortKey(v)
		}
		if v, _ := cmd.Flags().GetString("dir"); v != "" {
			f.SortDir = screener.SortDir(v)
		}
		f.ShowIncomplete, _ = cmd.Flags().GetBool("incomplete")
		if err := f.Validate(); err != nil {
			return err
		}

		return withApp(func(a *app) error {
			u := a.quotes.Universe(context.Background())
			rows := screener.Apply(a.ws.Pool(u.Stocks), f, a.ws.Watchlist())
			fmt.Printf("🔎 %d matches [%s]\n\n", len(rows), liveTag(u.Live))
			printStocks(rows)
			return nil
		})
	},
}

func init() {
	screenCmd.Flags().String("search", "", "substring of ticker or name")
	screenCmd.Flags().String("sector", "", "sector name or 'all'")
	screenCmd.Flags().String("cap", "", "market cap bucket: all, mega, large, mid, small")
	screenCmd.Flags().String("sort", "", "sort column: ticker, price, change_1d, market_cap, pe_ratio, pb_ratio")
	screenCmd.Flags().String("dir", "", "sort direction: asc or desc")
	screenCmd.Flags().Bool("incomplete", false, "include rows without price or market cap")
}

// --- Watchlist Command ---

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Show or edit the watchlist",
	RunE:  listWatchlist,
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watchlisted tickers",
	RunE:  listWatchlist,
}

func listWatchlist(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app) error {
		list := a.ws.Watchlist()
		if len(list) == 0 {
			fmt.Println("Watchlist is empty.")
			return nil
		}
		for _, t := range list {
			fmt.Printf("★ %s\n", t)
		}
		return nil
	})
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add [ticker...]",
	Short: "Add tickers to the watchlist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			for _, t := range args {
				if a.ws.AddToWatchlist(t) {
					fmt.Printf("★ added %s\n", utils.NormalizeTicker(t))
				}
			}
			return nil
		})
	},
}

var watchlistRemoveCmd = &cobra.Command{
	Use:   "remove [ticker...]",
	Short: "Remove tickers from the watchlist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			for _, t := range args {
				if a.ws.RemoveFromWatchlist(t) {
					fmt.Printf("removed %s\n", utils.NormalizeTicker(t))
				}
			}
			return nil
		})
	},
}

func init() {
	watchlistCmd.AddCommand(watchlistListCmd, watchlistAddCmd, watchlistRemoveCmd)
}
