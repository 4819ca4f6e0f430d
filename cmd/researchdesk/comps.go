package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/researchdesk/internal/analysis/fundamental"
	"github.com/seenimoa/researchdesk/internal/comps"
	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

var compsCmd = &cobra.Command{
	Use:   "comps",
	Short: "Build and value the comparable-companies set",
}

func printWorkingSet(ws models.WorkingSet) {
	if ws.IsEmpty() {
		fmt.Println("No working set.")
		return
	}
	fmt.Printf("⚓ %s\n", ws.AnchorTicker)
	for _, t := range ws.CompTickers {
		fmt.Printf("   %s\n", t)
	}
}

var compsGenerateCmd = &cobra.Command{
	Use:   "generate [anchor]",
	Short: "Pick peers for an anchor from the universe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			pool := a.ws.Pool(a.quotes.Universe(context.Background()).Stocks)
			ws, err := a.ws.GenerateWorkingSet(args[0], pool)
			if err != nil {
				return err
			}
			printWorkingSet(ws)
			return nil
		})
	},
}

var compsPeerAddCmd = &cobra.Command{
	Use:   "add [ticker]",
	Short: "Add a peer to the working set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			ws, err := a.ws.AddPeer(args[0])
			if err != nil {
				return err
			}
			printWorkingSet(ws)
			return nil
		})
	},
}

var compsPeerRemoveCmd = &cobra.Command{
	Use:   "remove [ticker]",
	Short: "Remove a peer from the working set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			ws, err := a.ws.RemovePeer(args[0])
			if err != nil {
				return err
			}
			printWorkingSet(ws)
			return nil
		})
	},
}

func printValuation(label string, mv fundamental.MultipleValuation) {
	if mv.PremiumPct == nil {
		fmt.Printf("   %-10s n/a\n", label)
		return
	}
	line := fmt.Sprintf("   %-10s %s vs median %s, %s",
		label, utils.FormatMultiple(mv.AnchorMultiple), utils.FormatMultiple(*mv.Median), utils.FormatPct(*mv.PremiumPct))
	if mv.ImpliedPrice != nil {
		line += fmt.Sprintf(", implied %s (%s)", utils.FormatUSD(*mv.ImpliedPrice), utils.FormatPct(*mv.UpsidePct))
	}
	fmt.Println(line)
}

func printCompsRow(mark string, r models.CompsRow) {
	fmt.Printf("%s %-8s %-26.26s %10s %10s %8s %10s %10s\n",
		mark, r.Ticker, r.Name,
		utils.FormatBillions(r.MarketCap), utils.FormatBillions(r.EV),
		utils.FormatMultiple(r.PERatio), utils.FormatMultiple(r.EVEbitda), utils.FormatMultiple(r.EVRevenue))
}

var compsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Load the comps table and value the anchor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			table, err := a.ws.LoadComps(context.Background(), a.quotes)
			if err != nil {
				return err
			}
			rows := a.ws.EffectiveRows(table.Rows)
			anchor := table.WorkingSet.AnchorTicker

			fmt.Printf("📊 Comps for %s [%s]\n\n", anchor, liveTag(table.Live))
			fmt.Printf("  %-8s %-26s %10s %10s %8s %10s %10s\n", "TICKER", "NAME", "MCAP", "EV", "P/E", "EV/EBITDA", "EV/REV")
			for _, r := range rows {
				mark := " "
				if r.Ticker == anchor {
					mark = "⚓"
				}
				printCompsRow(mark, r)
			}
			if m := fundamental.MedianRow(rows); m != nil {
				printCompsRow("~", *m)
			}

			val := fundamental.RelativeValuation(rows, anchor, table.AnchorPrice)
			fmt.Printf("\n   Anchor price: %s\n", utils.FormatUSD(table.AnchorPrice))
			printValuation("P/E", val.PE)
			printValuation("EV/EBITDA", val.EVEbitda)
			return nil
		})
	},
}

var compsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the comps table as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		return withApp(func(a *app) error {
			table, err := a.ws.LoadComps(context.Background(), a.quotes)
			if err != nil {
				return err
			}
			if out == "" {
				out = comps.CSVFilename(table.WorkingSet.AnchorTicker, time.Now())
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := comps.WriteCSV(f, a.ws.EffectiveRows(table.Rows)); err != nil {
				return err
			}
			fmt.Printf("💾 wrote %s\n", out)
			return nil
		})
	},
}

var compsOverrideCmd = &cobra.Command{
	Use:   "override [ticker] [metric] [value]",
	Short: "Override a fetched multiple (pe_ratio, ev_ebitda, ev_revenue); 0 clears it",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[2], err)
		}
		return withApp(func(a *app) error {
			o, err := a.ws.SetOverride(args[0], models.Multiple(args[1]), v)
			if err != nil {
				return err
			}
			for t, mo := range o {
				fmt.Printf("   %-8s P/E %s  EV/EBITDA %s  EV/Rev %s\n", t,
					utils.FormatMultiple(mo.PERatio), utils.FormatMultiple(mo.EVEbitda), utils.FormatMultiple(mo.EVRevenue))
			}
			return nil
		})
	},
}

var compsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the working set and its overrides",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			a.ws.ClearWorkingSet()
			a.ws.ClearOverrides("")
			fmt.Println("Working set cleared.")
			return nil
		})
	},
}

func init() {
	compsExportCmd.Flags().StringP("out", "o", "", "output file (default: comps-<ANCHOR>-<date>.csv)")

	peerCmd := &cobra.Command{Use: "peer", Short: "Edit the working set's peers"}
	peerCmd.AddCommand(compsPeerAddCmd, compsPeerRemoveCmd)

	compsCmd.AddCommand(compsGenerateCmd, peerCmd, compsShowCmd, compsExportCmd, compsOverrideCmd, compsClearCmd)
}
