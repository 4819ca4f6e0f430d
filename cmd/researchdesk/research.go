package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/researchdesk/internal/analysis/fundamental"
	"github.com/seenimoa/researchdesk/internal/report"
	"github.com/seenimoa/researchdesk/internal/workspace"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

// --- Thesis Command ---

var thesisCmd = &cobra.Command{
	Use:   "thesis [ticker]",
	Short: "Show a ticker's thesis note and checklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			n := a.ws.Thesis(args[0])
			fmt.Printf("📝 %s thesis (target %s)\n", n.Ticker, orDash(n.TargetPrice))
			fmt.Printf("   Bull:      %s\n", orDash(n.Bull))
			fmt.Printf("   Bear:      %s\n", orDash(n.Bear))
			fmt.Printf("   Catalysts: %s\n", orDash(n.Catalysts))
			fmt.Printf("   Risks:     %s\n", orDash(n.Risks))
			fmt.Printf("\n   Checklist %d/%d\n", n.DoneCount(), len(n.Checklist))
			for _, it := range n.Checklist {
				box := "[ ]"
				if it.Done {
					box = "[x]"
				}
				fmt.Printf("   %s %-22s %s\n", box, it.ID, it.Label)
			}
			return nil
		})
	},
}

var thesisSetCmd = &cobra.Command{
	Use:   "set [ticker]",
	Short: "Edit thesis fields; unset flags keep their value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			n := a.ws.Thesis(args[0])
			fields := map[string]*string{
				"bull":      &n.Bull,
				"bear":      &n.Bear,
				"catalysts": &n.Catalysts,
				"risks":     &n.Risks,
				"target":    &n.TargetPrice,
			}
			for flag, dst := range fields {
				if cmd.Flags().Changed(flag) {
					*dst, _ = cmd.Flags().GetString(flag)
				}
			}
			saved, err := a.ws.SaveThesis(n)
			if err != nil {
				return err
			}
			fmt.Printf("📝 saved %s thesis\n", saved.Ticker)
			return nil
		})
	},
}

var thesisToggleCmd = &cobra.Command{
	Use:   "toggle [ticker] [item-id]",
	Short: "Flip a checklist item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			n, err := a.ws.ToggleChecklistItem(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("%s checklist %d/%d\n", n.Ticker, n.DoneCount(), len(n.Checklist))
			return nil
		})
	},
}

func init() {
	for _, f := range []string{"bull", "bear", "catalysts", "risks"} {
		thesisSetCmd.Flags().String(f, "", f+" (markdown)")
	}
	thesisSetCmd.Flags().String("target", "", "target price")
	thesisCmd.AddCommand(thesisSetCmd, thesisToggleCmd)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// --- Research Command ---

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Manage saved research sets",
}

var researchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved research sets, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			sets := a.ws.ResearchSets()
			if len(sets) == 0 {
				fmt.Println("No research sets.")
				return nil
			}
			for _, s := range sets {
				fmt.Printf("%s  %-30.30s %-8s %2d rows  %s\n",
					s.ID, s.Name, s.AnchorTicker, len(s.CompsSnapshot), s.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		})
	},
}

var researchSaveCmd = &cobra.Command{
	Use:   "save [name]",
	Short: "Snapshot the working set, comps table and thesis",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		return withApp(func(a *app) error {
			if _, err := a.ws.LoadComps(context.Background(), a.quotes); err != nil && !errors.Is(err, workspace.ErrNoWorkingSet) {
				return err
			}
			set, err := a.ws.SaveResearchSet(name)
			if err != nil {
				return err
			}
			fmt.Printf("💾 saved %q as %s (%d rows)\n", set.Name, set.ID, len(set.CompsSnapshot))
			return nil
		})
	},
}

var researchAssumptionsCmd = &cobra.Command{
	Use:   "assumptions [id] [text]",
	Short: "Replace a research set's assumptions",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			_, err := a.ws.UpdateAssumptions(args[0], strings.Join(args[1:], " "))
			return err
		})
	},
}

var researchDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a research set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			return a.ws.DeleteResearchSet(args[0])
		})
	},
}

var researchReportCmd = &cobra.Command{
	Use:   "report [id]",
	Short: "Render a research set as HTML, text or PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		pdf, _ := cmd.Flags().GetBool("pdf")

		return withApp(func(a *app) error {
			set, err := a.ws.ResearchSet(args[0])
			if err != nil {
				return err
			}
			val := fundamental.RelativeValuation(set.CompsSnapshot, set.AnchorTicker, set.AnchorPrice)
			rc := report.DefaultReportConfig()

			if pdf {
				html, err := report.GenerateHTML(&set, val, rc)
				if err != nil {
					return err
				}
				if out == "" {
					out = filepath.Join("reports", utils.NormalizeTicker(set.AnchorTicker)+"-"+set.ID+".pdf")
				}
				path, err := report.WritePDF(html, report.DefaultPDFConfig(out))
				if err != nil {
					return err
				}
				fmt.Printf("📄 wrote %s\n", path)
				return nil
			}

			rc.Format = report.ReportFormat(format)
			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return report.Render(w, &set, val, rc)
		})
	},
}

func init() {
	researchReportCmd.Flags().String("format", "text", "output format: html or text")
	researchReportCmd.Flags().StringP("out", "o", "", "output file (default: stdout, or reports/<ANCHOR>-<id>.pdf with --pdf)")
	researchReportCmd.Flags().Bool("pdf", false, "convert the HTML report to PDF")

	researchCmd.AddCommand(researchListCmd, researchSaveCmd, researchAssumptionsCmd, researchDeleteCmd, researchReportCmd)
}
