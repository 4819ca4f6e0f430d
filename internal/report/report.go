// Package report renders a saved research set as an HTML or plain-text
// research note: comps table, relative valuation, multiple charts and the
// anchor's thesis.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/seenimoa/researchdesk/internal/analysis/fundamental"
	"github.com/seenimoa/researchdesk/internal/workspace"
	"github.com/seenimoa/researchdesk/pkg/models"
	"github.com/seenimoa/researchdesk/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Generator
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatHTML ReportFormat = "html"
	FormatText ReportFormat = "text"
)

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Format   ReportFormat     // output format (default: HTML)
	Title    string           // custom report title (optional)
	Author   string           // author line (default: "researchdesk")
	Charts   bool             // include SVG multiple charts
	ChartCfg ChartConfig      // chart rendering config
	Now      func() time.Time // clock for the generated-at stamp
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Format:   FormatHTML,
		Author:   "researchdesk",
		Charts:   true,
		ChartCfg: DefaultChartConfig(),
		Now:      time.Now,
	}
}

// ════════════════════════════════════════════════════════════════════
// Report Data
// ════════════════════════════════════════════════════════════════════

// ReportData is the view model handed to the templates.
type ReportData struct {
	Title       string
	Author      string
	GeneratedAt string

	SetID        string
	SetName      string
	CreatedAt    string
	AnchorTicker string
	AnchorName   string
	AnchorPrice  string
	Peers        string

	Rows       []TableRow
	Median     *TableRow
	Valuations []ValuationRow
	PEChart    template.HTML
	EVChart    template.HTML

	Thesis      *ThesisData
	Assumptions template.HTML
}

// TableRow is one formatted comps line.
type TableRow struct {
	Ticker    string
	Name      string
	MarketCap string
	EV        string
	Revenue   string
	EBITDA    string
	PE        string
	EVEbitda  string
	EVRevenue string
	IsAnchor  bool
}

// ValuationRow is one formatted multiple reading.
type ValuationRow struct {
	Metric  string
	Anchor  string
	Median  string
	Premium string
	Implied string
	Upside  string
	Class   string // premium, discount or empty
}

// ThesisData holds the rendered thesis sections.
type ThesisData struct {
	Bull        template.HTML
	Bear        template.HTML
	Catalysts   template.HTML
	Risks       template.HTML
	TargetPrice string
	Done        int
	Total       int
	Phases      []PhaseData
}

// PhaseData is a checklist phase with its items resolved.
type PhaseData struct {
	Label string
	Items []models.ChecklistItem
}

// ════════════════════════════════════════════════════════════════════
// Generate Report
// ════════════════════════════════════════════════════════════════════

var reportTmpl = template.Must(template.New("report").Parse(ReportTemplate))

// Render writes set as a report in cfg.Format.
func Render(w io.Writer, set *models.ResearchSet, val fundamental.Valuation, cfg ReportConfig) error {
	if set == nil {
		return fmt.Errorf("research set is nil")
	}
	data, err := buildReportData(set, val, cfg)
	if err != nil {
		return err
	}
	if cfg.Format == FormatText {
		_, err := io.WriteString(w, renderTextReport(data))
		return err
	}
	if err := reportTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	return nil
}

// GenerateHTML returns the HTML report for set.
func GenerateHTML(set *models.ResearchSet, val fundamental.Valuation, cfg ReportConfig) (string, error) {
	cfg.Format = FormatHTML
	var buf bytes.Buffer
	if err := Render(&buf, set, val, cfg); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// GenerateText returns the plain-text report for set.
func GenerateText(set *models.ResearchSet, val fundamental.Valuation, cfg ReportConfig) (string, error) {
	cfg.Format = FormatText
	var buf bytes.Buffer
	if err := Render(&buf, set, val, cfg); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ════════════════════════════════════════════════════════════════════
// Internal: build template data
// ════════════════════════════════════════════════════════════════════

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
)

func renderMarkdown(src string) (template.HTML, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	// goldmark drops raw HTML unless WithUnsafe is set.
	return template.HTML(buf.String()), nil
}

func buildReportData(set *models.ResearchSet, val fundamental.Valuation, cfg ReportConfig) (ReportData, error) {
	if cfg.Author == "" {
		cfg.Author = "researchdesk"
	}
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}

	d := ReportData{
		Title:        cfg.Title,
		Author:       cfg.Author,
		GeneratedAt:  now().UTC().Format("02 Jan 2006, 15:04 UTC"),
		SetID:        set.ID,
		SetName:      set.Name,
		CreatedAt:    set.CreatedAt.UTC().Format("02 Jan 2006"),
		AnchorTicker: set.AnchorTicker,
		AnchorName:   set.AnchorTicker,
		AnchorPrice:  "n/a",
		Peers:        strings.Join(set.CompTickers, ", "),
	}
	if d.Title == "" {
		d.Title = fmt.Sprintf("%s: %s relative valuation", set.Name, set.AnchorTicker)
	}
	if set.AnchorPrice > 0 {
		d.AnchorPrice = utils.FormatUSD(set.AnchorPrice)
	}

	for _, r := range set.CompsSnapshot {
		row := tableRow(r)
		row.IsAnchor = r.Ticker == set.AnchorTicker
		if row.IsAnchor && r.Name != "" {
			d.AnchorName = r.Name
		}
		d.Rows = append(d.Rows, row)
	}
	if m := fundamental.MedianRow(set.CompsSnapshot); m != nil {
		row := tableRow(*m)
		d.Median = &row
	}

	d.Valuations = []ValuationRow{valuationRow("P/E", val.PE), valuationRow("EV/EBITDA", val.EVEbitda)}

	if cfg.Charts {
		ccfg := cfg.ChartCfg
		if ccfg.Width == 0 {
			ccfg = DefaultChartConfig()
		}
		ccfg.Title = ""
		d.PEChart = template.HTML(MultipleChart(set.CompsSnapshot, models.MultiplePE, set.AnchorTicker, val.PE.Median, ccfg))
		d.EVChart = template.HTML(MultipleChart(set.CompsSnapshot, models.MultipleEVEbitda, set.AnchorTicker, val.EVEbitda.Median, ccfg))
	}

	var err error
	if d.Assumptions, err = renderMarkdown(set.Assumptions); err != nil {
		return d, err
	}
	if set.Thesis != nil {
		if d.Thesis, err = buildThesis(set.Thesis); err != nil {
			return d, err
		}
	}
	return d, nil
}

func tableRow(r models.CompsRow) TableRow {
	return TableRow{
		Ticker:    r.Ticker,
		Name:      r.Name,
		MarketCap: utils.FormatBillions(r.MarketCap),
		EV:        utils.FormatBillions(r.EV),
		Revenue:   utils.FormatBillions(r.Revenue),
		EBITDA:    utils.FormatBillions(r.EBITDA),
		PE:        utils.FormatMultiple(r.PERatio),
		EVEbitda:  utils.FormatMultiple(r.EVEbitda),
		EVRevenue: utils.FormatMultiple(r.EVRevenue),
	}
}

func valuationRow(label string, mv fundamental.MultipleValuation) ValuationRow {
	row := ValuationRow{
		Metric:  label,
		Anchor:  utils.FormatMultiple(mv.AnchorMultiple),
		Median:  "n/a",
		Premium: "n/a",
		Implied: "n/a",
		Upside:  "n/a",
	}
	if mv.Median != nil {
		row.Median = utils.FormatMultiple(*mv.Median)
	}
	if mv.PremiumPct != nil {
		row.Premium = utils.FormatPct(*mv.PremiumPct)
		row.Class = "discount"
		if mv.IsPremium() {
			row.Class = "premium"
		}
	}
	if mv.ImpliedPrice != nil {
		row.Implied = utils.FormatUSD(*mv.ImpliedPrice)
	}
	if mv.UpsidePct != nil {
		row.Upside = utils.FormatPct(*mv.UpsidePct)
	}
	return row
}

func buildThesis(n *models.ThesisNote) (*ThesisData, error) {
	t := &ThesisData{
		TargetPrice: strings.TrimSpace(n.TargetPrice),
		Done:        n.DoneCount(),
		Total:       len(n.Checklist),
	}
	for _, f := range []struct {
		src string
		dst *template.HTML
	}{
		{n.Bull, &t.Bull},
		{n.Bear, &t.Bear},
		{n.Catalysts, &t.Catalysts},
		{n.Risks, &t.Risks},
	} {
		html, err := renderMarkdown(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = html
	}

	byID := make(map[string]models.ChecklistItem, len(n.Checklist))
	for _, it := range n.Checklist {
		byID[it.ID] = it
	}
	grouped := make(map[string]bool, len(n.Checklist))
	for _, p := range workspace.Phases() {
		pd := PhaseData{Label: p.Label}
		for _, id := range p.IDs {
			if it, ok := byID[id]; ok {
				pd.Items = append(pd.Items, it)
				grouped[id] = true
			}
		}
		if len(pd.Items) > 0 {
			t.Phases = append(t.Phases, pd)
		}
	}
	other := PhaseData{Label: "Other"}
	for _, it := range n.Checklist {
		if !grouped[it.ID] {
			other.Items = append(other.Items, it)
		}
	}
	if len(other.Items) > 0 {
		t.Phases = append(t.Phases, other)
	}
	return t, nil
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderTextReport(d ReportData) string {
	var sb strings.Builder
	line := strings.Repeat("═", 72)
	thinLine := strings.Repeat("─", 72)

	sb.WriteString(line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", d.Title))
	sb.WriteString(fmt.Sprintf("  Generated: %s | Author: %s\n", d.GeneratedAt, d.Author))
	sb.WriteString(line + "\n")

	sb.WriteString(fmt.Sprintf("  %s (%s) at %s\n", d.AnchorName, d.AnchorTicker, d.AnchorPrice))
	sb.WriteString(fmt.Sprintf("  Set: %s | Saved: %s\n", d.SetName, d.CreatedAt))
	if d.Peers != "" {
		sb.WriteString(fmt.Sprintf("  Peers: %s\n", d.Peers))
	}
	sb.WriteString(thinLine + "\n")

	if len(d.Rows) > 0 {
		sb.WriteString("\n  ■ COMPARABLE COMPANIES\n")
		sb.WriteString(fmt.Sprintf("    %-8s %10s %10s %10s %10s %8s %10s %10s\n",
			"Ticker", "Mkt Cap", "EV", "Revenue", "EBITDA", "P/E", "EV/EBITDA", "EV/Rev"))
		write := func(r TableRow, mark string) {
			sb.WriteString(fmt.Sprintf("  %s %-8s %10s %10s %10s %10s %8s %10s %10s\n",
				mark, r.Ticker, r.MarketCap, r.EV, r.Revenue, r.EBITDA, r.PE, r.EVEbitda, r.EVRevenue))
		}
		for _, r := range d.Rows {
			mark := " "
			if r.IsAnchor {
				mark = "*"
			}
			write(r, mark)
		}
		if d.Median != nil {
			write(*d.Median, " ")
		}
		sb.WriteString(thinLine + "\n")
	}

	sb.WriteString("\n  ■ RELATIVE VALUATION\n")
	for _, v := range d.Valuations {
		sb.WriteString(fmt.Sprintf("    %-10s anchor %-7s median %-7s premium %-9s implied %-12s upside %s\n",
			v.Metric, v.Anchor, v.Median, v.Premium, v.Implied, v.Upside))
	}
	sb.WriteString(thinLine + "\n")

	if t := d.Thesis; t != nil {
		sb.WriteString(fmt.Sprintf("\n  ■ THESIS (%d/%d checklist items done)\n", t.Done, t.Total))
		if t.TargetPrice != "" {
			sb.WriteString(fmt.Sprintf("    Target price: %s\n", t.TargetPrice))
		}
		for _, p := range t.Phases {
			sb.WriteString(fmt.Sprintf("    %s\n", p.Label))
			for _, it := range p.Items {
				box := "[ ]"
				if it.Done {
					box = "[x]"
				}
				sb.WriteString(fmt.Sprintf("      %s %s\n", box, it.Label))
			}
		}
		sb.WriteString(thinLine + "\n")
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  For research purposes only. Not investment advice.\n")
	sb.WriteString(line + "\n")
	return sb.String()
}
