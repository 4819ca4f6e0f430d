package report

import (
	"fmt"
	"strings"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 720)
	Height       int    // SVG height in pixels (default: 320)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 60)
	MarginBottom int    // bottom margin (default: 20)
	MarginLeft   int    // left margin (default: 80)
	BgColor      string // background color
	TextColor    string // label color
	AnchorColor  string // bar color for the anchor
	PeerColor    string // bar color for peers
	MedianColor  string // median marker color
	FontSize     int    // label font size
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        720,
		Height:       320,
		MarginTop:    40,
		MarginRight:  60,
		MarginBottom: 20,
		MarginLeft:   80,
		BgColor:      "#ffffff",
		TextColor:    "#333333",
		AnchorColor:  "#2563eb",
		PeerColor:    "#94a3b8",
		MedianColor:  "#dc2626",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// ════════════════════════════════════════════════════════════════════
// Multiple comparison (horizontal bars)
// ════════════════════════════════════════════════════════════════════

// MultipleChart draws one horizontal bar per row for multiple m, the anchor
// highlighted and a dashed marker at median when it is known. Rows with no
// value for m are skipped.
func MultipleChart(rows []models.CompsRow, m models.Multiple, anchor string, median *float64, cfg ChartConfig) string {
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.Title == "" {
		cfg.Title = multipleLabel(m)
	}

	var plotted []models.CompsRow
	maxVal := 0.0
	for _, r := range rows {
		v := r.Value(m)
		if v <= 0 {
			continue
		}
		plotted = append(plotted, r)
		if v > maxVal {
			maxVal = v
		}
	}
	if len(plotted) == 0 {
		return emptySVG(cfg, "No "+multipleLabel(m)+" data")
	}
	if median != nil && *median > maxVal {
		maxVal = *median
	}

	px, py, pw, ph := cfg.plotArea()
	barH := float64(ph) / float64(len(plotted)) * 0.7
	if barH > 24 {
		barH = 24
	}
	gap := (float64(ph) - barH*float64(len(plotted))) / float64(len(plotted)+1)

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	for i, r := range plotted {
		v := r.Value(m)
		by := float64(py) + gap + float64(i)*(barH+gap)
		bw := v / maxVal * float64(pw)
		color := cfg.PeerColor
		if r.Ticker == anchor {
			color = cfg.AnchorColor
		}
		sb.WriteString(fmt.Sprintf(`<rect class="bar" data-ticker="%s" x="%d" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"/>`,
			escapeXML(r.Ticker), px, by, bw, barH, color))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, by+barH/2+4, cfg.FontSize, cfg.TextColor, escapeXML(r.Ticker)))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="%d" fill="%s">%.1fx</text>`,
			float64(px)+bw+5, by+barH/2+4, cfg.FontSize, cfg.TextColor, v))
	}

	if median != nil && *median > 0 {
		mx := float64(px) + *median/maxVal*float64(pw)
		sb.WriteString(fmt.Sprintf(`<line class="median" x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="%s" stroke-width="1.5" stroke-dasharray="4 3"/>`,
			mx, py, mx, py+ph, cfg.MedianColor))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">median %.1fx</text>`,
			mx, py-4, cfg.FontSize, cfg.MedianColor, *median))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func multipleLabel(m models.Multiple) string {
	switch m {
	case models.MultiplePE:
		return "P/E"
	case models.MultipleEVEbitda:
		return "EV/EBITDA"
	case models.MultipleEVRevenue:
		return "EV/Revenue"
	}
	return string(m)
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
