package comps

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// CSVHeader is the fixed header line of a comps export.
var CSVHeader = []string{
	"Ticker", "Name", "Market Cap", "EV", "Revenue", "EBITDA",
	"P/E", "EV/EBITDA", "EV/Revenue",
}

// CSVFilename names an export for anchor taken on day.
func CSVFilename(anchor string, day time.Time) string {
	return fmt.Sprintf("comps-%s-%s.csv", anchor, day.Format("2006-01-02"))
}

// WriteCSV writes rows as CSV, one line per row in the given order. The
// name column is always quoted; numbers carry one decimal. Lines are
// separated by a bare newline with none after the last.
func WriteCSV(w io.Writer, rows []models.CompsRow) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(CSVHeader, ",")); err != nil {
		return err
	}
	for _, r := range rows {
		fields := []string{
			r.Ticker,
			quote(r.Name),
			fixed1(r.MarketCap),
			fixed1(r.EV),
			fixed1(r.Revenue),
			fixed1(r.EBITDA),
			fixed1(r.PERatio),
			fixed1(r.EVEbitda),
			fixed1(r.EVRevenue),
		}
		if _, err := bw.WriteString("\n" + strings.Join(fields, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func fixed1(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1)
}
