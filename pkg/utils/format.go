package utils

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatUSD renders a dollar amount with currency symbol and grouping,
// e.g. 1234.5 -> "$1,234.50".
func FormatUSD(amount float64) string {
	return FormatMoney(amount, money.USD)
}

// FormatMoney renders amount in the given ISO currency. Unknown currencies
// fall back to two decimals with the code appended.
func FormatMoney(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", amount, currency)
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), currency).Display()
}

// FormatBillions renders a figure held in billions, switching to trillions
// above 1000, e.g. 2950.3 -> "$2.95T", 45.2 -> "$45.2B".
func FormatBillions(b float64) string {
	switch {
	case b <= 0:
		return "n/a"
	case b >= 1000:
		return fmt.Sprintf("$%.2fT", b/1000)
	default:
		return fmt.Sprintf("$%.1fB", b)
	}
}

// FormatPct formats a percentage with sign, e.g. 1.234 -> "+1.23%".
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatMultiple renders a valuation multiple, e.g. 28.44 -> "28.4x".
// Zero means unknown.
func FormatMultiple(m float64) string {
	if m == 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.1fx", m)
}
