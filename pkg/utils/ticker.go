// Package utils holds small formatting and ticker helpers shared by the
// API, the CLI and the report renderer.
package utils

import (
	"regexp"
	"strings"
)

// Common ticker aliases and normalizations.
var tickerAliases = map[string]string{
	"GOOGLE":    "GOOGL",
	"ALPHABET":  "GOOGL",
	"FACEBOOK":  "META",
	"FB":        "META",
	"APPLE":     "AAPL",
	"MICROSOFT": "MSFT",
	"AMAZON":    "AMZN",
	"TESLA":     "TSLA",
	"NVIDIA":    "NVDA",
	"BRK.B":     "BRK-B",
	"BRK/B":     "BRK-B",
	"BF.B":      "BF-B",
}

var tickerPattern = regexp.MustCompile(`^\^?[A-Z0-9][A-Z0-9.\-=]{0,14}$`)

// NormalizeTicker trims and upper-cases a user supplied symbol and resolves
// well-known aliases.
func NormalizeTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if alias, ok := tickerAliases[t]; ok {
		return alias
	}
	return t
}

// IsValidTicker reports whether a normalized ticker looks like a symbol the
// quote provider could resolve.
func IsValidTicker(ticker string) bool {
	return tickerPattern.MatchString(ticker)
}
