package comps

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Select
// ════════════════════════════════════════════════════════════════════

func stock(ticker, sector string, cap float64) models.Stock {
	return models.Stock{Ticker: ticker, Name: ticker + " Inc", Sector: sector, Price: 10, MarketCap: cap}
}

func TestSelectSameSectorByDistance(t *testing.T) {
	pool := []models.Stock{
		stock("ANCH", "Tech", 100),
		stock("T1", "Tech", 90),
		stock("T2", "Tech", 200),
		stock("T3", "Tech", 105),
		stock("T4", "Tech", 50),
		stock("T5", "Tech", 120),
		stock("T6", "Tech", 300),
		stock("T7", "Tech", 99),
		stock("T8", "Tech", 1000),
		stock("T0", "Tech", 0),
		stock("F1", "Finance", 100),
	}
	ws := Select("ANCH", pool)
	assert.Equal(t, "ANCH", ws.AnchorTicker)
	assert.Equal(t, []string{"T7", "T3", "T1", "T5", "T4", "T2", "T6"}, ws.CompTickers)
}

func TestSelectFillsFromOtherSectors(t *testing.T) {
	pool := []models.Stock{
		stock("BANK", "Finance", 100),
		stock("B2", "Finance", 10),
		stock("X1", "Tech", 101),
		stock("X2", "Energy", 95),
		stock("X3", "Tech", 150),
		stock("X4", "Health", 60),
		stock("X5", "Energy", 500),
		stock("X6", "Energy", 99),
		stock("ZERO", "Tech", 0),
	}
	ws := Select("BANK", pool)
	require.Len(t, ws.CompTickers, MinPeers)
	assert.Equal(t, "B2", ws.CompTickers[0], "same-sector peers come first")
	assert.Equal(t, []string{"B2", "X1", "X6", "X2", "X4", "X3"}, ws.CompTickers)
	assert.NotContains(t, ws.CompTickers, "ZERO")
}

func TestSelectTiesKeepPoolOrder(t *testing.T) {
	pool := []models.Stock{
		stock("A", "S", 100),
		stock("HI", "S", 110),
		stock("LO", "S", 90),
	}
	ws := Select("A", pool)
	assert.Equal(t, []string{"HI", "LO"}, ws.CompTickers)
}

func TestSelectProperties(t *testing.T) {
	var pool []models.Stock
	sectors := []string{"Tech", "Finance", "Energy"}
	for i := 0; i < 30; i++ {
		pool = append(pool, stock(fmt.Sprintf("S%02d", i), sectors[i%3], float64(5+i*7%40)))
	}
	for _, anchor := range []string{"S00", "S07", "S29"} {
		ws := Select(anchor, pool)
		assert.GreaterOrEqual(t, len(ws.CompTickers), MinPeers)
		assert.LessOrEqual(t, len(ws.CompTickers), MaxSectorPeers)
		assert.NotContains(t, ws.CompTickers, anchor)
		seen := map[string]bool{}
		for _, c := range ws.CompTickers {
			assert.False(t, seen[c], "duplicate peer %s", c)
			seen[c] = true
		}
	}
}

func TestSelectSmallPool(t *testing.T) {
	ws := Select("ONLY", []models.Stock{stock("ONLY", "S", 10), stock("P", "T", 0)})
	assert.Empty(t, ws.CompTickers)
}

func TestSelectPanicsWithoutAnchor(t *testing.T) {
	assert.Panics(t, func() { Select("MISSING", []models.Stock{stock("A", "S", 1)}) })
	assert.False(t, Contains([]models.Stock{stock("A", "S", 1)}, "MISSING"))
}

// ════════════════════════════════════════════════════════════════════
// AddPeer / RemovePeer
// ════════════════════════════════════════════════════════════════════

func TestAddRemovePeer(t *testing.T) {
	ws := models.WorkingSet{AnchorTicker: "AAPL", CompTickers: []string{"MSFT"}}

	next, changed := AddPeer(ws, "GOOGL")
	assert.True(t, changed)
	assert.Equal(t, []string{"MSFT", "GOOGL"}, next.CompTickers)
	assert.Equal(t, []string{"MSFT"}, ws.CompTickers, "input untouched")

	_, changed = AddPeer(next, "AAPL")
	assert.False(t, changed, "anchor rejected")
	_, changed = AddPeer(next, "MSFT")
	assert.False(t, changed, "duplicate rejected")

	after, changed := RemovePeer(next, "MSFT")
	assert.True(t, changed)
	assert.Equal(t, []string{"GOOGL"}, after.CompTickers)

	_, changed = RemovePeer(after, "AAPL")
	assert.False(t, changed)
}

// ════════════════════════════════════════════════════════════════════
// Overrides
// ════════════════════════════════════════════════════════════════════

func TestSetOverride(t *testing.T) {
	o, err := SetOverride(nil, "AAPL", models.MultiplePE, 25)
	require.NoError(t, err)
	o, err = SetOverride(o, "AAPL", models.MultipleEVEbitda, 18)
	require.NoError(t, err)
	assert.Equal(t, models.MultipleOverrides{PERatio: 25, EVEbitda: 18}, o["AAPL"])

	cleared, err := SetOverride(o, "AAPL", models.MultiplePE, 0)
	require.NoError(t, err)
	assert.Equal(t, models.MultipleOverrides{EVEbitda: 18}, cleared["AAPL"])
	assert.Equal(t, 25.0, o["AAPL"].PERatio, "previous map untouched")

	empty, err := SetOverride(cleared, "AAPL", models.MultipleEVEbitda, 0)
	require.NoError(t, err)
	_, ok := empty["AAPL"]
	assert.False(t, ok, "entry dropped when nothing is overridden")

	_, err = SetOverride(o, "AAPL", models.Multiple("roe"), 3)
	assert.Error(t, err)
	_, err = SetOverride(o, "AAPL", models.MultiplePE, -1)
	assert.Error(t, err)
}

func TestEffective(t *testing.T) {
	rows := []models.CompsRow{
		{Ticker: "AAPL", PERatio: 30, EVEbitda: 22, EVRevenue: 7},
		{Ticker: "MSFT", PERatio: 35, EVEbitda: 25, EVRevenue: 13},
	}
	o := Overrides{"AAPL": {PERatio: 20}}
	eff := Effective(rows, o)
	assert.Equal(t, 20.0, eff[0].PERatio)
	assert.Equal(t, 22.0, eff[0].EVEbitda, "non-overridden field keeps fetched value")
	assert.Equal(t, rows[1], eff[1])
	assert.Equal(t, 30.0, rows[0].PERatio, "input untouched")

	// clearing restores the fetched value downstream
	o, _ = SetOverride(o, "AAPL", models.MultiplePE, 0)
	assert.Equal(t, 30.0, Effective(rows, o)[0].PERatio)
}

// ════════════════════════════════════════════════════════════════════
// CSV export
// ════════════════════════════════════════════════════════════════════

func TestWriteCSV(t *testing.T) {
	rows := []models.CompsRow{
		{Ticker: "AAPL", Name: "Apple Inc.", MarketCap: 2920, EV: 2890, Revenue: 394.3, EBITDA: 130.5, PERatio: 30.2, EVEbitda: 22.4, EVRevenue: 7.3},
		{Ticker: "ODD", Name: `Say "Hi", Co`, MarketCap: 1.25, PERatio: 0},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Ticker,Name,Market Cap,EV,Revenue,EBITDA,P/E,EV/EBITDA,EV/Revenue", lines[0])
	assert.Equal(t, `AAPL,"Apple Inc.",2920.0,2890.0,394.3,130.5,30.2,22.4,7.3`, lines[1])
	assert.Equal(t, `ODD,"Say ""Hi"", Co",1.3,0.0,0.0,0.0,0.0,0.0,0.0`, lines[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(CSVHeader, ","), buf.String())
}

func TestCSVFilename(t *testing.T) {
	day := time.Date(2026, 3, 9, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "comps-AAPL-2026-03-09.csv", CSVFilename("AAPL", day))
}
