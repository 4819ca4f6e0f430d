package datasource

// --- Yahoo Finance API response types ---
// Only the fields the normalizer consumes are declared.

// yfQuoteResponse wraps the v7 quote API response.
type yfQuoteResponse struct {
	QuoteResponse struct {
		Result []yfQuoteResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"quoteResponse"`
}

// yfQuoteResult is one row of a v7 batch quote. Numbers are plain JSON
// numbers; regularMarketChangePercent is already a percentage.
type yfQuoteResult struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName"`
	LongName                   string   `json:"longName"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
	MarketCap                  *float64 `json:"marketCap"`
	TrailingPE                 *float64 `json:"trailingPE"`
	PriceToBook                *float64 `json:"priceToBook"`
}

// yfQuoteSummaryResponse wraps the v10 quoteSummary API response.
type yfQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []yfQuoteSummaryResult `json:"result"`
		Error  *yfError               `json:"error"`
	} `json:"quoteSummary"`
}

// yfQuoteSummaryResult holds the modules requested by summaryModules.
// Any module may be absent.
type yfQuoteSummaryResult struct {
	Price                *yfPrice                `json:"price"`
	AssetProfile         *yfAssetProfile         `json:"assetProfile"`
	DefaultKeyStatistics *yfDefaultKeyStatistics `json:"defaultKeyStatistics"`
	SummaryDetail        *yfSummaryDetail        `json:"summaryDetail"`
	FinancialData        *yfFinancialData        `json:"financialData"`
}

// yfFinVal is Yahoo's {raw, fmt} number wrapper. A nil pointer means the
// field was absent.
type yfFinVal struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

type yfPrice struct {
	ShortName                  string    `json:"shortName"`
	LongName                   string    `json:"longName"`
	Currency                   string    `json:"currency"`
	RegularMarketPrice         *yfFinVal `json:"regularMarketPrice"`
	RegularMarketChangePercent *yfFinVal `json:"regularMarketChangePercent"`
	MarketCap                  *yfFinVal `json:"marketCap"`
}

type yfAssetProfile struct {
	Industry string `json:"industry"`
	Sector   string `json:"sector"`
}

type yfDefaultKeyStatistics struct {
	EnterpriseValue     *yfFinVal `json:"enterpriseValue"`
	PriceToBook         *yfFinVal `json:"priceToBook"`
	EnterpriseToRevenue *yfFinVal `json:"enterpriseToRevenue"`
	EnterpriseToEbitda  *yfFinVal `json:"enterpriseToEbitda"`
}

type yfSummaryDetail struct {
	TrailingPE *yfFinVal `json:"trailingPE"`
}

type yfFinancialData struct {
	TotalRevenue  *yfFinVal `json:"totalRevenue"`
	Ebitda        *yfFinVal `json:"ebitda"`
	RevenueGrowth *yfFinVal `json:"revenueGrowth"`
	EbitdaMargins *yfFinVal `json:"ebitdaMargins"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// summaryModules are the quoteSummary modules one lookup requests.
const summaryModules = "price,financialData,defaultKeyStatistics,assetProfile,summaryDetail"
