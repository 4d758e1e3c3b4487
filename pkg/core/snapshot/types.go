// Package snapshot defines the read-only data contract consumed by the
// analysis and valuation engines. A Snapshot is materialized entirely by the
// caller (data acquisition lives outside this module); the engines borrow it
// and never mutate it.
package snapshot

// =============================================================================
// SNAPSHOT AGGREGATE
// Shape mirrors the provider export: one company, newest-first period series.
// =============================================================================

// Snapshot is one company's full historical picture as of FetchTime.
type Snapshot struct {
	Code            string            `json:"code"`
	FetchTime       string            `json:"fetch_time"`
	DataType        string            `json:"data_type"`
	BasicInfo       BasicInfo         `json:"basic_info"`
	FinancialData   FinancialData     `json:"financial_data"`
	Indicators      []IndicatorRecord `json:"financial_indicators"`
	PerformanceData PerformanceData   `json:"performance_data"`
	Valuation       ValuationData     `json:"valuation"`
	Price           PriceData         `json:"price"`
	Dividend        DividendData      `json:"dividend"`
	NewsSentiment   *NewsSentiment    `json:"news_sentiment,omitempty"`
}

// Name returns the company name, falling back to the code.
func (s *Snapshot) Name() string {
	if s.BasicInfo.Name != "" {
		return s.BasicInfo.Name
	}
	return s.Code
}

// BasicInfo carries static company facts plus spot valuation multiples.
type BasicInfo struct {
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	PETTM       Number `json:"pe_ttm"`
	PB          Number `json:"pb"`
	MarketCap   Number `json:"market_cap"`
	TotalShares Shares `json:"total_shares"`
}

// =============================================================================
// STATEMENT RECORDS
// All series are sorted descending by period date with no duplicate dates;
// the loader enforces that once at ingestion.
// =============================================================================

type FinancialData struct {
	BalanceSheet    []BalanceRecord  `json:"balance_sheet"`
	IncomeStatement []IncomeRecord   `json:"income_statement"`
	CashFlow        []CashFlowRecord `json:"cash_flow"`
}

type BalanceRecord struct {
	Date             string `json:"date"`
	TotalAssets      Number `json:"total_assets"`
	TotalLiabilities Number `json:"total_liabilities"`
	TotalEquity      Number `json:"total_equity"`
}

type IncomeRecord struct {
	Date      string `json:"date"`
	Revenue   Number `json:"revenue"`
	NetProfit Number `json:"net_profit"`
}

type CashFlowRecord struct {
	Date              string `json:"date"`
	OperatingCashFlow Number `json:"operating_cash_flow"`
	Capex             Number `json:"capex"`
}

// IndicatorRecord is an immutable per-period ratio bundle. Values arrive
// precomputed from the provider; the engines read, never derive, them.
type IndicatorRecord struct {
	Date                  string `json:"date"`
	ROE                   Number `json:"roe"`
	ROA                   Number `json:"roa"`
	GrossMargin           Number `json:"gross_margin"`
	NetMargin             Number `json:"net_margin"`
	DebtToAssets          Number `json:"debt_to_assets"`
	CurrentRatio          Number `json:"current_ratio"`
	QuickRatio            Number `json:"quick_ratio"`
	ARTurnoverDays        Number `json:"ar_turnover_days"`
	InventoryTurnoverDays Number `json:"inventory_turnover_days"`
	AssetTurnover         Number `json:"asset_turnover"`
	EquityMultiplier      Number `json:"equity_multiplier"`
	RevenueGrowth         Number `json:"revenue_growth"`
	NetProfitGrowth       Number `json:"net_profit_growth"`
	ARGrowth              Number `json:"ar_growth"`
	InventoryGrowth       Number `json:"inventory_growth"`
}

// =============================================================================
// PERFORMANCE DISCLOSURES
// =============================================================================

type PerformanceData struct {
	Forecast     []ForecastRecord `json:"forecast"`
	Express      []ExpressRecord  `json:"express"`
	Audit        []AuditRecord    `json:"audit"`
	MainBusiness MainBusiness     `json:"main_business"`
}

// ForecastRecord is a pre-announcement band of projected net-profit change.
type ForecastRecord struct {
	Date       string `json:"date"`
	PChangeMin Number `json:"p_change_min"`
	PChangeMax Number `json:"p_change_max"`
}

// ExpressRecord is a preliminary (unaudited) results flash.
type ExpressRecord struct {
	Date         string `json:"date"`
	YoYNetProfit Number `json:"yoy_net_profit"`
}

type AuditRecord struct {
	Date        string `json:"date"`
	AuditResult string `json:"audit_result"`
	AuditAgency string `json:"audit_agency"`
}

type MainBusiness struct {
	ByProduct []BusinessLine `json:"by_product"`
	ByRegion  []BusinessLine `json:"by_region"`
}

type BusinessLine struct {
	Item  string `json:"bz_item"`
	Sales Number `json:"bz_sales"`
}

// =============================================================================
// MARKET DATA
// =============================================================================

type ValuationData struct {
	Latest       *LatestValuation `json:"latest,omitempty"`
	PEPercentile Number           `json:"pe_percentile"`
	PBPercentile Number           `json:"pb_percentile"`
}

// LatestValuation is the most recent stored multiple set, used as a fallback
// when basic_info carries no spot PE/PB.
type LatestValuation struct {
	PETTM Number `json:"pe_ttm"`
	PE    Number `json:"pe"`
	PB    Number `json:"pb"`
}

type PriceData struct {
	LatestPrice Number `json:"latest_price"`
	Date        string `json:"date"`
}

type DividendData struct {
	History []DividendRecord `json:"dividend_history"`
}

type DividendRecord struct {
	Year     string `json:"year"`
	PerShare Number `json:"per_share_dividend"`
}

// NewsSentiment is an externally supplied summary; this module applies its
// fixed score deltas and echoes it back, nothing more.
type NewsSentiment struct {
	OverallSentiment float64 `json:"overall_sentiment"`
	RiskLevel        string  `json:"risk_level"`
	NewsCount        int     `json:"news_count"`
	Error            string  `json:"error,omitempty"`
}
