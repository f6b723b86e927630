package models

import "github.com/shopspring/decimal"

// PortfolioEntry is one holding valued at the latest quote. When the quote
// provider cannot price the symbol, PriceUnavailable is set and the market
// value fields are zero; the entry is excluded from portfolio aggregates.
type PortfolioEntry struct {
	Symbol           string          `json:"symbol"`
	Name             string          `json:"name,omitempty"`
	Shares           int64           `json:"shares"`
	Price            decimal.Decimal `json:"price"`
	TotalValue       decimal.Decimal `json:"total_value"`
	CostBasis        decimal.Decimal `json:"cost_basis"`
	GainLoss         decimal.Decimal `json:"gain_loss"`
	PriceUnavailable bool            `json:"price_unavailable,omitempty"`

	TotalValueUSD string `json:"total_value_usd"`
	GainLossUSD   string `json:"gain_loss_usd"`
}

// Portfolio is the full read-only valuation of a user's account.
type Portfolio struct {
	Entries        []*PortfolioEntry `json:"entries"`
	Cash           decimal.Decimal   `json:"cash"`
	PortfolioValue decimal.Decimal   `json:"portfolio_value"`
	PortfolioCost  decimal.Decimal   `json:"portfolio_cost"`
	GainLoss       decimal.Decimal   `json:"gain_loss"`

	CashUSD           string `json:"cash_usd"`
	PortfolioValueUSD string `json:"portfolio_value_usd"`
	GainLossUSD       string `json:"gain_loss_usd"`
}
