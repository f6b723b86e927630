package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/MitulMistry/paper-trader/internal/models"
)

// Portfolio values every current holding at its live quote and derives
// gain/loss from the transaction history. Read-only.
//
// A quote failure for one symbol does not fail the view: that entry is
// flagged price_unavailable and its market value and transactions are left
// out of the aggregates, so the totals stay internally consistent for the
// symbols that did price.
func (l *Ledger) Portfolio(ctx context.Context, userID int) (*models.Portfolio, error) {
	user, err := l.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings, err := l.store.GetHoldingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	transactions, err := l.store.GetTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Net signed cost per symbol: buys add, sells subtract. Symbols that were
	// fully sold keep a (usually negative) residual representing realized
	// gain; they count toward portfolio cost even without a holding row.
	costBySymbol := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		costBySymbol[t.Symbol] = costBySymbol[t.Symbol].Add(t.Cost())
	}

	p := &models.Portfolio{
		Entries: make([]*models.PortfolioEntry, 0, len(holdings)),
		Cash:    user.Cash,
	}

	unpriced := make(map[string]bool)
	for _, h := range holdings {
		entry := &models.PortfolioEntry{
			Symbol:    h.Symbol,
			Shares:    h.Shares,
			CostBasis: costBySymbol[h.Symbol],
		}

		quote, err := l.quotes.Lookup(ctx, h.Symbol)
		if err != nil {
			l.log.Warn().Str("symbol", h.Symbol).Err(err).Msg("quote unavailable for portfolio entry")
			entry.PriceUnavailable = true
			unpriced[h.Symbol] = true
		} else {
			entry.Name = quote.Name
			entry.Price = quote.Price
			entry.TotalValue = quote.Price.Mul(decimal.NewFromInt(h.Shares))
			entry.GainLoss = entry.TotalValue.Sub(entry.CostBasis)
			entry.TotalValueUSD = models.USD(entry.TotalValue)
			entry.GainLossUSD = models.USD(entry.GainLoss)

			p.PortfolioValue = p.PortfolioValue.Add(entry.TotalValue)
		}

		p.Entries = append(p.Entries, entry)
	}

	for symbol, cost := range costBySymbol {
		if !unpriced[symbol] {
			p.PortfolioCost = p.PortfolioCost.Add(cost)
		}
	}
	p.GainLoss = p.PortfolioValue.Sub(p.PortfolioCost)

	p.CashUSD = models.USD(p.Cash)
	p.PortfolioValueUSD = models.USD(p.PortfolioValue)
	p.GainLossUSD = models.USD(p.GainLoss)
	return p, nil
}
