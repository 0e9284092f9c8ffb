package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Yarielito06/Pearfect-Trading-App/core"
)

// MarketPrices returns venue prices for the core.PriceTickers allow-list.
func (s *RelayService) MarketPrices(ctx context.Context) (map[string]json.RawMessage, error) {
	all, err := s.venue.Prices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market prices: %w", err)
	}

	return FilterPrices(all, core.PriceTickers), nil
}

// FilterPrices projects all onto tickers. Tickers missing upstream are left
// out rather than defaulted.
func FilterPrices(all map[string]json.RawMessage, tickers []string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(tickers))
	for _, ticker := range tickers {
		if price, ok := all[ticker]; ok {
			out[ticker] = price
		}
	}
	return out
}
