package core

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	DefaultSlippage     = 0.01
	ExecutionTypeMarket = "MARKET"
	DefaultLegWeight    = 1
)

// AssetSelection is one leg entry as sent by the client.
type AssetSelection struct {
	Asset  string  `json:"asset" binding:"required"`
	Weight float64 `json:"weight,omitempty"`
}

// TradeIntent describes a pair position to open. Only the first long and
// short selection is forwarded to the venue.
type TradeIntent struct {
	Address     string           `json:"address" binding:"required"`
	USDValue    *decimal.Decimal `json:"usdValue" binding:"required"`
	Leverage    int              `json:"leverage" binding:"required,min=1"`
	LongAssets  []AssetSelection `json:"longAssets" binding:"required,min=1,dive"`
	ShortAssets []AssetSelection `json:"shortAssets" binding:"required,min=1,dive"`
}

// Notional returns the USD value, or zero when it was not given.
func (t TradeIntent) Notional() decimal.Decimal {
	if t.USDValue == nil {
		return decimal.Zero
	}
	return *t.USDValue
}

// LongAsset returns the ticker of the first long selection.
func (t TradeIntent) LongAsset() string {
	if len(t.LongAssets) == 0 {
		return ""
	}
	return t.LongAssets[0].Asset
}

// ShortAsset returns the ticker of the first short selection.
func (t TradeIntent) ShortAsset() string {
	if len(t.ShortAssets) == 0 {
		return ""
	}
	return t.ShortAssets[0].Asset
}

// TradeResult is the venue's answer to a position request.
type TradeResult struct {
	OrderID string
	Raw     json.RawMessage
}

// PriceTickers is the allow-list exposed by the market prices call.
var PriceTickers = []string{"HYPE", "SOL", "ETH", "BTC"}
