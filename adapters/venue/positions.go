package venue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/Yarielito06/Pearfect-Trading-App/core"
)

const pathPositions = "/positions"

type positionRequest struct {
	Slippage      float64     `json:"slippage"`
	ExecutionType string      `json:"executionType"`
	Leverage      int         `json:"leverage"`
	USDValue      float64     `json:"usdValue"`
	LongAssets    []legWeight `json:"longAssets"`
	ShortAssets   []legWeight `json:"shortAssets"`
}

type legWeight struct {
	Asset  string  `json:"asset"`
	Weight float64 `json:"weight"`
}

// embeddedStatus is the error envelope the venue sometimes returns inside a
// response body.
type embeddedStatus struct {
	StatusCode *int            `json:"statusCode"`
	Message    json.RawMessage `json:"message"`
	OrderID    json.RawMessage `json:"orderId"`
}

// OpenPosition places a market pair trade: the first long and first short
// selection, each with weight 1.
func (c *Client) OpenPosition(ctx context.Context, intent core.TradeIntent, token string) (*core.TradeResult, error) {
	call := Call{
		Method: http.MethodPost,
		Path:   pathPositions,
		Body: positionRequest{
			Slippage:      core.DefaultSlippage,
			ExecutionType: core.ExecutionTypeMarket,
			Leverage:      intent.Leverage,
			USDValue:      intent.Notional().InexactFloat64(),
			LongAssets:    []legWeight{{Asset: intent.LongAsset(), Weight: core.DefaultLegWeight}},
			ShortAssets:   []legWeight{{Asset: intent.ShortAsset(), Weight: core.DefaultLegWeight}},
		},
	}

	resp, err := c.Forward(ctx, call, token)
	if err != nil {
		return nil, err
	}

	body := resp.Body()
	var status embeddedStatus
	// Array or scalar bodies carry no envelope.
	_ = json.Unmarshal(body, &status)

	if status.StatusCode != nil && *status.StatusCode >= 400 {
		return nil, &core.UpstreamError{
			StatusCode: *status.StatusCode,
			Message:    messageText(status.Message),
			Body:       resp.String(),
		}
	}
	if !resp.IsSuccess() {
		return nil, &core.UpstreamError{
			StatusCode: resp.StatusCode(),
			Message:    messageText(status.Message),
			Body:       resp.String(),
		}
	}
	if !json.Valid(body) {
		return nil, errors.Errorf("venue returned non-JSON position response: %s", truncate(resp.String(), 200))
	}

	return &core.TradeResult{
		OrderID: scalarText(status.OrderID),
		Raw:     json.RawMessage(body),
	}, nil
}

// ListPositions returns the open positions. Any status other than 200 is
// reported as an empty list.
func (c *Client) ListPositions(ctx context.Context, token string) (json.RawMessage, error) {
	call := Call{Method: http.MethodGet, Path: pathPositions}

	resp, err := c.Forward(ctx, call, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		c.log.WithField("status", resp.StatusCode()).Warn("positions request rejected, returning empty list")
		return json.RawMessage("[]"), nil
	}

	return rawJSON(resp)
}

// ClosePosition closes one position through the configured close call.
func (c *Client) ClosePosition(ctx context.Context, positionID, token string) (json.RawMessage, error) {
	if c.cfg.ClosePath == "" {
		return nil, core.ErrCloseNotConfigured
	}

	call := Call{
		Method: strings.ToUpper(c.cfg.CloseMethod),
		Path:   closePath(c.cfg.ClosePath, positionID),
	}
	if !strings.Contains(c.cfg.ClosePath, "{id}") {
		call.Body = map[string]string{"positionId": positionID}
	}

	resp, err := c.Forward(ctx, call, token)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, upstreamError(resp)
	}

	return rawJSON(resp)
}

func closePath(template, positionID string) string {
	return strings.ReplaceAll(template, "{id}", url.PathEscape(positionID))
}

// messageText renders the venue "message" field, which is either a string
// or a list of validation messages.
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return string(raw)
}

func scalarText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
