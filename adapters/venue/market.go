package venue

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

const pathPrices = "/market-data/prices"

// Prices returns the venue's full ticker to price mapping. Values are kept
// as raw JSON so numbers pass through unchanged.
func (c *Client) Prices(ctx context.Context) (map[string]json.RawMessage, error) {
	call := Call{Method: http.MethodGet, Path: pathPrices}

	resp, err := c.execute(c.request(ctx, call), call)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, upstreamError(resp)
	}

	var prices map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &prices); err != nil {
		return nil, errors.Wrap(err, "decode market prices")
	}
	return prices, nil
}
