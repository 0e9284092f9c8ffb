package ports

import (
	"context"
	"encoding/json"

	"github.com/Yarielito06/Pearfect-Trading-App/core"
)

// Venue is the outbound side of the relay: the trading venue HTTP API.
type Venue interface {
	// Auth handshake, unauthenticated
	SigningChallenge(ctx context.Context, address string) (json.RawMessage, error)
	Login(ctx context.Context, address, signature string, timestamp int64) (*core.LoginResult, error)

	// Bearer-authenticated calls
	OpenPosition(ctx context.Context, intent core.TradeIntent, token string) (*core.TradeResult, error)
	ListPositions(ctx context.Context, token string) (json.RawMessage, error)
	ClosePosition(ctx context.Context, positionID, token string) (json.RawMessage, error)

	// Market data, unauthenticated
	Prices(ctx context.Context) (map[string]json.RawMessage, error)
}
