package ports

import (
	"context"

	"github.com/Yarielito06/Pearfect-Trading-App/core"
)

// TokenStore holds venue token pairs. Save replaces both fields of the pair
// for the address and the process-wide latest pair in one step.
type TokenStore interface {
	Save(ctx context.Context, address string, pair core.TokenPair) error
	Get(ctx context.Context, address string) (core.TokenPair, bool, error)
	Latest(ctx context.Context) (core.TokenPair, bool, error)
}
