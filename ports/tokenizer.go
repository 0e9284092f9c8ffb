package ports

import "github.com/Yarielito06/Pearfect-Trading-App/core"

// TokenInspector reads claims from venue-issued tokens. It does not verify
// them; the venue is the only authority on token validity.
type TokenInspector interface {
	Inspect(token string) (core.TokenInfo, error)
}
