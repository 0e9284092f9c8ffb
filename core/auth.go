package core

import "time"

// TokenPair is the credential pair issued by the venue on login.
// An empty field means the venue did not return it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// HasAccess reports whether the pair carries a usable bearer token.
func (p TokenPair) HasAccess() bool {
	return p.AccessToken != ""
}

// LoginResult is what a successful venue login yields.
type LoginResult struct {
	Tokens TokenPair
	Raw    map[string]any // decoded venue body, untouched
}

// LoginEvent is published after a token pair has been stored.
type LoginEvent struct {
	Address         string    `json:"address"`
	HasAccessToken  bool      `json:"has_access_token"`
	HasRefreshToken bool      `json:"has_refresh_token"`
	LoggedInAt      time.Time `json:"logged_in_at"`
}

// TokenInfo holds the registered claims read from a venue access token.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}
