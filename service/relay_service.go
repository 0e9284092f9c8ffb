package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Yarielito06/Pearfect-Trading-App/core"
	"github.com/Yarielito06/Pearfect-Trading-App/ports"
)

// RelayService mediates the wallet login handshake with the venue and
// supplies bearer tokens for the trade and portfolio calls.
//
// Tokens are stored per wallet, and the most recent login is also kept as the
// process-wide default for callers that do not name a wallet. That default is
// single-tenant: concurrent logins of different wallets overwrite it.
type RelayService struct {
	venue     ports.Venue
	store     ports.TokenStore
	eventPub  ports.EventPublisher
	inspector ports.TokenInspector
	log       *logrus.Entry

	now func() time.Time
}

// NewRelayService creates a new relay service. eventPub and inspector may be nil.
func NewRelayService(
	venue ports.Venue,
	store ports.TokenStore,
	eventPub ports.EventPublisher,
	inspector ports.TokenInspector,
	log *logrus.Entry,
) *RelayService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RelayService{
		venue:     venue,
		store:     store,
		eventPub:  eventPub,
		inspector: inspector,
		log:       log.WithField("component", "relay"),
		now:       time.Now,
	}
}

// SigningChallenge returns the venue's EIP-712 message for address. Stored
// tokens are not touched.
func (s *RelayService) SigningChallenge(ctx context.Context, address string) (json.RawMessage, error) {
	if strings.TrimSpace(address) == "" {
		return nil, core.ErrEmptyAddress
	}

	challenge, err := s.venue.SigningChallenge(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get signing challenge: %w", err)
	}

	return challenge, nil
}

// Login exchanges a signature for a venue token pair and stores it. A nil
// timestamp is sent as 0. On failure nothing is stored.
func (s *RelayService) Login(ctx context.Context, address, signature string, timestamp *int64) (*core.LoginResult, error) {
	if strings.TrimSpace(address) == "" {
		return nil, core.ErrEmptyAddress
	}

	var ts int64
	if timestamp != nil {
		ts = *timestamp
	}

	result, err := s.venue.Login(ctx, address, signature, ts)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if err := s.store.Save(ctx, address, result.Tokens); err != nil {
		return nil, fmt.Errorf("failed to store tokens: %w", err)
	}

	entry := s.log.WithField("address", address)
	if info, ok := s.inspect(result.Tokens.AccessToken); ok && !info.ExpiresAt.IsZero() {
		entry = entry.WithField("expires_at", info.ExpiresAt)
	}
	if result.Tokens.HasAccess() {
		entry.Info("stored venue token pair")
	} else {
		entry.Warn("venue login returned no access token")
	}

	s.publishLogin(ctx, address, result.Tokens)

	return result, nil
}

// ResolveToken picks the bearer token for a call: the explicit token, then
// the pair stored for address, then the latest stored pair.
func (s *RelayService) ResolveToken(ctx context.Context, address, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if address != "" {
		pair, ok, err := s.store.Get(ctx, address)
		if err != nil {
			return "", fmt.Errorf("failed to load tokens: %w", err)
		}
		if ok && pair.HasAccess() {
			return pair.AccessToken, nil
		}
	}

	pair, ok, err := s.store.Latest(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load tokens: %w", err)
	}
	if !ok || !pair.HasAccess() {
		return "", core.ErrUnauthorized
	}

	return pair.AccessToken, nil
}

// TokenStatus reports whether a default bearer token is available and, when
// it is a JWT, when it expires.
func (s *RelayService) TokenStatus(ctx context.Context) (bool, time.Time) {
	pair, ok, err := s.store.Latest(ctx)
	if err != nil {
		s.log.WithError(err).Warn("failed to read token status")
		return false, time.Time{}
	}
	if !ok || !pair.HasAccess() {
		return false, time.Time{}
	}

	info, _ := s.inspect(pair.AccessToken)
	return true, info.ExpiresAt
}

func (s *RelayService) inspect(token string) (core.TokenInfo, bool) {
	if s.inspector == nil || token == "" {
		return core.TokenInfo{}, false
	}
	info, err := s.inspector.Inspect(token)
	if err != nil {
		return core.TokenInfo{}, false
	}
	return info, true
}

func (s *RelayService) publishLogin(ctx context.Context, address string, pair core.TokenPair) {
	if s.eventPub == nil {
		return
	}

	event := core.LoginEvent{
		Address:         address,
		HasAccessToken:  pair.AccessToken != "",
		HasRefreshToken: pair.RefreshToken != "",
		LoggedInAt:      s.now().UTC(),
	}
	if err := s.eventPub.PublishLogin(ctx, event); err != nil {
		// Tokens are already stored; the event is informational.
		s.log.WithError(err).Warn("failed to publish login event")
	}
}
