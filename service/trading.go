package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Yarielito06/Pearfect-Trading-App/core"
)

// PlacePairTrade opens a pair position for intent.Address. The token is
// resolved with explicit > wallet > latest precedence.
func (s *RelayService) PlacePairTrade(ctx context.Context, intent core.TradeIntent, explicitToken string) (*core.TradeResult, error) {
	token, err := s.ResolveToken(ctx, intent.Address, explicitToken)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"address":   intent.Address,
		"long":      intent.LongAsset(),
		"short":     intent.ShortAsset(),
		"usd_value": intent.Notional().String(),
		"leverage":  intent.Leverage,
	}).Info("placing pair trade")

	result, err := s.venue.OpenPosition(ctx, intent, token)
	if err != nil {
		return nil, fmt.Errorf("failed to open position: %w", err)
	}

	return result, nil
}

// ListPositions returns the venue's open positions. Venue rejections come
// back as an empty list, not as an error.
func (s *RelayService) ListPositions(ctx context.Context, address, explicitToken string) (json.RawMessage, error) {
	token, err := s.ResolveToken(ctx, address, explicitToken)
	if err != nil {
		return nil, err
	}

	positions, err := s.venue.ListPositions(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	return positions, nil
}

// ClosePosition closes positionID on the venue.
func (s *RelayService) ClosePosition(ctx context.Context, positionID, address, explicitToken string) (json.RawMessage, error) {
	token, err := s.ResolveToken(ctx, address, explicitToken)
	if err != nil {
		return nil, err
	}

	s.log.WithField("position_id", positionID).Info("closing position")

	result, err := s.venue.ClosePosition(ctx, positionID, token)
	if err != nil {
		return nil, fmt.Errorf("failed to close position: %w", err)
	}

	return result, nil
}
