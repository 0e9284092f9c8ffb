package venue

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Yarielito06/Pearfect-Trading-App/core"
)

const (
	pathEIP712Message = "/auth/eip712-message"
	pathLogin         = "/auth/login"

	authMethodEIP712 = "eip712"
)

type loginRequest struct {
	Method   string       `json:"method"`
	Address  string       `json:"address"`
	ClientID string       `json:"clientId"`
	Details  loginDetails `json:"details"`
}

type loginDetails struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
}

// SigningChallenge fetches the EIP-712 message the wallet has to sign. The
// body is returned exactly as the venue sent it.
func (c *Client) SigningChallenge(ctx context.Context, address string) (json.RawMessage, error) {
	call := Call{
		Method: http.MethodGet,
		Path:   pathEIP712Message,
		Query: map[string]string{
			"address":  address,
			"clientId": c.cfg.ClientID,
		},
	}

	resp, err := c.execute(c.request(ctx, call), call)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, upstreamError(resp)
	}

	return rawJSON(resp)
}

// Login exchanges a wallet signature for a venue token pair. Only 200 and
// 201 count as success.
func (c *Client) Login(ctx context.Context, address, signature string, timestamp int64) (*core.LoginResult, error) {
	call := Call{
		Method: http.MethodPost,
		Path:   pathLogin,
		Body: loginRequest{
			Method:   authMethodEIP712,
			Address:  address,
			ClientID: c.cfg.ClientID,
			Details: loginDetails{
				Signature: signature,
				Timestamp: timestamp,
			},
		},
	}

	resp, err := c.execute(c.request(ctx, call), call)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return nil, upstreamError(resp)
	}

	var raw map[string]any
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, errors.Wrapf(err, "decode login response (status %d)", resp.StatusCode())
	}

	result := &core.LoginResult{
		Tokens: core.TokenPair{
			AccessToken:  stringField(raw, "accessToken"),
			RefreshToken: stringField(raw, "refreshToken"),
		},
		Raw: raw,
	}

	c.log.WithFields(logrus.Fields{
		"address":      address,
		"access_token": TokenPrefix(result.Tokens.AccessToken),
	}).Info("venue login succeeded")

	return result, nil
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
