package venue

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Yarielito06/Pearfect-Trading-App/core"
	"github.com/Yarielito06/Pearfect-Trading-App/ports"
)

var _ ports.Venue = (*Client)(nil)

const (
	DefaultBaseURL  = "https://hl-v2.pearprotocol.io"
	DefaultClientID = "APITRADER"
	DefaultTimeout  = 10 * time.Second
)

// Config configures the venue client.
type Config struct {
	BaseURL  string
	ClientID string
	Timeout  time.Duration

	// CloseMethod and ClosePath describe the venue's close-position call.
	// ClosePath may contain an {id} placeholder. An empty ClosePath disables
	// closing.
	CloseMethod string
	ClosePath   string
}

// Call is one outbound venue request.
type Call struct {
	Method string
	Path   string
	Query  map[string]string
	Body   any
}

// Client talks to the venue HTTP API.
type Client struct {
	http *resty.Client
	cfg  Config
	log  *logrus.Entry
}

// NewClient creates a venue client. Zero config fields fall back to defaults.
func NewClient(cfg Config, log *logrus.Entry) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CloseMethod == "" {
		cfg.CloseMethod = http.MethodPost
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "pearrelay")

	return &Client{
		http: client,
		cfg:  cfg,
		log:  log.WithField("venue", cfg.BaseURL),
	}
}

// ClientID returns the client identifier sent on auth calls.
func (c *Client) ClientID() string {
	return c.cfg.ClientID
}

// Forward issues call with an Authorization: Bearer header. An empty token
// fails with core.ErrUnauthorized before anything is sent.
func (c *Client) Forward(ctx context.Context, call Call, token string) (*resty.Response, error) {
	if token == "" {
		return nil, core.ErrUnauthorized
	}
	return c.execute(c.request(ctx, call).SetAuthToken(token), call)
}

func (c *Client) request(ctx context.Context, call Call) *resty.Request {
	r := c.http.R().SetContext(ctx)
	if len(call.Query) > 0 {
		r.SetQueryParams(call.Query)
	}
	if call.Body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(call.Body)
	}
	return r
}

func (c *Client) execute(r *resty.Request, call Call) (*resty.Response, error) {
	start := time.Now()
	resp, err := r.Execute(call.Method, call.Path)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"method": call.Method,
			"path":   call.Path,
		}).Warn("venue request failed")
		return nil, &core.TransportError{Op: call.Method + " " + call.Path, Err: err}
	}

	c.log.WithFields(logrus.Fields{
		"method":  call.Method,
		"path":    call.Path,
		"status":  resp.StatusCode(),
		"latency": time.Since(start),
	}).Debug("venue response")

	return resp, nil
}

// upstreamError builds an UpstreamError from a non-success response.
func upstreamError(resp *resty.Response) error {
	return &core.UpstreamError{
		StatusCode: resp.StatusCode(),
		Body:       resp.String(),
	}
}

// rawJSON returns the response body as JSON, rejecting anything that is not.
func rawJSON(resp *resty.Response) (json.RawMessage, error) {
	body := resp.Body()
	if len(body) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(body) {
		return nil, errors.Errorf("venue returned non-JSON body (status %d): %s", resp.StatusCode(), truncate(string(body), 200))
	}
	return json.RawMessage(body), nil
}

// TokenPrefix shortens a token for log output.
func TokenPrefix(token string) string {
	return truncate(token, 20)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
