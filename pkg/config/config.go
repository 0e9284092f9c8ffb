package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/Yarielito06/Pearfect-Trading-App/adapters/builder"
	"github.com/Yarielito06/Pearfect-Trading-App/adapters/venue"
)

// Config is the relay configuration.
type Config struct {
	ListenAddr string

	VenueURL    string
	ClientID    string
	Timeout     time.Duration
	CloseMethod string
	ClosePath   string

	RedisURL string

	BuilderAddress    string
	BuilderMaxFeeRate string

	LogLevel string
	LogFile  string

	CORSOrigins []string
}

// Flags returns the CLI flags, each bound to its environment variable.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "listen", Value: ":8000", EnvVars: []string{"LISTEN_ADDR"}, Usage: "HTTP listen address"},
		&cli.StringFlag{Name: "venue-url", Value: venue.DefaultBaseURL, EnvVars: []string{"PEAR_API_URL"}, Usage: "venue API base URL"},
		&cli.StringFlag{Name: "client-id", Value: venue.DefaultClientID, EnvVars: []string{"CLIENT_ID"}, Usage: "client identifier sent to the venue"},
		&cli.DurationFlag{Name: "venue-timeout", Value: venue.DefaultTimeout, EnvVars: []string{"VENUE_TIMEOUT"}, Usage: "timeout for venue requests"},
		&cli.StringFlag{Name: "close-method", Value: "POST", EnvVars: []string{"VENUE_CLOSE_METHOD"}, Usage: "HTTP method of the venue close-position call"},
		&cli.StringFlag{Name: "close-path", EnvVars: []string{"VENUE_CLOSE_PATH"}, Usage: "path of the venue close-position call, {id} is replaced by the position id"},
		&cli.StringFlag{Name: "redis-url", EnvVars: []string{"REDIS_URL"}, Usage: "redis URL for tokens and events; empty keeps both in memory"},
		&cli.StringFlag{Name: "builder-address", Value: builder.DefaultAddress, EnvVars: []string{"BUILDER_ADDRESS"}, Usage: "builder address for fee approvals"},
		&cli.StringFlag{Name: "builder-max-fee-rate", Value: builder.DefaultMaxFeeRate, EnvVars: []string{"BUILDER_MAX_FEE_RATE"}, Usage: "max fee rate for builder approvals"},
		&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: []string{"LOG_LEVEL"}},
		&cli.StringFlag{Name: "log-file", EnvVars: []string{"LOG_FILE"}},
		&cli.StringSliceFlag{Name: "cors-origin", Value: cli.NewStringSlice("*"), EnvVars: []string{"CORS_ALLOWED_ORIGINS"}},
	}
}

// FromContext reads the flags into a Config.
func FromContext(c *cli.Context) Config {
	return Config{
		ListenAddr:        c.String("listen"),
		VenueURL:          c.String("venue-url"),
		ClientID:          c.String("client-id"),
		Timeout:           c.Duration("venue-timeout"),
		CloseMethod:       c.String("close-method"),
		ClosePath:         c.String("close-path"),
		RedisURL:          c.String("redis-url"),
		BuilderAddress:    c.String("builder-address"),
		BuilderMaxFeeRate: c.String("builder-max-fee-rate"),
		LogLevel:          c.String("log-level"),
		LogFile:           c.String("log-file"),
		CORSOrigins:       c.StringSlice("cors-origin"),
	}
}

// Validate checks the values the relay cannot start without.
func (c Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.VenueURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid venue url %q", c.VenueURL))
	}
	if strings.TrimSpace(c.ClientID) == "" {
		errs = append(errs, errors.New("client id is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("venue timeout must be positive, got %s", c.Timeout))
	}
	if c.BuilderAddress != "" && !common.IsHexAddress(c.BuilderAddress) {
		errs = append(errs, fmt.Errorf("invalid builder address %q", c.BuilderAddress))
	}
	if c.ClosePath != "" && !strings.HasPrefix(c.ClosePath, "/") {
		errs = append(errs, fmt.Errorf("close path must start with /, got %q", c.ClosePath))
	}

	return errors.Join(errs...)
}

// VenueConfig returns the venue client settings.
func (c Config) VenueConfig() venue.Config {
	return venue.Config{
		BaseURL:     c.VenueURL,
		ClientID:    c.ClientID,
		Timeout:     c.Timeout,
		CloseMethod: c.CloseMethod,
		ClosePath:   c.ClosePath,
	}
}
