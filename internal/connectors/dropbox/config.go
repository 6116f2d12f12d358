package dropbox

import (
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

// DefaultMaxContentSize is the largest file FetchBytes will download.
const DefaultMaxContentSize int64 = 32 << 20

// DefaultPageSize is the number of entries requested per list_folder page.
const DefaultPageSize uint32 = 500

// DefaultHTTPTimeout bounds a single Dropbox API request, body included.
const DefaultHTTPTimeout = 60 * time.Second

// Config holds the credentials and limits for a Source.
type Config struct {
	// AccessToken is a long-lived access token. Used when no refresh
	// token is configured.
	AccessToken string

	// RefreshToken, AppKey and AppSecret enable the offline token flow.
	RefreshToken string
	AppKey       string
	AppSecret    string

	// MaxContentSize caps downloads. Zero means DefaultMaxContentSize.
	MaxContentSize int64

	// PageSize is the list_folder page limit. Zero means DefaultPageSize.
	PageSize uint32

	// RateLimit tunes the request limiter. Zero means DefaultRateLimit.
	RateLimit RateLimitConfig

	// HTTPTimeout bounds each API request. Zero means DefaultHTTPTimeout.
	HTTPTimeout time.Duration
}

// Validate checks that one complete credential set is present.
func (c Config) Validate() error {
	if c.RefreshToken != "" {
		if c.AppKey == "" || c.AppSecret == "" {
			return fmt.Errorf("%w: dropbox refresh token requires app key and app secret", domain.ErrConfigMissing)
		}
		return nil
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: dropbox access token or refresh token", domain.ErrConfigMissing)
	}
	return nil
}

func (c Config) maxContentSize() int64 {
	if c.MaxContentSize <= 0 {
		return DefaultMaxContentSize
	}
	return c.MaxContentSize
}

func (c Config) pageSize() uint32 {
	if c.PageSize == 0 {
		return DefaultPageSize
	}
	return c.PageSize
}

func (c Config) httpTimeout() time.Duration {
	if c.HTTPTimeout <= 0 {
		return DefaultHTTPTimeout
	}
	return c.HTTPTimeout
}
