package dropbox

import (
	"context"
	"net/http"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"golang.org/x/oauth2"
)

// sdkConfig builds the SDK configuration for the configured credentials.
// The SDK builds requests without a context, so every request, token
// refreshes included, goes through a client bounded by HTTPTimeout.
func sdkConfig(ctx context.Context, cfg Config) dropbox.Config {
	return dropbox.Config{
		Token:    cfg.AccessToken,
		LogLevel: dropbox.LogOff,
		Client:   httpClient(ctx, cfg),
	}
}

// httpClient returns an authorising client. With a refresh token it
// exchanges it for short-lived access tokens against the Dropbox token
// endpoint.
func httpClient(ctx context.Context, cfg Config) *http.Client {
	base := &http.Client{Timeout: cfg.httpTimeout()}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	var src oauth2.TokenSource
	if cfg.RefreshToken == "" {
		src = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
	} else {
		conf := &oauth2.Config{
			ClientID:     cfg.AppKey,
			ClientSecret: cfg.AppSecret,
			Endpoint:     dropbox.OAuthEndpoint(""),
		}
		src = conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	}

	// NewClient takes only the transport from base.
	client := oauth2.NewClient(ctx, src)
	client.Timeout = base.Timeout
	return client
}
