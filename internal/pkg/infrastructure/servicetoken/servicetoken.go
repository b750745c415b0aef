package servicetoken

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenSource hands out bearer tokens for outbound calls to the device registry and the
// capture ledger. Implementations must be safe for concurrent use.
type TokenSource interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

const exchangeTimeout time.Duration = 10 * time.Second

type clientCredentials struct {
	cfg        clientcredentials.Config
	httpClient *http.Client
}

// New returns a TokenSource that performs a client credentials exchange against tokenURL
// every time a token is requested.
func New(tokenURL, clientID, clientSecret string) TokenSource {
	return &clientCredentials{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		},
		httpClient: &http.Client{
			Timeout:   exchangeTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *clientCredentials) Token(ctx context.Context) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.cfg.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve service token: %w", err)
	}

	if !token.Valid() {
		return nil, fmt.Errorf("received an invalid service token")
	}

	return token, nil
}

type static struct {
	token string
}

// Static returns a TokenSource that always hands out the same access token.
func Static(accessToken string) TokenSource {
	return &static{token: accessToken}
}

func (s *static) Token(ctx context.Context) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}, nil
}
