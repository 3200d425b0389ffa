package oauth2

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultHTTPTimeout = 30 * time.Second

// GoogleProvider talks to Google's OAuth2 endpoints on behalf of a set of
// client credentials. It holds no per-user state and is safe for concurrent use.
type GoogleProvider struct {
	endpoint      oauth2.Endpoint
	forceEndpoint bool
	scopes        []string
	httpClient    *http.Client
	now           func() time.Time
}

type ProviderOption func(*GoogleProvider)

// WithEndpoint pins the authorization and token endpoints, ignoring the URIs
// carried in the client secret bundle.
func WithEndpoint(e oauth2.Endpoint) ProviderOption {
	return func(g *GoogleProvider) {
		g.endpoint = e
		g.forceEndpoint = true
	}
}

// WithHTTPClient sets the client used for token calls and as the base of
// authenticated API clients.
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(g *GoogleProvider) { g.httpClient = c }
}

func withClock(now func() time.Time) ProviderOption {
	return func(g *GoogleProvider) { g.now = now }
}

func NewGoogleProvider(opts ...ProviderOption) *GoogleProvider {
	g := &GoogleProvider{
		endpoint:   google.Endpoint,
		scopes:     []string{ScopeWebmastersReadonly},
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GoogleProvider) config(creds ClientCredentials) *oauth2.Config {
	endpoint := g.endpoint
	if !g.forceEndpoint {
		if creds.AuthURI != "" {
			endpoint.AuthURL = creds.AuthURI
		}
		if creds.TokenURI != "" {
			endpoint.TokenURL = creds.TokenURI
		}
	}

	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Endpoint:     endpoint,
		Scopes:       g.scopes,
	}
}

func (g *GoogleProvider) tokenContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

// AuthURL builds the consent screen URL. An empty state is left out of the
// query, so the result then depends on the credentials alone.
func (g *GoogleProvider) AuthURL(creds ClientCredentials, state string) string {
	return g.config(creds).AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// Exchange trades a single-use authorization code for tokens. Failures are
// never retried since the code is consumed by the first attempt.
func (g *GoogleProvider) Exchange(ctx context.Context, creds ClientCredentials, code string) (*TokenSet, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty authorization code", ErrAuthExchange)
	}
	if creds.RedirectURI == "" {
		return nil, fmt.Errorf("%w: redirect uri is required for code exchange", ErrConfiguration)
	}

	tok, err := g.config(creds).Exchange(g.tokenContext(ctx), code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorCode != "" {
			return nil, fmt.Errorf("%w: provider rejected code: %s", ErrAuthExchange, re.ErrorCode)
		}
		return nil, fmt.Errorf("%w: %w", ErrAuthExchange, err)
	}

	ts := tokenSetFrom(tok)
	return &ts, nil
}

// Client returns an HTTP client that signs requests with tokens and, when a
// refresh token is present, renews the access token transparently.
func (g *GoogleProvider) Client(creds ClientCredentials, tokens TokenSet) *http.Client {
	base := g.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &http.Client{
		Timeout: g.httpClient.Timeout,
		Transport: &RefreshingTransport{
			Base:   base,
			config: g.config(creds),
			client: g.httpClient,
			token:  tokens,
			now:    g.now,
		},
	}
}
