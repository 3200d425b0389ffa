package oauth2

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// DiscoverEndpoint resolves the authorization and token endpoints of issuer
// through OpenID Connect discovery.
func DiscoverEndpoint(ctx context.Context, issuer string, client *http.Client) (oauth2.Endpoint, error) {
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return oauth2.Endpoint{}, fmt.Errorf("discover %s: %w", issuer, err)
	}

	endpoint := provider.Endpoint()
	if endpoint.AuthURL == "" || endpoint.TokenURL == "" {
		return oauth2.Endpoint{}, fmt.Errorf("discover %s: incomplete provider metadata", issuer)
	}
	return endpoint, nil
}
