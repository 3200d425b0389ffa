package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"gscgateway/internal/cfg"
	"gscgateway/pkg/cache"
	"gscgateway/pkg/logger"
	"gscgateway/pkg/oauth2"
)

// InitOAuth2 builds the OAuth2 manager for the Google provider.
// Credentials that fail to load do not stop startup: the manager keeps the
// error and every login or callback reports it until the file is fixed and
// the process restarted.
func InitOAuth2(ctx context.Context, config *cfg.Config, stateCache cache.Cache, l logger.Logger) (*oauth2.Manager, error) {
	httpClient := &http.Client{Timeout: config.SearchConsole.Timeout}

	opts := []oauth2.ProviderOption{oauth2.WithHTTPClient(httpClient)}
	if config.OAuth2.Issuer != "" {
		endpoint, err := oauth2.DiscoverEndpoint(ctx, config.OAuth2.Issuer, httpClient)
		if err != nil {
			return nil, fmt.Errorf("oauth2 discovery: %w", err)
		}
		opts = append(opts, oauth2.WithEndpoint(endpoint))
	}
	provider := oauth2.NewGoogleProvider(opts...)

	creds, source, credErr := oauth2.LoadClientCredentials(
		config.OAuth2.CredentialsPaths,
		config.OAuth2.CredentialsEnv,
		config.RedirectURI(),
	)
	if credErr != nil {
		l.Error(ctx, "Google client credentials unavailable",
			logger.Field{Key: "source", Value: source},
			logger.Err(credErr),
		)
	} else {
		l.Info(ctx, "Google client credentials loaded",
			logger.Field{Key: "source", Value: source},
			logger.Field{Key: "redirect_uri", Value: creds.RedirectURI},
		)
	}

	managerConfig := &oauth2.ManagerConfig{
		StateTimeout: config.OAuth2.StateTimeout,
		CheckState:   config.OAuth2.StateCheck,
	}
	if stateCache != nil {
		managerConfig.StateStorage = oauth2.NewRedisStorage(stateCache)
	}

	return oauth2.NewManager(provider, creds, credErr, managerConfig), nil
}
