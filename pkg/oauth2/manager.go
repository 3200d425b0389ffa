package oauth2

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidState = errors.New("invalid oauth2 state")

// ManagerConfig contains configuration for the OAuth2 manager
type ManagerConfig struct {
	// StateTimeout is the duration for which state parameters are valid
	StateTimeout time.Duration
	// CheckState enables the anti-CSRF state round trip. When false the
	// authorization URL carries no state and callbacks are not checked.
	CheckState bool
	// StateStorage defaults to an in-memory store.
	StateStorage StateStorage
}

// DefaultManagerConfig returns a secure default configuration
func DefaultManagerConfig() *ManagerConfig {
	return &ManagerConfig{
		StateTimeout: 10 * time.Minute,
		CheckState:   true,
	}
}

// CallbackResult is what a successful callback yields: the credentials the
// tokens were issued to and the tokens themselves.
type CallbackResult struct {
	Credentials ClientCredentials
	Tokens      TokenSet
}

// Manager drives the authorization code flow for one set of client
// credentials. Credentials that failed to load are kept as an error so the
// process can still start and report the problem per request.
type Manager struct {
	provider     *GoogleProvider
	creds        ClientCredentials
	credErr      error
	stateStorage StateStorage
	stateTimeout time.Duration
	checkState   bool
	now          func() time.Time
}

func NewManager(provider *GoogleProvider, creds ClientCredentials, credErr error, cfg *ManagerConfig) *Manager {
	defaultCfg := DefaultManagerConfig()
	if cfg == nil {
		cfg = defaultCfg
	}
	if cfg.StateTimeout == 0 {
		cfg.StateTimeout = defaultCfg.StateTimeout
	}

	storage := cfg.StateStorage
	if storage == nil {
		storage = NewInMemoryStorage()
	}

	return &Manager{
		provider:     provider,
		creds:        creds,
		credErr:      credErr,
		stateStorage: storage,
		stateTimeout: cfg.StateTimeout,
		checkState:   cfg.CheckState,
		now:          time.Now,
	}
}

// Credentials returns the loaded client credentials, or ErrConfiguration.
func (m *Manager) Credentials() (ClientCredentials, error) {
	if m.credErr != nil {
		return ClientCredentials{}, m.credErr
	}
	if err := m.creds.Validate(); err != nil {
		return ClientCredentials{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return m.creds, nil
}

func (m *Manager) Provider() *GoogleProvider {
	return m.provider
}

// GetAuthURL generates the authorization URL, minting and storing a fresh
// state when state checking is on.
func (m *Manager) GetAuthURL(ctx context.Context) (string, error) {
	creds, err := m.Credentials()
	if err != nil {
		return "", err
	}

	if !m.checkState {
		return m.provider.AuthURL(creds, ""), nil
	}

	state, err := GenerateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	if err := m.stateStorage.SaveState(ctx, state, m.now().Add(m.stateTimeout)); err != nil {
		return "", fmt.Errorf("failed to save state: %w", err)
	}

	return m.provider.AuthURL(creds, state), nil
}

// HandleCallback validates the state and exchanges the code for tokens.
// The state is consumed before the exchange, so a replayed callback fails
// even when the first exchange did too.
func (m *Manager) HandleCallback(ctx context.Context, code, state string) (*CallbackResult, error) {
	creds, err := m.Credentials()
	if err != nil {
		return nil, err
	}

	if m.checkState {
		if state == "" {
			return nil, fmt.Errorf("%w: missing state", ErrInvalidState)
		}
		if err := m.stateStorage.ConsumeState(ctx, state); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
		}
	}

	tokens, err := m.provider.Exchange(ctx, creds, code)
	if err != nil {
		return nil, err
	}

	return &CallbackResult{Credentials: creds, Tokens: *tokens}, nil
}

// Cleanup cleans up storage resources
func (m *Manager) Cleanup() {
	m.stateStorage.Cleanup()
}
