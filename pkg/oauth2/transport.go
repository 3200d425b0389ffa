package oauth2

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// expiryLeeway refreshes slightly early so a token does not lapse in flight.
const expiryLeeway = 10 * time.Second

// RefreshingTransport signs outbound requests with the current access token.
// With a refresh token it renews an expired token before sending, and on a
// 401 it refreshes once and replays the request once.
type RefreshingTransport struct {
	Base http.RoundTripper

	config *oauth2.Config
	client *http.Client
	now    func() time.Time

	mu    sync.Mutex
	token TokenSet
}

// Token returns the token currently in use.
func (t *RefreshingTransport) Token() TokenSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

func (t *RefreshingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.current(req.Context())
	if err != nil {
		closeBody(req)
		return nil, err
	}

	var replay *http.Request
	if tok.RefreshToken != "" {
		replay, _ = rewind(req)
	}

	resp, err := t.base().RoundTrip(sign(req, tok))
	if err != nil || resp.StatusCode != http.StatusUnauthorized || replay == nil {
		return resp, err
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	tok, err = t.refresh(req.Context(), tok.AccessToken)
	if err != nil {
		closeBody(replay)
		return nil, err
	}

	return t.base().RoundTrip(sign(replay, tok))
}

func (t *RefreshingTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *RefreshingTransport) current(ctx context.Context) (TokenSet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token.RefreshToken != "" && t.token.Expired(t.now(), expiryLeeway) {
		if err := t.refreshLocked(ctx); err != nil {
			return TokenSet{}, err
		}
	}
	return t.token, nil
}

// refresh renews the token unless another request already replaced stale.
func (t *RefreshingTransport) refresh(ctx context.Context, stale string) (TokenSet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token.AccessToken != stale {
		return t.token, nil
	}
	if err := t.refreshLocked(ctx); err != nil {
		return TokenSet{}, err
	}
	return t.token, nil
}

func (t *RefreshingTransport) refreshLocked(ctx context.Context) error {
	if t.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, t.client)
	}

	src := t.config.TokenSource(ctx, &oauth2.Token{RefreshToken: t.token.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTokenRefresh, err)
	}

	next := tokenSetFrom(tok)
	if next.RefreshToken == "" {
		next.RefreshToken = t.token.RefreshToken
	}
	t.token = next
	return nil
}

func sign(req *http.Request, tok TokenSet) *http.Request {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", tok.authorization())
	return r
}

// rewind prepares a second copy of req for a replay. Requests whose body
// cannot be re-read are not replayed.
func rewind(req *http.Request) (*http.Request, error) {
	r := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return r, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	r.Body = body
	return r, nil
}

func closeBody(req *http.Request) {
	if req != nil && req.Body != nil {
		req.Body.Close()
	}
}
