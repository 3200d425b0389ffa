package session

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"

	"gscgateway/pkg/oauth2"
)

const minSecretLength = 32

// Codec seals artifacts as compact JWE (dir, A256GCM) so the cookie is both
// confidential and tamper evident.
type Codec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d characters", minSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	key := sha256.Sum256([]byte(secret))
	return &Codec{key: key[:], ttl: ttl, now: time.Now}, nil
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode packs credentials and tokens into an opaque cookie value.
func (c *Codec) Encode(creds oauth2.ClientCredentials, tokens oauth2.TokenSet) (string, error) {
	now := c.now().UTC()
	return c.seal(&Artifact{
		Credentials: creds,
		Tokens:      tokens,
		IssuedAt:    now,
		ExpiresAt:   now.Add(c.ttl),
	})
}

func (c *Codec) seal(a *Artifact) (string, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("marshal artifact: %w", err)
	}

	enc, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: c.key},
		(&jose.EncrypterOptions{}).WithContentType("application/json"),
	)
	if err != nil {
		return "", fmt.Errorf("create encrypter: %w", err)
	}

	obj, err := enc.Encrypt(payload)
	if err != nil {
		return "", fmt.Errorf("encrypt artifact: %w", err)
	}
	return obj.CompactSerialize()
}

// Decode is the inverse of Encode. Anything short of a well-formed,
// unexpired artifact yields ErrMalformedSession.
func (c *Codec) Decode(value string) (*Artifact, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedSession)
	}

	obj, err := jose.ParseEncrypted(value,
		[]jose.KeyAlgorithm{jose.DIRECT},
		[]jose.ContentEncryption{jose.A256GCM},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSession, err)
	}

	payload, err := obj.Decrypt(c.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSession, err)
	}

	var a Artifact
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSession, err)
	}
	if err := a.validate(c.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSession, err)
	}
	return &a, nil
}
