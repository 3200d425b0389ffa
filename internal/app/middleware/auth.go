package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gscgateway/internal/service/session"
	"gscgateway/pkg/logger"
)

const artifactKey = "gsc_session_artifact"

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrInvalidSession  = errors.New("invalid session")
)

// SessionDecoder turns a cookie value back into a session artifact.
type SessionDecoder interface {
	Decode(value string) (*session.Artifact, error)
}

// SessionGate rejects requests that do not carry a valid session cookie and
// hands the decoded artifact to the next handler. The browser is expected to
// send the user to the login route on a 401.
func SessionGate(codec SessionDecoder, l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		artifact, err := Authenticate(c, codec)
		if err != nil {
			ctx := c.Request.Context()
			if errors.Is(err, ErrUnauthenticated) {
				l.Info(ctx, "session missing", logger.Field{Key: "path", Value: c.Request.URL.Path})
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
				return
			}
			l.Warn(ctx, "session invalid",
				logger.Field{Key: "path", Value: c.Request.URL.Path},
				logger.Err(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		c.Set(artifactKey, artifact)
		c.Next()
	}
}

// Authenticate reads and decodes the session cookie without writing a
// response.
func Authenticate(c *gin.Context, codec SessionDecoder) (*session.Artifact, error) {
	value, err := c.Cookie(session.CookieName)
	if err != nil || value == "" {
		return nil, ErrUnauthenticated
	}

	artifact, err := codec.Decode(value)
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	return artifact, nil
}

// ArtifactFromContext returns the artifact stored by SessionGate.
func ArtifactFromContext(c *gin.Context) (*session.Artifact, bool) {
	v, ok := c.Get(artifactKey)
	if !ok {
		return nil, false
	}
	artifact, ok := v.(*session.Artifact)
	return artifact, ok && artifact != nil
}
