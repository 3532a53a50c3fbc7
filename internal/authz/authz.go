// Package authz resolves the authenticated user for a request.
package authz

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned when a request carries no usable identity.
var ErrUnauthorized = errors.New("unauthorized")

const (
	devBypassHeader      = "x-user-sub"
	devBypassEmailHeader = "x-user-email"
	principalKey         = "authz.principal"
)

// Principal is the verified user behind a request.
type Principal struct {
	Username string
	Email    string
}

// CognitoClaims are the ID token claims the portal relies on.
type CognitoClaims struct {
	Username string `json:"cognito:username"`
	Email    string `json:"email"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenVerifier turns a raw bearer token into a Principal.
type TokenVerifier interface {
	Verify(raw string) (Principal, error)
}

// Verifier checks Cognito ID tokens.
type Verifier struct {
	keyfunc  jwt.Keyfunc
	issuer   string
	clientID string
	methods  []string
}

// NewVerifier builds a Verifier from an explicit key function. methods defaults to RS256.
func NewVerifier(kf jwt.Keyfunc, issuer, clientID string, methods ...string) *Verifier {
	if len(methods) == 0 {
		methods = []string{"RS256"}
	}
	return &Verifier{keyfunc: kf, issuer: issuer, clientID: clientID, methods: methods}
}

// NewCognitoVerifier fetches the user pool JWKS and keeps it refreshed.
func NewCognitoVerifier(region, userPoolID, clientID string, log *slog.Logger) (*Verifier, error) {
	issuer := fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
	jwks, err := keyfunc.Get(issuer+"/.well-known/jwks.json", keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshTimeout:    10 * time.Second,
		RefreshRateLimit:  5 * time.Minute,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Error("refreshing JWKS", "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("load jwks: %w", err)
	}
	return NewVerifier(jwks.Keyfunc, issuer, clientID), nil
}

// Verify validates signature, issuer, audience, expiry and token use.
func (v *Verifier) Verify(raw string) (Principal, error) {
	claims := &CognitoClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, v.keyfunc,
		jwt.WithValidMethods(v.methods),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.TokenUse != "id" {
		return Principal{}, fmt.Errorf("%w: token_use %q", ErrUnauthorized, claims.TokenUse)
	}
	username := claims.Username
	if username == "" {
		username = claims.Subject
	}
	if username == "" {
		return Principal{}, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return Principal{Username: username, Email: claims.Email}, nil
}

// FromRequest extracts the caller, honouring the dev bypass header when enabled.
func FromRequest(r *http.Request, v TokenVerifier, devBypass bool) (Principal, error) {
	// 0) Dev bypass header
	if devBypass {
		if sub := strings.TrimSpace(r.Header.Get(devBypassHeader)); sub != "" {
			return Principal{Username: sub, Email: strings.TrimSpace(r.Header.Get(devBypassEmailHeader))}, nil
		}
	}

	// 1) Bearer ID token
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" || v == nil {
		return Principal{}, ErrUnauthorized
	}
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return Principal{}, fmt.Errorf("%w: malformed authorization header", ErrUnauthorized)
	}
	return v.Verify(strings.TrimSpace(token))
}

// Middleware records the caller on the gin context. It never aborts; handlers
// decide what an anonymous request may do.
func Middleware(v TokenVerifier, devBypass bool, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := FromRequest(c.Request, v, devBypass)
		switch {
		case err == nil:
			c.Set(principalKey, p)
		case err != ErrUnauthorized: // bare ErrUnauthorized means no credentials were sent
			log.Info("rejected credentials", "path", c.Request.URL.Path, "error", err)
		}
		c.Next()
	}
}

// PrincipalFrom returns the caller recorded by Middleware.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
