package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kylejryan/artisan-request-portal/internal/logging"
)

const (
	testIssuer   = "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_test"
	testClientID = "portal-client"
)

var testKey = []byte("test-signing-key")

func testVerifier() *Verifier {
	return NewVerifier(func(*jwt.Token) (any, error) { return testKey, nil }, testIssuer, testClientID, "HS256")
}

func sign(t *testing.T, claims CognitoClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	require.NoError(t, err)
	return s
}

func validClaims() CognitoClaims {
	return CognitoClaims{
		Username: "jane",
		Email:    "jane@example.com",
		TokenUse: "id",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "5f1c-sub",
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testClientID},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerifyValidToken(t *testing.T) {
	p, err := testVerifier().Verify(sign(t, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, Principal{Username: "jane", Email: "jane@example.com"}, p)
}

func TestVerifyFallsBackToSubject(t *testing.T) {
	c := validClaims()
	c.Username = ""

	p, err := testVerifier().Verify(sign(t, c))
	require.NoError(t, err)
	assert.Equal(t, "5f1c-sub", p.Username)
}

func TestVerifyRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CognitoClaims)
	}{
		{"expired", func(c *CognitoClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute)) }},
		{"no expiry", func(c *CognitoClaims) { c.ExpiresAt = nil }},
		{"wrong issuer", func(c *CognitoClaims) { c.Issuer = "https://evil.example.com" }},
		{"wrong audience", func(c *CognitoClaims) { c.Audience = jwt.ClaimStrings{"other-client"} }},
		{"access token", func(c *CognitoClaims) { c.TokenUse = "access" }},
		{"no subject", func(c *CognitoClaims) { c.Username, c.Subject = "", "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validClaims()
			tt.mutate(&c)
			_, err := testVerifier().Verify(sign(t, c))
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("other-key"))
	require.NoError(t, err)

	_, err = testVerifier().Verify(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFromRequest(t *testing.T) {
	token := sign(t, validClaims())
	tests := []struct {
		name      string
		headers   map[string]string
		devBypass bool
		want      Principal
		wantErr   bool
	}{
		{name: "bearer", headers: map[string]string{"Authorization": "Bearer " + token}, want: Principal{Username: "jane", Email: "jane@example.com"}},
		{name: "lowercase scheme", headers: map[string]string{"Authorization": "bearer " + token}, want: Principal{Username: "jane", Email: "jane@example.com"}},
		{name: "no header", wantErr: true},
		{name: "basic scheme", headers: map[string]string{"Authorization": "Basic amFuZTpwdw=="}, wantErr: true},
		{name: "bypass disabled", headers: map[string]string{"X-User-Sub": "mallory"}, wantErr: true},
		{name: "bypass enabled", headers: map[string]string{"X-User-Sub": "dev", "X-User-Email": "dev@example.com"}, devBypass: true, want: Principal{Username: "dev", Email: "dev@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/home", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			p, err := FromRequest(r, testVerifier(), tt.devBypass)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestFromRequestWithoutVerifier(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/home", nil)
	r.Header.Set("Authorization", "Bearer abc")

	_, err := FromRequest(r, nil, false)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMiddlewareSetsPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(testVerifier(), false, logging.Discard()))
	router.GET("/whoami", func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.String(http.StatusUnauthorized, "anonymous")
			return
		}
		c.String(http.StatusOK, p.Username)
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.Header.Set("Authorization", "Bearer "+sign(t, validClaims()))
	router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
