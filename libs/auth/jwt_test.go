package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signHS256 mints tokens the way the identity provider does.
func signHS256(t *testing.T, claims Claims, secret string) string {
	t.Helper()
	headerJSON, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	require.NoError(t, err)
	payloadJSON, err := json.Marshal(claims)
	require.NoError(t, err)

	unsigned := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payloadJSON)
	return unsigned + "." + hmacSHA256(unsigned, secret)
}

func TestParseAndVerifyHS256(t *testing.T) {
	now := time.Now()
	claims := Claims{
		Sub:   "prac-1",
		Email: "dr@example.com",
		Iat:   now.Unix(),
		Exp:   now.Add(time.Hour).Unix(),
	}
	token := signHS256(t, claims, "test-secret")

	parsed, err := ParseAndVerifyHS256(token, "test-secret", now)
	require.NoError(t, err)
	assert.Equal(t, claims.Sub, parsed.Sub)
	assert.Equal(t, claims.Email, parsed.Email)

	_, err = ParseAndVerifyHS256(token, "wrong-secret", now)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseAndVerifyHS256(token, "test-secret", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseAndVerifyHS256("not.a-token", "test-secret", now)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsMissingSubject(t *testing.T) {
	token := signHS256(t, Claims{Exp: time.Now().Add(time.Hour).Unix()}, "s")
	_, err := ParseAndVerifyHS256(token, "s", time.Now())
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequirePractitioner(t *testing.T) {
	secret := "test-secret"
	h := RequirePractitioner(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PractitionerFromContext(r.Context()) != "prac-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	token := signHS256(t, Claims{Sub: "prac-1", Exp: time.Now().Add(time.Hour).Unix()}, secret)
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	assert.Equal(t, http.StatusOK, rw.Code)

	reqBad := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	reqBad.Header.Set("Authorization", "Bearer badtoken")
	reqBad.Header.Set(PractitionerHeader, "prac-1")
	rwBad := httptest.NewRecorder()
	h.ServeHTTP(rwBad, reqBad)
	assert.Equal(t, http.StatusUnauthorized, rwBad.Code)
}

func TestRequirePractitionerDevHeader(t *testing.T) {
	h := RequirePractitioner("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(PractitionerFromContext(r.Context())))
	}))

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set(PractitionerHeader, "prac-dev")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	assert.Equal(t, "prac-dev", rw.Body.String())

	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "http://example.com", nil))
	assert.Equal(t, http.StatusUnauthorized, rw.Code)
}
