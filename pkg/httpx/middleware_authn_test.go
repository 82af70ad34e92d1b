package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/messagely/messagely/pkg/httpx"
	"github.com/messagely/messagely/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func protected(t *testing.T, reached *bool) http.Handler {
	t.Helper()
	verifier, err := jwtx.NewVerifierHS256(secret, "messagely")
	require.NoError(t, err)

	return httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*reached = true
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(httpx.UsernameFromCtx(r.Context())))
		}),
		httpx.AuthnMiddleware(verifier),
	)
}

func TestAuthnMiddlewareAcceptsValidToken(t *testing.T) {
	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	token, err := signer.Sign(jwtx.NewIdentityClaims("alice", "messagely", time.Now().UTC()))
	require.NoError(t, err)

	var reached bool
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	protected(t, &reached).ServeHTTP(rec, req)

	require.True(t, reached)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice", rec.Body.String())
}

func TestAuthnMiddlewareRejectsTamperedToken(t *testing.T) {
	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	token, err := signer.Sign(jwtx.NewIdentityClaims("alice", "messagely", time.Now().UTC()))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	var reached bool
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tampered)

	protected(t, &reached).ServeHTTP(rec, req)

	// The handler (and with it any policy check) must never run.
	require.False(t, reached)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
}

func TestAuthnMiddlewareRejectsMissingToken(t *testing.T) {
	var reached bool
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	protected(t, &reached).ServeHTTP(rec, req)

	require.False(t, reached)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
