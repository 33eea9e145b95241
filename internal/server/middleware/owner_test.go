package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownerEchoHandler(t *testing.T, got *uuid.UUID) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := OwnerFromContext(r.Context())
		require.True(t, ok)
		*got = id
		w.WriteHeader(http.StatusOK)
	})
}

func TestResolveOwner_ValidToken(t *testing.T) {
	verifier := NewOwnerVerifier("test-secret")
	owner := uuid.New()
	token, err := verifier.Sign(owner)
	require.NoError(t, err)

	var got uuid.UUID
	handler := ResolveOwner(verifier)(ownerEchoHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/journeys", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, owner, got)
}

func TestResolveOwner_MissingHeader(t *testing.T) {
	verifier := NewOwnerVerifier("test-secret")
	handler := ResolveOwner(verifier)(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/journeys", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResolveOwner_BadToken(t *testing.T) {
	verifier := NewOwnerVerifier("test-secret")
	handler := ResolveOwner(verifier)(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/journeys", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResolveOwner_WrongSecret(t *testing.T) {
	owner := uuid.New()
	token, err := NewOwnerVerifier("other-secret").Sign(owner)
	require.NoError(t, err)

	handler := ResolveOwner(NewOwnerVerifier("test-secret"))(http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodGet, "/journeys", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResolveOwner_DevModeHeader(t *testing.T) {
	verifier := NewOwnerVerifier("")
	require.True(t, verifier.DevMode())
	owner := uuid.New()

	var got uuid.UUID
	handler := ResolveOwner(verifier)(ownerEchoHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/journeys", nil)
	req.Header.Set("X-Owner-ID", owner.String())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, owner, got)
}

func TestResolveOwner_DevModeMissingHeader(t *testing.T) {
	handler := ResolveOwner(NewOwnerVerifier(""))(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/journeys", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
