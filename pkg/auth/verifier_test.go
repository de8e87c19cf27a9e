package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"careerkit/pkg/auth"
	"careerkit/pkg/utils"
)

func wellFormedToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("local-test-key"))
	require.NoError(t, err)
	return signed
}

func newVerifier(baseURL string) auth.Verifier {
	return auth.NewVerifier(auth.VerifierConfig{
		BaseURL: baseURL,
		APIKey:  "service-key",
		Timeout: time.Second,
	}, zap.NewNop())
}

func TestVerifyRejectsMalformedTokensWithoutNetworkCall(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	verifier := newVerifier(server.URL)

	for _, token := range []string{"", "garbage", "only.two", "a.b.c.d"} {
		_, err := verifier.Verify(context.Background(), token)
		assert.ErrorIs(t, err, utils.ErrTokenMalformed, "token %q", token)
	}
	assert.Zero(t, hits, "shape rejection must not spend a round trip")
}

func TestVerifyReturnsPrincipalOnSuccess(t *testing.T) {
	token := wellFormedToken(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "3f1c7b1e-8a55-4f7a-9a61-0d2f8f0a1b2c",
			"email": "dev@example.com",
			"user_metadata": {"full_name": "Dev Example"}
		}`))
	}))
	defer server.Close()

	principal, err := newVerifier(server.URL).Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "3f1c7b1e-8a55-4f7a-9a61-0d2f8f0a1b2c", principal.ID)
	assert.Equal(t, "dev@example.com", principal.Email)
	assert.Equal(t, "Dev Example", principal.DisplayName())
}

func TestVerifyMapsRejectionToSessionInvalid(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := newVerifier(server.URL).Verify(context.Background(), wellFormedToken(t))
		assert.ErrorIs(t, err, utils.ErrSessionInvalid, "status %d", status)
		server.Close()
	}
}

func TestVerifyMapsServerErrorToUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newVerifier(server.URL).Verify(context.Background(), wellFormedToken(t))
	assert.ErrorIs(t, err, utils.ErrIdentityUnavailable)
}

func TestVerifyUnreachableProviderIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	_, err := newVerifier(server.URL).Verify(context.Background(), wellFormedToken(t))
	assert.ErrorIs(t, err, utils.ErrIdentityUnavailable)
}

func TestDisplayNameFallbackChain(t *testing.T) {
	cases := []struct {
		name      string
		principal auth.Principal
		want      string
	}{
		{
			"full_name wins",
			auth.Principal{ID: "id-1", Email: "a@b.c", Metadata: map[string]interface{}{"full_name": "Full Name", "name": "Short"}},
			"Full Name",
		},
		{
			"name next",
			auth.Principal{ID: "id-1", Email: "a@b.c", Metadata: map[string]interface{}{"name": "Short"}},
			"Short",
		},
		{
			"email next",
			auth.Principal{ID: "id-1", Email: "a@b.c", Metadata: map[string]interface{}{}},
			"a@b.c",
		},
		{
			"id last",
			auth.Principal{ID: "id-1", Metadata: map[string]interface{}{}},
			"id-1",
		},
		{
			"empty strings are skipped",
			auth.Principal{ID: "id-1", Email: "a@b.c", Metadata: map[string]interface{}{"full_name": ""}},
			"a@b.c",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.principal.DisplayName())
		})
	}
}
