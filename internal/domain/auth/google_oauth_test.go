package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/vita/pkg/errors"
)

func newDiscoveryServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/auth",
			"token_endpoint":         srv.URL + "/token",
			"jwks_uri":               srv.URL + "/keys",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestService_IDTokenVerifierIsPerService(t *testing.T) {
	var hits atomic.Int32
	srv := newDiscoveryServer(t, &hits)

	first := newTestService(newMemoryRepo())
	first.issuer = srv.URL
	first.cfg.Google.ClientID = "client-a"
	second := newTestService(newMemoryRepo())
	second.issuer = srv.URL
	second.cfg.Google.ClientID = "client-b"

	v1, err := first.idTokenVerifier(context.Background())
	require.NoError(t, err)
	again, err := first.idTokenVerifier(context.Background())
	require.NoError(t, err)
	require.Same(t, v1, again)
	require.Equal(t, int32(1), hits.Load())

	v2, err := second.idTokenVerifier(context.Background())
	require.NoError(t, err)
	require.NotSame(t, v1, v2)
	require.Equal(t, int32(2), hits.Load())
}

func TestService_IDTokenVerifierRetriesFailedDiscovery(t *testing.T) {
	var hits atomic.Int32
	srv := newDiscoveryServer(t, &hits)

	svc := newTestService(newMemoryRepo())
	svc.issuer = srv.URL + "/missing"
	_, err := svc.idTokenVerifier(context.Background())
	require.True(t, apperrors.IsCode(err, codeAuth))
	require.Nil(t, svc.verifier)

	svc.issuer = srv.URL
	_, err = svc.idTokenVerifier(context.Background())
	require.NoError(t, err)
	require.NotNil(t, svc.verifier)
}

func TestService_GoogleUserLinksByEmail(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	view, err := svc.Register(context.Background(), RegisterRequest{Email: "ada@example.com", Password: "pass1234"})
	require.NoError(t, err)

	claims := googleClaims{Subject: "g-1", Email: "Ada@Example.com", EmailVerified: true, Name: "Ada"}
	user, err := svc.googleUser(context.Background(), claims)
	require.NoError(t, err)
	require.Equal(t, view.ID, user.ID)

	_, err = svc.googleUser(context.Background(), googleClaims{Subject: "g-2", Email: "x@example.com"})
	require.True(t, apperrors.IsCode(err, codeInvalidCreds))

	fresh, err := svc.googleUser(context.Background(), googleClaims{Subject: "g-3", Email: "new@example.com", EmailVerified: true, Name: "Grace Hopper"})
	require.NoError(t, err)
	require.Equal(t, "Grace Hopper", fresh.DisplayName)
	require.Equal(t, "new@example.com", fresh.Email)
}

func TestService_LinkGoogleKeepsStoredRefreshToken(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	svc.cfg.Google.TokenEncryptionKey = "key-material"
	view, err := svc.Register(context.Background(), RegisterRequest{Email: "ada@example.com", Password: "pass1234"})
	require.NoError(t, err)
	claims := googleClaims{Subject: "g-1", Email: "ada@example.com", EmailVerified: true}

	require.NoError(t, svc.linkGoogle(context.Background(), view.ID, claims, "refresh-1"))
	require.NoError(t, svc.linkGoogle(context.Background(), view.ID, claims, ""))

	identity, found, err := repo.GetIdentityByUser(context.Background(), view.ID, googleProvider)
	require.NoError(t, err)
	require.True(t, found)
	plain, err := openProviderToken("key-material", view.ID, identity.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "refresh-1", plain)
}

func TestService_LogoutRevokesGoogleToken(t *testing.T) {
	var revoked string
	revokeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		revoked = r.PostForm.Get("token")
	}))
	defer revokeSrv.Close()

	repo := newMemoryRepo()
	svc := newTestService(repo)
	svc.cfg.Google.TokenEncryptionKey = "key-material"
	svc.revokeURL = revokeSrv.URL
	view, err := svc.Register(context.Background(), RegisterRequest{Email: "ada@example.com", Password: "pass1234"})
	require.NoError(t, err)
	require.NoError(t, svc.linkGoogle(context.Background(), view.ID, googleClaims{Subject: "g-1", Email: "ada@example.com"}, "refresh+/=1"))

	require.NoError(t, svc.Logout(context.Background(), view.ID))
	require.Equal(t, "refresh+/=1", revoked)
}
