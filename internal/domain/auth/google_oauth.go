package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	apperrors "github.com/yanqian/vita/pkg/errors"
)

const (
	googleProvider  = "google"
	googleIssuer    = "https://accounts.google.com"
	googleRevokeURL = "https://oauth2.googleapis.com/revoke"
)

// googleClaims is the subset of the Google ID token VITA reads.
type googleClaims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
}

func (s *service) GoogleAuthURL(_ context.Context, state, codeChallenge string) (string, error) {
	oc, err := s.oauthConfig()
	if err != nil {
		return "", err
	}
	return oc.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

// GoogleCallback exchanges the code, verifies the ID token and signs the
// matching VITA user in, creating the account on first sign-in.
func (s *service) GoogleCallback(ctx context.Context, code, codeVerifier string) (LoginResponse, error) {
	oc, err := s.oauthConfig()
	if err != nil {
		return LoginResponse{}, err
	}
	if strings.TrimSpace(code) == "" || strings.TrimSpace(codeVerifier) == "" {
		return LoginResponse{}, apperrors.Wrap(codeInvalidOAuthInput, "missing oauth code or verifier", nil)
	}
	token, err := oc.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(codeOAuthExchange, "failed to exchange oauth code", err)
	}
	rawID, _ := token.Extra("id_token").(string)
	if rawID == "" {
		return LoginResponse{}, apperrors.Wrap(codeOAuthExchange, "missing id_token in oauth response", nil)
	}
	claims, err := s.verifyIDToken(ctx, rawID)
	if err != nil {
		return LoginResponse{}, err
	}

	user, err := s.googleUser(ctx, claims)
	if err != nil {
		return LoginResponse{}, err
	}
	if err := s.linkGoogle(ctx, user.ID, claims, token.RefreshToken); err != nil {
		return LoginResponse{}, err
	}
	return s.buildLoginResponse(user)
}

// googleUser resolves the account for verified Google claims: a linked
// identity first, then an account with the same email, else a new account.
func (s *service) googleUser(ctx context.Context, claims googleClaims) (User, error) {
	if !claims.EmailVerified {
		return User{}, apperrors.Wrap(codeInvalidCreds, "google account email not verified", nil)
	}
	if claims.Subject == "" {
		return User{}, apperrors.Wrap(codeInvalidToken, "missing google subject", nil)
	}
	email, err := normalizeEmail(claims.Email)
	if err != nil {
		return User{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid email address", err)
	}

	identity, linked, err := s.repo.GetIdentity(ctx, googleProvider, claims.Subject)
	if err != nil {
		return User{}, apperrors.Wrap(codeAuth, "failed to fetch identity", err)
	}
	if linked {
		user, ok, err := s.repo.GetByID(ctx, identity.UserID)
		if err != nil {
			return User{}, apperrors.Wrap(codeAuth, "failed to load user", err)
		}
		if !ok {
			return User{}, apperrors.Wrap(apperrors.CodeNotFound, "user not found", nil)
		}
		return user, nil
	}

	user, exists, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, apperrors.Wrap(codeAuth, "failed to check existing user", err)
	}
	if exists {
		return user, nil
	}
	hash, err := unusablePasswordHash()
	if err != nil {
		return User{}, apperrors.Wrap(codeAuth, "failed to generate password hash", err)
	}
	user, err = s.repo.Create(ctx, email, googleDisplayName(claims), hash)
	if errors.Is(err, ErrEmailExists) {
		return User{}, apperrors.Wrap(codeEmailExists, "email already registered", err)
	}
	if err != nil {
		return User{}, apperrors.Wrap(codeAuth, "failed to create user", err)
	}
	s.logger.Info("user registered via google", "user_id", user.ID)
	return user, nil
}

// linkGoogle records the identity. An empty refresh token keeps the one
// already stored, since Google only returns it on consent.
func (s *service) linkGoogle(ctx context.Context, userID uuid.UUID, claims googleClaims, refreshToken string) error {
	identity := Identity{
		UserID:          userID,
		Provider:        googleProvider,
		ProviderSubject: claims.Subject,
		ProviderEmail:   claims.Email,
	}
	if refreshToken == "" {
		existing, found, err := s.repo.GetIdentityByUser(ctx, userID, googleProvider)
		if err != nil {
			return apperrors.Wrap(codeAuth, "failed to fetch identity", err)
		}
		if found {
			identity.RefreshToken = existing.RefreshToken
		}
	} else {
		sealed, err := sealProviderToken(s.cfg.Google.TokenEncryptionKey, userID, refreshToken)
		if err != nil {
			return apperrors.Wrap(codeAuth, "failed to encrypt refresh token", err)
		}
		identity.RefreshToken = sealed
	}
	if _, err := s.repo.UpsertIdentity(ctx, identity); err != nil {
		return apperrors.Wrap(codeAuth, "failed to persist identity", err)
	}
	return nil
}

// Logout revokes the stored Google refresh token. Revocation is best effort:
// failures are logged and the local sign-out still succeeds.
func (s *service) Logout(ctx context.Context, userID uuid.UUID) error {
	identity, found, err := s.repo.GetIdentityByUser(ctx, userID, googleProvider)
	if err != nil {
		return apperrors.Wrap(codeAuth, "failed to fetch identity", err)
	}
	if !found || identity.RefreshToken == "" {
		return nil
	}
	refreshToken, err := openProviderToken(s.cfg.Google.TokenEncryptionKey, userID, identity.RefreshToken)
	if err != nil || refreshToken == "" {
		s.logger.Warn("google refresh token unreadable", "user_id", userID, "error", err)
		return nil
	}
	if err := s.revoke(ctx, refreshToken); err != nil {
		s.logger.Warn("google token revoke failed", "user_id", userID, "error", err)
	}
	return nil
}

func (s *service) oauthConfig() (*oauth2.Config, error) {
	g := s.cfg.Google
	for _, v := range []string{g.ClientID, g.ClientSecret, g.RedirectURL} {
		if strings.TrimSpace(v) == "" {
			return nil, apperrors.Wrap(codeNotConfigured, "google oauth is not configured", nil)
		}
	}
	if strings.TrimSpace(g.TokenEncryptionKey) == "" {
		return nil, apperrors.Wrap(codeNotConfigured, "google token encryption key is missing", nil)
	}
	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  g.RedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		Endpoint:     google.Endpoint,
	}, nil
}

func (s *service) verifyIDToken(ctx context.Context, raw string) (googleClaims, error) {
	verifier, err := s.idTokenVerifier(ctx)
	if err != nil {
		return googleClaims{}, err
	}
	idToken, err := verifier.Verify(ctx, raw)
	if err != nil {
		return googleClaims{}, apperrors.Wrap(codeInvalidToken, "failed to verify id token", err)
	}
	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return googleClaims{}, apperrors.Wrap(codeInvalidToken, "failed to parse id token claims", err)
	}
	if claims.Email == "" {
		return googleClaims{}, apperrors.Wrap(codeInvalidToken, "missing email in id token", nil)
	}
	return claims, nil
}

// idTokenVerifier discovers the issuer on first use and keeps the verifier on
// the service. A failed discovery is retried on the next sign-in.
func (s *service) idTokenVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	s.oidcMu.Lock()
	defer s.oidcMu.Unlock()
	if s.verifier != nil {
		return s.verifier, nil
	}
	provider, err := oidc.NewProvider(ctx, s.issuer)
	if err != nil {
		return nil, apperrors.Wrap(codeAuth, "failed to initialize oidc provider", err)
	}
	s.verifier = provider.Verifier(&oidc.Config{ClientID: s.cfg.Google.ClientID})
	return s.verifier, nil
}

func (s *service) revoke(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("google revoke returned status %d", resp.StatusCode)
	}
	return nil
}

// googleDisplayName prefers the full profile name, cut to the display name
// limit. Names that fail validation are dropped.
func googleDisplayName(claims googleClaims) string {
	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name = strings.TrimSpace(claims.GivenName)
	}
	if runes := []rune(name); len(runes) > maxDisplayNameRunes {
		name = string(runes[:maxDisplayNameRunes])
	}
	name, err := normalizeDisplayName(name)
	if err != nil {
		return ""
	}
	return name
}

// unusablePasswordHash hashes random bytes so Google-created accounts have
// no guessable password.
func unusablePasswordHash() (string, error) {
	secret, err := randomToken(32)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func randomToken(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CodeChallengeFromVerifier computes the S256 PKCE challenge.
func CodeChallengeFromVerifier(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// NewOAuthState returns a state, code verifier and code challenge for PKCE.
func NewOAuthState() (state, codeVerifier, codeChallenge string, err error) {
	if state, err = randomToken(32); err != nil {
		return "", "", "", err
	}
	if codeVerifier, err = randomToken(32); err != nil {
		return "", "", "", err
	}
	return state, codeVerifier, CodeChallengeFromVerifier(codeVerifier), nil
}
