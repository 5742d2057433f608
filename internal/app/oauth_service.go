package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"ai-chat-studio/internal/apperror"
	"ai-chat-studio/internal/model"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthStateStore holds pending CSRF state nonces. Consume must be
// exactly-once: a state redeems a single callback and is then gone.
type OAuthStateStore interface {
	Put(ctx context.Context, state string) error
	Consume(ctx context.Context, state string) (bool, error)
}

type OAuthConfig struct {
	ClientID        string
	ClientSecret    string
	RedirectURL     string
	ApprovedDomains []string
	ApprovedEmails  []string
	AdminEmails     []string
}

type OAuthService struct {
	conf       *oauth2.Config
	users      UserStore
	states     OAuthStateStore
	auth       *AuthService
	allow      OAuthConfig
	httpClient *http.Client
	logger     *zap.Logger
}

type googleProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func NewOAuthService(cfg OAuthConfig, users UserStore, states OAuthStateStore, auth *AuthService, logger *zap.Logger) *OAuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OAuthService{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
				"openid",
			},
			Endpoint: google.Endpoint,
		},
		users:      users,
		states:     states,
		auth:       auth,
		allow:      cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (s *OAuthService) Configured() bool {
	return s.conf.ClientID != "" && s.conf.ClientSecret != ""
}

// LoginURL generates the Google authorization URL with a fresh state nonce.
func (s *OAuthService) LoginURL(ctx context.Context) (string, error) {
	if !s.Configured() {
		return "", apperror.New(apperror.KindValidation, "google oauth is not configured")
	}

	state, err := newSessionToken()
	if err != nil {
		return "", err
	}
	if err := s.states.Put(ctx, state); err != nil {
		return "", err
	}
	return s.conf.AuthCodeURL(state), nil
}

// HandleCallback completes the authorization-code flow. State validation is
// mandatory; there is no bypass.
func (s *OAuthService) HandleCallback(ctx context.Context, code, state string) (*AuthResult, error) {
	if code == "" || state == "" {
		return nil, apperror.Unauthorized("missing oauth code or state")
	}

	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Unauthorized("invalid or expired oauth state")
	}

	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnauthorized, "oauth code exchange failed", err)
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}
	if !s.emailApproved(profile.Email) {
		s.logger.Warn("oauth login rejected by allow-list", zap.String("email", profile.Email))
		return nil, apperror.Unauthorized("email is not approved for this application")
	}

	user, err := s.upsertUser(profile)
	if err != nil {
		return nil, err
	}

	sessionToken, err := s.auth.createSession(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: sessionToken, User: user}, nil
}

// fetchProfile reads the profile from the ID token minted during the code
// exchange; when absent it falls back to the userinfo endpoint. The ID
// token arrived over the server-to-server exchange, so its claims are
// read without a second signature check.
func (s *OAuthService) fetchProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	if rawIDToken, ok := token.Extra("id_token").(string); ok && rawIDToken != "" {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, claims); err == nil {
			profile := &googleProfile{}
			profile.Email, _ = claims["email"].(string)
			profile.Name, _ = claims["name"].(string)
			profile.Picture, _ = claims["picture"].(string)
			if profile.Email != "" {
				return profile, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request failed: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindProviderUnavailable, "fetch google userinfo failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, apperror.Wrap(apperror.KindProviderInvalidResponse, "google userinfo rejected the request",
			fmt.Errorf("status %d: %s", resp.StatusCode, raw))
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, apperror.Wrap(apperror.KindProviderInvalidResponse, "parse google userinfo failed", err)
	}
	if profile.Email == "" {
		return nil, apperror.New(apperror.KindProviderInvalidResponse, "google returned no email")
	}
	return &profile, nil
}

// emailApproved checks the exact-address list first, then approved
// domains. Empty allow-lists admit nobody.
func (s *OAuthService) emailApproved(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, approved := range s.allow.ApprovedEmails {
		if strings.EqualFold(strings.TrimSpace(approved), email) {
			return true
		}
	}
	_, domain, found := strings.Cut(email, "@")
	if !found {
		return false
	}
	for _, approved := range s.allow.ApprovedDomains {
		if strings.EqualFold(strings.TrimSpace(approved), domain) {
			return true
		}
	}
	return false
}

func (s *OAuthService) isAdmin(email string) bool {
	for _, admin := range s.allow.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(admin), email) {
			return true
		}
	}
	return false
}

// upsertUser creates the user on first login and refreshes name/picture on
// every subsequent one.
func (s *OAuthService) upsertUser(profile *googleProfile) (*model.User, error) {
	email := strings.ToLower(profile.Email)
	user, err := s.users.GetByUsername(email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &model.User{
			Username:    email,
			Email:       email,
			DisplayName: profile.Name,
			AvatarURL:   profile.Picture,
			IsAdmin:     s.isAdmin(email),
		}
		if err := s.users.Create(user); err != nil {
			return nil, err
		}
		return user, nil
	}

	user.DisplayName = profile.Name
	user.AvatarURL = profile.Picture
	user.IsAdmin = s.isAdmin(email)
	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// MemoryStateStore is the OAuthStateStore used when Redis is not
// configured. Single-process only.
type MemoryStateStore struct {
	ttl time.Duration

	mu     sync.Mutex
	states map[string]time.Time
}

func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MemoryStateStore{
		ttl:    ttl,
		states: make(map[string]time.Time),
	}
}

func (m *MemoryStateStore) Put(_ context.Context, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state] = time.Now().Add(m.ttl)
	return nil
}

func (m *MemoryStateStore) Consume(_ context.Context, state string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.states[state]
	if !ok {
		return false, nil
	}
	delete(m.states, state)
	return time.Now().Before(expiry), nil
}
