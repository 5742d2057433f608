package app

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ai-chat-studio/internal/apperror"
	"ai-chat-studio/internal/model"
)

// UserStore and SessionStore are satisfied by both the gorm repositories
// and the jsonfile fallback.
type UserStore interface {
	Create(user *model.User) error
	Update(user *model.User) error
	GetByUsername(username string) (*model.User, error)
	GetByID(id uint) (*model.User, error)
}

type SessionStore interface {
	Create(session *model.AuthSession) error
	GetByToken(token string) (*model.AuthSession, error)
	DeleteByToken(token string) error
	DeleteByUserID(userID uint) error
}

type AuthService struct {
	users      UserStore
	sessions   SessionStore
	sessionTTL time.Duration
	bypassAuth bool
	logger     *zap.Logger
}

type RegisterInput struct {
	Username string
	Password string
	Email    string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(users UserStore, sessions SessionStore, sessionTTL time.Duration, bypassAuth bool, logger *zap.Logger) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		bypassAuth: bypassAuth,
		logger:     logger,
	}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := input.Password
	if username == "" || password == "" {
		return nil, apperror.Validation("username and password are required")
	}

	existing, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.New(apperror.KindStorageConflict, "username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        strings.TrimSpace(strings.ToLower(input.Email)),
		DisplayName:  username,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	token, err := s.createSession(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, apperror.Validation("username and password are required")
	}

	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, apperror.InvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.createSession(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// ValidateToken resolves a bearer token to a user identity. Expired
// sessions are deleted on sight; a second validation of the same token
// reports it as absent, not expired.
func (s *AuthService) ValidateToken(token string) (*model.UserSummary, error) {
	if token == "" {
		return nil, apperror.Unauthorized("missing session token")
	}

	session, err := s.sessions.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.Unauthorized("unknown session token")
	}
	if session.Expired(time.Now()) {
		if err := s.sessions.DeleteByToken(token); err != nil {
			s.logger.Warn("delete expired session failed", zap.Error(err))
		}
		return nil, apperror.ExpiredSession()
	}

	user, err := s.users.GetByID(session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unauthorized("session user no longer exists")
	}

	return &model.UserSummary{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		IsAdmin:     user.IsAdmin,
	}, nil
}

func (s *AuthService) Logout(token string) error {
	if token == "" {
		return apperror.Unauthorized("missing session token")
	}
	return s.sessions.DeleteByToken(token)
}

// BypassIdentity returns the implicit developer identity when the bypass
// flag is enabled, nil otherwise. Local development only.
func (s *AuthService) BypassIdentity() *model.UserSummary {
	if !s.bypassAuth {
		return nil
	}
	return &model.UserSummary{
		Username:    "developer",
		DisplayName: "Developer",
		IsAdmin:     true,
	}
}

// createSession issues a fresh opaque token, deleting any prior sessions
// for the user so at most one session is valid at a time.
func (s *AuthService) createSession(userID uint) (string, error) {
	if err := s.sessions.DeleteByUserID(userID); err != nil {
		return "", err
	}

	token, err := newSessionToken()
	if err != nil {
		return "", err
	}
	now := time.Now()
	session := &model.AuthSession{
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(session); err != nil {
		return "", err
	}
	return token, nil
}

// newSessionToken returns 256 bits of randomness, URL-safe encoded.
func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token failed: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}
