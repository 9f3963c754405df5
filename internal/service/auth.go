package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/auth"
	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	domainerrors "github.com/bookkeeperapp/bookkeeper-server/internal/errors"
	"github.com/bookkeeperapp/bookkeeper-server/internal/id"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
	"github.com/bookkeeperapp/bookkeeper-server/internal/validation"
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	users     store.UserStore
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
	now       Clock
}

// NewAuthService creates a new authentication service.
func NewAuthService(users store.UserStore, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterRequest contains the data for a new account.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=64,alphanum"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name,omitempty" validate:"max=128"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains the access token and the authenticated user.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// Register creates an account and logs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           userID,
		Username:     strings.TrimSpace(req.Username),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		LastLoginAt:  now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExistsf("username %q is taken", user.Username)
		}
		return nil, domainerrors.Storage(err, "create user")
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return s.issue(user)
}

// Login verifies credentials and returns a fresh access token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Same message as a bad password so usernames cannot be probed.
			return nil, domainerrors.InvalidCredentials("invalid username or password")
		}
		return nil, domainerrors.Storage(err, "lookup user")
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("login failed", "username", req.Username)
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if rehashed, err := auth.HashPassword(req.Password); err == nil {
			user.PasswordHash = rehashed
		}
	}
	user.LastLoginAt = s.now().UTC()
	if err := s.users.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to record login", "user_id", user.ID, "error", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return s.issue(user)
}

// VerifyAccessToken resolves a bearer token to its user.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token")
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("account no longer exists")
		}
		return nil, domainerrors.Storage(err, "load user")
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResponse, error) {
	token, expires, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &AuthResponse{
		User:        user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expires,
	}, nil
}
