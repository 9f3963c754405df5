package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookkeeperapp/bookkeeper-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register",
		Description: "Creates an account and returns an access token",
		Tags:        []string{"Auth"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Login",
		Description: "Authenticates with username and password",
		Tags:        []string{"Auth"},
	}, s.handleLogin)
}

// RegisterInput contains the new account.
type RegisterInput struct {
	Body struct {
		Username    string `json:"username" doc:"Letters and digits, 3-64 characters"`
		Password    string `json:"password" doc:"At least 8 characters"`
		DisplayName string `json:"display_name,omitempty" required:"false" doc:"Name shown in clients"`
	}
}

// LoginInput contains user credentials.
type LoginInput struct {
	Body struct {
		Username string `json:"username" doc:"Username"`
		Password string `json:"password" doc:"Password"`
	}
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID          string `json:"id" doc:"User ID"`
	Username    string `json:"username" doc:"Username"`
	DisplayName string `json:"display_name,omitempty" doc:"Display name"`
}

// AuthResponse contains the token pair returned after authentication.
type AuthResponse struct {
	User        UserResponse `json:"user" doc:"Authenticated user"`
	AccessToken string       `json:"access_token" doc:"PASETO access token"`
	TokenType   string       `json:"token_type" doc:"Always Bearer"`
	ExpiresAt   string       `json:"expires_at" doc:"Token expiry (RFC 3339)"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Username:    input.Body.Username,
		Password:    input.Body.Password,
		DisplayName: input.Body.DisplayName,
	})
	if err != nil {
		return nil, errorFor(err)
	}
	return toAuthOutput(resp), nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Username: input.Body.Username,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, errorFor(err)
	}
	return toAuthOutput(resp), nil
}

func toAuthOutput(resp *service.AuthResponse) *AuthOutput {
	return &AuthOutput{
		Body: AuthResponse{
			User: UserResponse{
				ID:          resp.User.ID,
				Username:    resp.User.Username,
				DisplayName: resp.User.DisplayName,
			},
			AccessToken: resp.AccessToken,
			TokenType:   resp.TokenType,
			ExpiresAt:   resp.ExpiresAt.UTC().Format(time.RFC3339),
		},
	}
}
