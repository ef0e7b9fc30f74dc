package service

import (
	"context"
	"crypto/subtle"

	"github.com/spec-kit/ticket-synth/internal/auth"
	"github.com/spec-kit/ticket-synth/internal/config"
	"github.com/spec-kit/ticket-synth/internal/domain"
	apperrors "github.com/spec-kit/ticket-synth/pkg/util"
)

// AuthService issues access tokens to the chat bot client.
type AuthService struct {
	tokenMgr   *auth.TokenManager
	clientID   string
	apiKeyHash string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		clientID:   cfg.BotClientID,
		apiKeyHash: cfg.BotAPIKeyHash,
	}
}

// TokenManager exposes the token manager for middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Enabled reports whether bot credentials are configured.
func (s *AuthService) Enabled() bool {
	return s.apiKeyHash != ""
}

// IssueBotToken exchanges the bot credentials for a scoped access token.
func (s *AuthService) IssueBotToken(_ context.Context, clientID, apiKey string) (string, domain.Token, error) {
	if !s.Enabled() {
		return "", domain.Token{}, apperrors.NewValidationError("authentication is disabled", nil)
	}
	if subtle.ConstantTimeCompare([]byte(clientID), []byte(s.clientID)) != 1 {
		return "", domain.Token{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.CompareAPIKey(s.apiKeyHash, apiKey); err != nil {
		return "", domain.Token{}, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.tokenMgr.GenerateToken(clientID, domain.SubjectTypeBot, auth.ScopeGenerate)
}
