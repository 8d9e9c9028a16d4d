package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	ErrInvalidAssertion = errors.New("invalid identity assertion")
	ErrUnauthenticated  = errors.New("missing, invalid or revoked session token")
)

type Service struct {
	repo       *Repository
	sessionTTL time.Duration
}

func NewService(repo *Repository, sessionTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		sessionTTL: sessionTTL,
	}
}

// Login exchanges a provider identity assertion for a session token.
// The user is found or created by provider subject id; name and email
// claims are refreshed on every login.
func (s *Service) Login(ctx context.Context, assertion IdentityAssertion) (*AuthResponse, error) {
	if assertion.ProviderSubjectID == "" {
		return nil, fmt.Errorf("%w: missing provider subject id", ErrInvalidAssertion)
	}

	user, err := s.repo.GetUserByGoogleID(ctx, assertion.ProviderSubjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		user = &User{
			Name:     assertion.DisplayName,
			Email:    assertion.Email,
			GoogleID: assertion.ProviderSubjectID,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		slog.InfoContext(ctx, "new user created", "user_id", user.ID, "email", user.Email)
	} else if user.Name != assertion.DisplayName || user.Email != assertion.Email {
		user.Name = assertion.DisplayName
		user.Email = assertion.Email
		if err := s.repo.UpdateUserClaims(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to refresh user claims: %w", err)
		}
	}

	// Piggyback expired-session cleanup on logins; there is no background
	// janitor in this service.
	if err := s.repo.DeleteExpiredSessions(ctx); err != nil {
		slog.WarnContext(ctx, "failed to purge expired sessions", "error", err)
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &AuthResponse{
		SessionToken: token,
		User:         user,
	}, nil
}

// Validate resolves a session token to its user. Unknown, revoked or
// expired tokens yield ErrUnauthenticated, never a panic or a 5xx.
func (s *Service) Validate(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	session, err := s.repo.GetSession(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session user: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}

	return user, nil
}

// Logout revokes a session token. Revoking an unknown or already-revoked
// token is a no-op, not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, token)
}

// LogoutAll revokes every session of a user.
func (s *Service) LogoutAll(ctx context.Context, userID int) error {
	return s.repo.DeleteAllUserSessions(ctx, userID)
}

// generateSessionToken returns a cryptographically random opaque token.
// 32 bytes makes collisions among live tokens negligible.
func generateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
