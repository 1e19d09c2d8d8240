package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iamasit07/fazenda-financeiro/backend/internal/domain"
	"github.com/iamasit07/fazenda-financeiro/backend/pkg/auth"
	"github.com/rs/zerolog"
)

const sessionKeyPrefix = "session:"

// UserRepository is the credential record store. The token column doubles
// as the session store: one current token per user.
type UserRepository interface {
	GetUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	GetUserByToken(ctx context.Context, token string) (*domain.User, error)
	UpdateToken(ctx context.Context, userID int64, token string) error
	ClearToken(ctx context.Context, userID int64, token string) (bool, error)
}

type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token string             `json:"token"`
	User  domain.UserProfile `json:"user"`
}

// Session is a token that passed both the signature check and the store check.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	User      domain.UserProfile
}

// AuthService handles authentication session logic
type AuthService struct {
	repo     UserRepository
	issuer   *auth.Issuer
	cache    CacheRepository // Optional, can be nil
	cacheTTL time.Duration
	now      func() time.Time
}

func NewAuthService(repo UserRepository, issuer *auth.Issuer, cache CacheRepository, cacheTTL time.Duration) *AuthService {
	return &AuthService{
		repo:     repo,
		issuer:   issuer,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Login verifies the secret and, on success, replaces the user's session
// token with a fresh one. Unknown identifiers and wrong secrets both yield
// domain.ErrInvalidCredentials.
//
// The overwrite is not serialized: with two concurrent logins for one user
// the token whose UpdateToken lands last is the one that stays valid.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	logger := zerolog.Ctx(ctx)

	user, err := s.repo.GetUserByIdentifier(ctx, identifier)
	if errors.Is(err, domain.ErrUserNotFound) {
		auth.BurnPasswordCheck(password)
		logger.Debug().Err(err).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.SenhaHash) {
		logger.Debug().Err(domain.ErrPasswordMismatch).Int64("user_id", user.ID).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	token, _, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	prior := user.CurrentToken()
	if err := s.repo.UpdateToken(ctx, user.ID, token); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	if prior != "" {
		s.evict(ctx, prior)
	}

	return &LoginResult{Token: token, User: user.UserResponse()}, nil
}

// ValidateToken checks the token cryptographically and then requires the
// session store to still hold exactly this token. Every rejection is
// domain.ErrNoSession; only persistence failures return something else.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*Session, error) {
	logger := zerolog.Ctx(ctx)

	claims, err := s.issuer.Parse(token)
	if err != nil {
		logger.Debug().Err(err).Msg("session rejected")
		return nil, domain.ErrNoSession
	}

	if profile, ok := s.fromCache(ctx, token, claims.UserID); ok {
		return newSession(token, claims, *profile), nil
	}

	user, err := s.repo.GetUserByToken(ctx, token)
	if errors.Is(err, domain.ErrUserNotFound) {
		logger.Debug().Err(domain.ErrSuperseded).Int64("user_id", claims.UserID).Msg("session rejected")
		return nil, domain.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	if user.ID != claims.UserID {
		logger.Warn().Int64("claim_user_id", claims.UserID).Int64("row_user_id", user.ID).Msg("token stored on another user")
		return nil, domain.ErrNoSession
	}

	sess := newSession(token, claims, user.UserResponse())
	s.toCache(ctx, sess)
	return sess, nil
}

// Logout clears the session field if it still holds the session's token.
// A newer login is never undone.
func (s *AuthService) Logout(ctx context.Context, sess *Session) error {
	cleared, err := s.repo.ClearToken(ctx, sess.UserID, sess.Token)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.evict(ctx, sess.Token)
	zerolog.Ctx(ctx).Debug().Int64("user_id", sess.UserID).Bool("cleared", cleared).Msg("logout")
	return nil
}

func newSession(token string, claims *auth.Claims, profile domain.UserProfile) *Session {
	return &Session{
		Token:     token,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      profile,
	}
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return sessionKeyPrefix + hex.EncodeToString(sum[:])
}

func (s *AuthService) fromCache(ctx context.Context, token string, userID int64) (*domain.UserProfile, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, cacheKey(token))
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("session cache read failed")
		return nil, false
	}
	if data == "" {
		return nil, false
	}
	var profile domain.UserProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil || profile.ID != userID {
		return nil, false
	}
	return &profile, true
}

func (s *AuthService) toCache(ctx context.Context, sess *Session) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	ttl := s.cacheTTL
	if remaining := sess.ExpiresAt.Sub(s.now()); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(sess.User)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(sess.Token), data, ttl); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("session cache write failed")
	}
}

func (s *AuthService) evict(ctx context.Context, token string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(token)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("session cache delete failed")
	}
}
