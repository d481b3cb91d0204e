package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

const defaultTokenTTL = 15 * time.Minute

var signingMethod = jwt.SigningMethodHS384

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues HS384 JWTs. Tokens are self-contained; the optional
// revocation store only adds a denylist on top.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoked ports.RevocationStore
	log     zerolog.Logger
	now     func() time.Time
}

// NewTokenService returns a TokenService. revoked may be nil, in which case
// verification is purely signature + expiry.
func NewTokenService(secret string, ttl time.Duration, revoked ports.RevocationStore, log zerolog.Logger) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		log:     log,
		now:     time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

func (s *TokenService) Issue(user *domain.User) (string, *domain.Claims, error) {
	now := s.now().UTC().Truncate(time.Second)
	claims := &domain.Claims{
		Subject:   user.Username,
		Role:      user.Role,
		TokenID:   uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	t := jwt.NewWithClaims(signingMethod, tokenClaims{
		Role: claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			ID:        claims.TokenID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func (s *TokenService) Verify(ctx context.Context, token string) (*domain.Claims, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if tc.Subject == "" || !domain.ValidRole(tc.Role) {
		return nil, domain.ErrInvalidToken
	}

	claims := &domain.Claims{
		Subject:   tc.Subject,
		Role:      tc.Role,
		TokenID:   tc.ID,
		ExpiresAt: tc.ExpiresAt.Time,
	}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *TokenService) checkRevoked(ctx context.Context, claims *domain.Claims) error {
	if s.revoked == nil {
		return nil
	}

	if claims.TokenID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			s.log.Warn().Err(err).Str("subject", claims.Subject).Msg("revocation check failed, accepting token")
			return nil
		}
		if revoked {
			return domain.ErrInvalidToken
		}
	}

	cutoff, err := s.revoked.RevokedBefore(ctx, claims.Subject)
	if err != nil {
		s.log.Warn().Err(err).Str("subject", claims.Subject).Msg("revocation cutoff lookup failed, accepting token")
		return nil
	}
	// iat has whole-second precision, so a token from the cutoff second itself
	// may predate the revocation and is rejected too.
	if !cutoff.IsZero() && !claims.IssuedAt.After(cutoff) {
		return domain.ErrInvalidToken
	}
	return nil
}

// Revoke denylists one token until its natural expiry.
func (s *TokenService) Revoke(ctx context.Context, claims *domain.Claims) error {
	if s.revoked == nil {
		return nil
	}
	if claims == nil || claims.TokenID == "" {
		return errors.New("revoke: token has no id")
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.TokenID, ttl)
}

// RevokeAllFor invalidates every token issued to subject up to and including
// the current second.
func (s *TokenService) RevokeAllFor(ctx context.Context, subject string) error {
	if s.revoked == nil {
		return nil
	}
	return s.revoked.RevokeBefore(ctx, subject, s.now().UTC().Truncate(time.Second), s.ttl)
}
