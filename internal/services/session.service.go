package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"pitwall/config"
	"pitwall/internal/database"
	"pitwall/internal/models"
	"pitwall/internal/types"
	"pitwall/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const revokedTokenHash = "revoked"

// SessionClaims is the bearer token payload. Subject carries the user id.
type SessionClaims struct {
	jwt.RegisteredClaims
	Username string `json:"preferred_username,omitempty"`
	Email    string `json:"email,omitempty"`
	Picture  string `json:"picture,omitempty"`
}

// RevocationStore remembers logged out token ids until they expire
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type SessionService struct {
	secret      []byte
	issuer      string
	revocations RevocationStore
	log         logger.Logger
	now         func() time.Time
}

func NewSessionService(cfg config.Config, revocations RevocationStore) *SessionService {
	return &SessionService{
		secret:      []byte(cfg.AuthJWTSecret),
		issuer:      cfg.AuthJWTIssuer,
		revocations: revocations,
		log:         logger.New("SessionService"),
		now:         time.Now,
	}
}

// ValidateToken verifies signature, issuer and expiry, then checks the
// revocation list. Every failure wraps types.ErrUnauthenticated.
func (s *SessionService) ValidateToken(ctx context.Context, rawToken string) (*types.TokenInfo, error) {
	log := s.log.TraceFromContext(ctx).Function("ValidateToken")

	if rawToken == "" {
		return &types.TokenInfo{Valid: false}, log.ErrorWithType(types.ErrUnauthenticated, "missing token")
	}

	token, err := jwt.ParseWithClaims(
		rawToken,
		&SessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		log.Debug("token rejected", "error", err)
		return &types.TokenInfo{Valid: false}, log.ErrorWithType(types.ErrUnauthenticated, "invalid token")
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return &types.TokenInfo{Valid: false}, log.ErrorWithType(types.ErrUnauthenticated, "invalid token claims")
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return &types.TokenInfo{Valid: false}, log.ErrorWithType(
			types.ErrUnauthenticated,
			"token subject is not a user id",
			"subject", claims.Subject,
		)
	}

	info := &types.TokenInfo{
		TokenID:   tokenID(claims.ID, rawToken),
		UserID:    claims.Subject,
		Username:  claims.Username,
		Email:     claims.Email,
		Picture:   claims.Picture,
		ExpiresAt: claims.ExpiresAt.Time,
		Valid:     true,
	}

	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, info.TokenID)
		if err != nil {
			return &types.TokenInfo{Valid: false}, log.Err("failed to check token revocation", err)
		}
		if revoked {
			return &types.TokenInfo{Valid: false}, log.ErrorWithType(types.ErrUnauthenticated, "token revoked")
		}
	}

	return info, nil
}

// Revoke blocks the token until its natural expiry
func (s *SessionService) Revoke(ctx context.Context, info *types.TokenInfo) error {
	log := s.log.TraceFromContext(ctx).Function("Revoke")

	if info == nil || !info.Valid {
		return log.ErrorWithType(types.ErrUnauthenticated, "no valid session to revoke")
	}
	if s.revocations == nil {
		return log.ErrorWithType(types.ErrInvalidOperation, "session revocation is not configured")
	}

	ttl := info.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	if err := s.revocations.Revoke(ctx, info.TokenID, ttl); err != nil {
		return log.Err("failed to revoke token", err, "tokenID", info.TokenID)
	}

	log.Info("Session revoked", "userID", info.UserID)
	return nil
}

// IssueToken signs a session token for the given identity
func (s *SessionService) IssueToken(claims models.UserClaims, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   claims.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: claims.Username,
		Email:    claims.Email,
		Picture:  claims.Picture,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", s.log.Function("IssueToken").Err("failed to sign token", err)
	}
	return signed, nil
}

// ClaimsFromTokenInfo converts validated token data into user claims
func ClaimsFromTokenInfo(info *types.TokenInfo) (models.UserClaims, error) {
	id, err := uuid.Parse(info.UserID)
	if err != nil {
		return models.UserClaims{}, fmt.Errorf("%w: token subject is not a user id", types.ErrUnauthenticated)
	}
	return models.UserClaims{
		ID:       id,
		Username: info.Username,
		Email:    info.Email,
		Picture:  info.Picture,
	}, nil
}

func tokenID(jti, rawToken string) string {
	if jti != "" {
		return jti
	}
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// valkeyRevocationStore keeps revoked token ids in the session database
type valkeyRevocationStore struct {
	cache database.CacheClient
}

func NewValkeyRevocationStore(cache database.CacheClient) RevocationStore {
	return &valkeyRevocationStore{cache: cache}
}

func (v *valkeyRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return database.NewCacheBuilder(v.cache, tokenID).
		WithHash(revokedTokenHash).
		WithContext(ctx).
		WithValue("1").
		WithTTL(ttl).
		Set()
}

func (v *valkeyRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return database.NewCacheBuilder(v.cache, tokenID).
		WithHash(revokedTokenHash).
		WithContext(ctx).
		Exists()
}
