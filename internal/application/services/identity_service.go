package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskflow/core/internal/infrastructure/config"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

// ErrIdentityDisabled is returned when no signing secret is configured
var ErrIdentityDisabled = errors.New("identity pass-through is not configured")

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// IdentityService reads the signed-in user from bearer tokens. It does not
// authenticate anyone; tokens are minted elsewhere (or by IssueToken for
// development).
type IdentityService struct {
	jwtConfig config.JWTConfig
	logger    *logger.Logger
	now       func() time.Time
}

// NewIdentityService creates a new identity service
func NewIdentityService(jwtConfig config.JWTConfig, logger *logger.Logger) *IdentityService {
	return &IdentityService{
		jwtConfig: jwtConfig,
		logger:    logger,
		now:       time.Now,
	}
}

// Enabled reports whether a signing secret is configured
func (s *IdentityService) Enabled() bool {
	return s.jwtConfig.Secret != ""
}

// ValidateToken validates a JWT token and returns the identity it carries
func (s *IdentityService) ValidateToken(tokenString string) (ports.Identity, error) {
	if !s.Enabled() {
		return ports.Identity{}, ErrIdentityDisabled
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	},
		jwt.WithIssuer(s.jwtConfig.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return ports.Identity{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return ports.Identity{}, fmt.Errorf("invalid token claims")
	}

	return ports.Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

// IssueToken signs a token for identity. A blank UserID gets a fresh UUID.
func (s *IdentityService) IssueToken(identity ports.Identity) (string, error) {
	if !s.Enabled() {
		return "", ErrIdentityDisabled
	}
	if identity.UserID == "" {
		identity.UserID = uuid.NewString()
	}

	now := s.now()
	claims := &Claims{
		UserID: identity.UserID,
		Email:  identity.Email,
		Name:   identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.ExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.jwtConfig.Issuer,
			Subject:   identity.UserID,
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Infow("Identity token issued", "user_id", identity.UserID, "expires_in", s.jwtConfig.ExpiresIn.String())

	return tokenString, nil
}
