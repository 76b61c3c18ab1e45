// Package jwttoken issues and validates the HS256 bearer tokens operators use
// against the dashboard API.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "opsdesk/pkg/domain-errors"
	authmw "opsdesk/pkg/platform/middleware/auth"
)

// Claims are the claims carried by operator tokens.
type Claims struct {
	Operator string `json:"operator"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies operator tokens for one issuer and audience.
// It satisfies authmw.TokenValidator.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	now        func() time.Time
}

func NewService(signingKey, issuer, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		now:        time.Now,
	}
}

// Issue signs a token for operator. An empty role defaults to
// authmw.RoleOperator.
func (s *Service) Issue(operator, role string, ttl time.Duration) (string, error) {
	if operator == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "operator is required")
	}
	if role == "" {
		role = authmw.RoleOperator
	}
	if !authmw.KnownRole(role) {
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown role "+role)
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Operator: operator,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// Parse verifies signature, issuer, audience and expiry.
func (s *Service) Parse(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Operator == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *Service) ValidateToken(raw string) (*authmw.OperatorClaims, error) {
	claims, err := s.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &authmw.OperatorClaims{Operator: claims.Operator, Role: claims.Role}, nil
}
