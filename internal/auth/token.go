package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every parse, signature and expiry failure so
// callers never learn which check rejected a credential.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload. Organization and role ride in the token;
// permissions are resolved per request so role edits take effect
// without reissuing credentials.
type Claims struct {
	UserID string  `json:"userId"`
	OrgID  *string `json:"orgId,omitempty"`
	RoleID string  `json:"roleId"`
	Role   string  `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given identity.
func (t *TokenIssuer) Issue(userID uuid.UUID, orgID *uuid.UUID, roleID uuid.UUID, roleName string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID.String(),
		RoleID: roleID.String(),
		Role:   roleName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	if orgID != nil {
		s := orgID.String()
		claims.OrgID = &s
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its claims.
func (t *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CallerFromClaims rebuilds the identity half of a Caller from verified
// claims; the permission set is attached by the caller.
func CallerFromClaims(claims *Claims, permissions []string) (*Caller, error) {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	caller := &Caller{
		UserID:      userID,
		Role:        claims.Role,
		Permissions: permissions,
	}
	if claims.OrgID != nil {
		orgID, err := uuid.Parse(*claims.OrgID)
		if err != nil {
			return nil, ErrInvalidToken
		}
		caller.OrganizationID = &orgID
	}
	return caller, nil
}
