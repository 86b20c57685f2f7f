/**
 * @description
 * This package issues and validates the HS256 access tokens carried on every
 * authenticated request. Claims embed the caller's role and county assignment
 * so the authorization middleware can gate routes without a database hit;
 * account activity and county-admin approval are re-checked against the user
 * record because they can change between issuance and use.
 */

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access-token claims for the registry-service.
type Claims struct {
	UserID string  `json:"user_id"`
	Role   string  `json:"role"`
	County *string `json:"county,omitempty"`
	jwt.RegisteredClaims
}

// NewAccessToken issues a signed HS256 access token.
func NewAccessToken(secret, issuer string, ttl time.Duration, claims Claims) (string, error) {
	now := time.Now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a token's signature and expiry and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
