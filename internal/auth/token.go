package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what can be read from an access token without verifying it.
// Signature checks belong to the upstream API.
type TokenInfo struct {
	JWT       bool
	Subject   string
	ExpiresAt time.Time
}

// InspectToken reads the claims of a JWT-shaped token without verifying its signature.
// Opaque tokens yield a zero TokenInfo and no error.
func InspectToken(token string) (TokenInfo, error) {
	if token == "" {
		return TokenInfo{}, errors.New("empty token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return TokenInfo{}, nil
		}
		return TokenInfo{}, err
	}

	info := TokenInfo{JWT: true}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}

// Expired reports whether the token carries an expiry that has passed.
func (i TokenInfo) Expired(now time.Time) bool {
	return i.JWT && !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}
