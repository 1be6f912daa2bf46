package utils // helper functions for token issuing and password hashing

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed HS256 JWT plus its expiry. There are no
// refresh tokens in this system: a token lives as long as a venue
// visit and the client simply logs in again afterwards, matching the
// original app's per-tab session flag.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken signs a token for a player or admin. The subject is
// the player's username (or "admin" for the shared admin login) and
// role is PLAYER or ADMIN. Claims: sub, role, exp, iat.
func NewAccessToken(secret, subject, role string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
