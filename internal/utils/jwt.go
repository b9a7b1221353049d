package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed JWT together with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken signs an HS256 JWT for a resident. The subject is the
// resident id and role is RESIDENT or ADMIN. Tokens are issued out of band
// to the chat front-end, so the TTL is usually long.
func NewAccessToken(secret string, userID uint64, role string, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(userID, 10),
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ErrBadSubject is returned when the sub claim is not a resident id.
var ErrBadSubject = errors.New("subject claim is not a numeric id")

// SubjectID extracts the numeric resident id from the sub claim. Both
// string and JSON-number encodings are accepted.
func SubjectID(claims jwt.MapClaims) (uint64, error) {
	switch v := claims["sub"].(type) {
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return 0, ErrBadSubject
		}
		return id, nil
	case float64:
		if v <= 0 || v != float64(uint64(v)) {
			return 0, ErrBadSubject
		}
		return uint64(v), nil
	}
	return 0, ErrBadSubject
}
