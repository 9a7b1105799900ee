package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenExpired reports whether the held access token carries an exp
// claim at or before now. Missing token, unparseable token or missing claim
// all report false; the server remains the authority and will answer 401.
func (s *Store) AccessTokenExpired(now time.Time) bool {
	token := s.AccessToken()
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.Time.After(now)
}
