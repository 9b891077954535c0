package models

import "time"

// expiryLeeway treats tokens about to expire as already expired so a
// request started now does not race the expiry.
const expiryLeeway = 30 * time.Second

// AuthSession holds the access/refresh token pair issued at login. It is
// created on login and destroyed on logout or irrecoverable refresh
// failure; at most one session exists per process.
type AuthSession struct {
	AccessToken  string    `yaml:"access_token" json:"accessToken"`
	RefreshToken string    `yaml:"refresh_token" json:"refreshToken"`
	ExpiresAt    time.Time `yaml:"expires_at" json:"expiresAt"`
}

// Valid reports whether the session carries a usable access token at the
// given instant.
func (s *AuthSession) Valid(now time.Time) bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	if s.ExpiresAt.IsZero() {
		return true
	}
	return now.Add(expiryLeeway).Before(s.ExpiresAt)
}

// Refreshable reports whether the session can be exchanged for a new
// token pair.
func (s *AuthSession) Refreshable() bool {
	return s != nil && s.RefreshToken != ""
}
