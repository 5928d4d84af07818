// Package session holds the authenticated state for a Bluelink account: the access token attached
// to API calls, the refresh token used to renew it, and regional extras such as the Canadian PIN
// token. Sessions are owned by an account.Account, which serializes refreshes.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpirySkew is subtracted from the token lifetime when deciding whether a session is still
// usable, so a token is refreshed slightly before the vendor would reject it.
const ExpirySkew = 10 * time.Second

// DefaultLifetime is assumed when the identity endpoint does not advertise a token lifetime and
// the token carries no expiry claim of its own. Deliberately shorter than any lifetime the vendor
// actually issues.
const DefaultLifetime = 30 * time.Minute

// Session is a snapshot of the tokens issued by a regional identity endpoint.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`

	// PINToken authorizes actuation commands on regions that exchange the service PIN for a
	// short-lived secondary token (Canada). Empty elsewhere.
	PINToken          string    `json:"pin_token,omitempty"`
	PINTokenExpiresAt time.Time `json:"pin_token_expires_at,omitempty"`

	// DeviceID identifies this client on regions that require device registration.
	DeviceID string `json:"device_id,omitempty"`
}

// New builds a Session from an identity-endpoint response. When the access token is a JWT carrying
// an exp claim, the claim wins over the advertised expiresIn; some vendor deployments report a
// longer lifetime than the token actually has.
func New(accessToken, refreshToken string, expiresIn time.Duration) *Session {
	if expiresIn <= 0 {
		expiresIn = DefaultLifetime
	}
	s := &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(expiresIn),
	}
	if exp, ok := jwtExpiry(accessToken); ok {
		s.ExpiresAt = exp
	}
	return s
}

// jwtExpiry extracts the exp claim from a JWT access token without verifying its signature. The
// client has no use for the signature; it only needs to know when the vendor will stop accepting
// the token.
func jwtExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Valid reports whether the session can still be used without a refresh.
func (s *Session) Valid() bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	return time.Now().Before(s.ExpiresAt.Add(-ExpirySkew))
}

// PINTokenValid reports whether the secondary PIN token is present and unexpired.
func (s *Session) PINTokenValid() bool {
	if s == nil || s.PINToken == "" {
		return false
	}
	if s.PINTokenExpiresAt.IsZero() {
		return true
	}
	return time.Now().Before(s.PINTokenExpiresAt.Add(-ExpirySkew))
}
