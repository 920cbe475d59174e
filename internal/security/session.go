package security

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserCookieName is the cookie carrying the anonymous user identity
const UserCookieName = "userId"

const identityIssuer = "dailydiet"

var ErrInvalidIdentity = errors.New("invalid identity token")

// IdentityManager issues and verifies the signed anonymous identity cookie
type IdentityManager struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

// NewIdentityManager creates an identity manager signing tokens with secret
func NewIdentityManager(secret string, duration time.Duration) *IdentityManager {
	return &IdentityManager{
		secret:   []byte(secret),
		duration: duration,
		now:      time.Now,
	}
}

// NewUserID creates a new anonymous user identifier
func NewUserID() string {
	return uuid.New().String()
}

// Sign produces a token binding userID until the configured duration elapses
func (m *IdentityManager) Sign(userID string) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.duration)

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    identityIssuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign identity: %w", err)
	}
	return token, expiresAt, nil
}

// Verify returns the user id carried by a valid, unexpired token
func (m *IdentityManager) Verify(token string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(identityIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	claims := &jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidIdentity
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", ErrInvalidIdentity
	}
	return claims.Subject, nil
}

// UserIDFromRequest reads and verifies the identity cookie
func (m *IdentityManager) UserIDFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(UserCookieName)
	if err != nil {
		return "", err
	}
	return m.Verify(cookie.Value)
}

// IssueCookie signs userID and sets the identity cookie on w
func (m *IdentityManager) IssueCookie(w http.ResponseWriter, r *http.Request, userID string) error {
	token, expiresAt, err := m.Sign(userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, CreateSessionCookie(r, UserCookieName, token, expiresAt))
	return nil
}

// IsSecureRequest determines if the request is over HTTPS
// Checks TLS connection, X-Forwarded-Proto header (for reverse proxies), and URL scheme
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}

	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}

	return r.URL.Scheme == "https"
}

// CreateSessionCookie creates a session cookie with proper security flags
// The Secure flag is automatically set based on the request scheme (HTTPS detection)
func CreateSessionCookie(r *http.Request, name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateDeleteCookie creates a cookie for deletion with proper security flags
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
	}
}
