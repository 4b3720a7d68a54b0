package session

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieCodec carries the session token in a signed cookie.
// The cookie value is an HS256 JWT whose subject is the token.
type CookieCodec struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewCookieCodec(name, secret string, ttl time.Duration, secure bool) *CookieCodec {
	return &CookieCodec{
		name:   name,
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
	}
}

// Token returns the session token carried by r, or "" when the cookie is
// missing, expired or not signed with the configured secret.
func (c *CookieCodec) Token(r *http.Request) string {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return ""
	}
	token, err := parseTokenSubject(cookie.Value, c.secret)
	if err != nil {
		return ""
	}
	return token
}

// Write sets the cookie for token on the response.
func (c *CookieCodec) Write(w http.ResponseWriter, token string) error {
	value, err := issueToken(token, c.secret, c.ttl)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the cookie on the client.
func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func issueToken(subject string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseTokenSubject(tokenString string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}
