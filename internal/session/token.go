package session

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const TokenCookieName = "auth_token"

// TokenStore keeps the user id in an HS256-signed JWT cookie. Nothing is
// stored server-side, so Clear only expires the client's cookie.
type TokenStore struct {
	secret []byte
	secure bool
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenStore(secret string, secure bool, ttl time.Duration) *TokenStore {
	return &TokenStore{
		secret: []byte(secret),
		secure: secure,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *TokenStore) Get(r *http.Request) (int64, bool) {
	cookie, err := r.Cookie(TokenCookieName)
	if err != nil || cookie.Value == "" {
		return 0, false
	}
	id, err := s.validate(cookie.Value)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (s *TokenStore) Set(w http.ResponseWriter, r *http.Request, userID int64) error {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	c := baseCookie(TokenCookieName, s.secure)
	c.Value = token
	c.MaxAge = int(s.ttl.Seconds())
	http.SetCookie(w, c)
	return nil
}

func (s *TokenStore) Clear(w http.ResponseWriter, r *http.Request) error {
	c := baseCookie(TokenCookieName, s.secure)
	c.MaxAge = -1
	http.SetCookie(w, c)
	return nil
}

// validate parses the token and returns the user id from the sub claim.
func (s *TokenStore) validate(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	return id, nil
}
