package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the session lifetime used when none is configured.
const DefaultTokenTTL = 30 * time.Minute

// Parse failures. Callers outside this package treat all of them as unauthenticated;
// the distinction exists for logs.
var (
	ErrTokenMissing   = errors.New("token missing")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenExpired   = errors.New("token expired")
	ErrSubjectMissing = errors.New("token subject missing")
)

// TokenCodec issues and parses signed session tokens carrying a user id and an expiry.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewTokenCodec builds a codec for an HMAC algorithm such as HS256.
func NewTokenCodec(secret, algorithm string, ttl time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCodec{secret: []byte(secret), method: method, ttl: ttl}, nil
}

// TTL is the lifetime of issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for userID that expires at now+TTL.
// Claims have second precision, so the expiry is rounded up to the next whole second
// and the token never lapses before now+TTL.
func (c *TokenCodec) Issue(userID int64, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(ceilSecond(now.Add(c.ttl))),
	}
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

func ceilSecond(t time.Time) time.Time {
	if whole := t.Truncate(time.Second); whole.Before(t) {
		return whole.Add(time.Second)
	}
	return t
}

// Parse validates tokenStr at time now and returns the subject user id.
// Tokens whose expiry is at or before now are rejected.
func (c *TokenCodec) Parse(tokenStr string, now time.Time) (int64, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return 0, ErrTokenMissing
	}
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenRequiredClaimMissing) {
			return 0, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return 0, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !tok.Valid {
		return 0, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return 0, ErrSubjectMissing
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrSubjectMissing, claims.Subject)
	}
	return id, nil
}
