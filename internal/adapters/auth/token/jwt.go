package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"paws-and-claws/internal/ports/auth"
)

var ErrInvalidToken = errors.New("invalid token")

// Codec implements auth.TokenCodec with HS256-signed JWTs. The token travels
// in the session cookie, so the browser never sees anything it can tamper with.
type Codec struct {
	secret []byte
	now    func() time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
}

func New(secret string) *Codec {
	return &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
}

func (c *Codec) Issue(claims auth.Claims, ttl time.Duration) (string, error) {
	now := c.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	})
	return t.SignedString(c.secret)
}

func (c *Codec) Verify(tokenString string) (auth.Claims, error) {
	claims := &sessionClaims{}

	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now() }))
	if err != nil {
		return auth.Claims{}, err
	}
	if !t.Valid || claims.UserID == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	return auth.Claims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
