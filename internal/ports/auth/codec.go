package auth

import "time"

// TokenCodec signs and verifies session-cookie tokens.
type TokenCodec interface {
	Issue(claims Claims, ttl time.Duration) (string, error)
	Verify(token string) (Claims, error)
}
