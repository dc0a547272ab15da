package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// TokenDenylist holds revoked refresh tokens until their natural expiry.
// Entries are keyed by token hash so raw tokens never sit in memory.
type TokenDenylist struct {
	cache *cache.Cache
}

func NewTokenDenylist(defaultTTL time.Duration) *TokenDenylist {
	c := cache.New(defaultTTL, 10*time.Minute)
	return &TokenDenylist{
		cache: c,
	}
}

func (d *TokenDenylist) Revoke(token string, until time.Time) {
	ttl := time.Until(until)
	if ttl <= 0 {
		return
	}
	d.cache.Set(hashToken(token), struct{}{}, ttl)
}

func (d *TokenDenylist) IsRevoked(token string) bool {
	_, found := d.cache.Get(hashToken(token))
	return found
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
