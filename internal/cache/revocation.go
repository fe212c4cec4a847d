package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "blacklist:"

// RevocationList remembers logged-out token ids until the tokens expire.
// A nil client makes every call a no-op.
type RevocationList struct {
	rdb *redis.Client
}

func NewRevocationList(rdb *redis.Client) *RevocationList {
	return &RevocationList{rdb: rdb}
}

// Revoke stores jti for ttl. Expired tokens need no entry.
func (l *RevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if l == nil || l.rdb == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return l.rdb.Set(ctx, revokedPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked. Lookup errors count as not revoked.
func (l *RevocationList) IsRevoked(ctx context.Context, jti string) bool {
	if l == nil || l.rdb == nil || jti == "" {
		return false
	}
	n, err := l.rdb.Exists(ctx, revokedPrefix+jti).Result()
	return err == nil && n > 0
}
