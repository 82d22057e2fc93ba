package crypto

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

// DefaultNonceCacheSize bounds the number of IVs remembered at once.
const DefaultNonceCacheSize = 65536

// NonceCache remembers recently seen envelope IVs so an exact replay of an
// envelope inside the freshness window can be rejected. Entries expire after
// the configured TTL, which should be at least twice the replay window since
// an IV is accepted from ts-W to ts+W.
//
// The timestamp window alone does not stop replays inside the window; this
// cache is the optional second layer. It is safe for concurrent use.
type NonceCache struct {
	mu     sync.Mutex
	seen   *expirable.LRU[IV, struct{}]
	logger *logrus.Entry
}

// NewNonceCache creates a cache holding at most size IVs for ttl each.
// A non-positive size uses DefaultNonceCacheSize.
func NewNonceCache(size int, ttl time.Duration) *NonceCache {
	if size <= 0 {
		size = DefaultNonceCacheSize
	}
	return &NonceCache{
		seen:   expirable.NewLRU[IV, struct{}](size, nil, ttl),
		logger: logrus.WithField("package", "crypto"),
	}
}

// CheckAndStore records iv and reports whether it was fresh. It returns false
// if the IV was already seen and has not yet expired.
func (nc *NonceCache) CheckAndStore(iv IV) bool {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	if _, ok := nc.seen.Peek(iv); ok {
		nc.logger.WithFields(logrus.Fields{
			"iv":        fmt.Sprintf("%x", iv[:8]),
			"timestamp": iv.Timestamp().Unix(),
		}).Warn("Replay detected: IV already used")
		return false
	}

	nc.seen.Add(iv, struct{}{})
	return true
}

// Size returns the number of IVs currently remembered.
func (nc *NonceCache) Size() int {
	return nc.seen.Len()
}

// Purge forgets every remembered IV.
func (nc *NonceCache) Purge() {
	nc.seen.Purge()
}
