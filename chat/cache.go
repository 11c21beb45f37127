package chat

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/DachengChen/querymaster/envelope"
)

// Cache memoizes final envelopes by question and history. It evicts the
// least recently used entry once full and expires entries after ttl.
type Cache struct {
	items *ttlcache.Cache[string, envelope.Envelope]
}

// NewCache creates a cache holding at most capacity entries. A ttl of zero
// keeps entries until they are evicted.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		items: ttlcache.New(
			ttlcache.WithTTL[string, envelope.Envelope](ttl),
			ttlcache.WithCapacity[string, envelope.Envelope](uint64(capacity)),
			ttlcache.WithDisableTouchOnHit[string, envelope.Envelope](),
		),
	}
}

// Key returns the content address of a question asked after history. Two
// keys are equal only when the question text and every turn are identical.
func Key(question string, history []Turn) string {
	if history == nil {
		history = []Turn{}
	}
	data, _ := json.Marshal(struct {
		Question string `json:"q"`
		History  []Turn `json:"h"`
	}{question, history})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached envelope for key.
func (c *Cache) Get(key string) (envelope.Envelope, bool) {
	item := c.items.Get(key)
	if item == nil {
		return envelope.Envelope{}, false
	}
	return item.Value(), true
}

// Set stores env under key with the cache's default TTL.
func (c *Cache) Set(key string, env envelope.Envelope) {
	c.items.Set(key, env, ttlcache.DefaultTTL)
}

func (c *Cache) Len() int { return c.items.Len() }

// Purge drops every entry.
func (c *Cache) Purge() { c.items.DeleteAll() }
