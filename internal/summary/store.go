package summary

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

const DefaultTTL = 60 * time.Minute

// Store keeps ready artifacts keyed by document content so that reopening the
// same document reuses its summary. Entries live in memory only.
type Store struct {
	cache *cache.Cache
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: cache.New(ttl, 2*ttl)}
}

// Key identifies a document by the digest of its text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (s *Store) Get(key string) (Artifact, bool) {
	if x, found := s.cache.Get(key); found {
		return x.(Artifact), true
	}
	return Artifact{}, false
}

func (s *Store) Put(key string, a Artifact) {
	s.cache.Set(key, a.clone(), cache.DefaultExpiration)
}

func (s *Store) Delete(key string) {
	s.cache.Delete(key)
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}
