package perf

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/supervisorrt/orchestrator/capability/embedder"
	"github.com/supervisorrt/orchestrator/capability/kvstore"
)

// DefaultSimilarityThreshold is the cosine-similarity bar a cached entry
// must clear to count as a hit (§4.7.2, §6.5 SEMANTIC_CACHE_THRESHOLD).
const DefaultSimilarityThreshold = 0.95

// DefaultCacheTTL is how long a cache entry survives (§6.5 CACHE_TTL_DAYS).
const DefaultCacheTTL = 7 * 24 * time.Hour

// vectorKeyPrefix namespaces cache entries in the backing KVStore; Keys
// scans use this prefix (§4.7.2, expansion).
const vectorKeyPrefix = "vector:"

type cacheEntry struct {
	Query  string    `json:"query"`
	Vector []float64 `json:"vector"`
	Answer string    `json:"answer"`
}

// SemanticCache answers a query from a prior near-identical query's cached
// answer, using cosine similarity over embedded vectors. A dependency
// failure (store or embedder erroring) degrades silently to a miss rather
// than failing the request (§4.7.2).
type SemanticCache struct {
	KV        kvstore.Store
	Embedder  embedder.Embedder
	Threshold float64
	TTL       time.Duration
}

// NewSemanticCache returns a cache with the §6.5 defaults; override
// Threshold/TTL afterwards if config specifies otherwise.
func NewSemanticCache(kv kvstore.Store, emb embedder.Embedder) *SemanticCache {
	return &SemanticCache{
		KV:        kv,
		Embedder:  emb,
		Threshold: DefaultSimilarityThreshold,
		TTL:       DefaultCacheTTL,
	}
}

// Lookup returns a cached answer for a query similar enough to a prior one,
// or false on a miss or any dependency failure.
func (c *SemanticCache) Lookup(ctx context.Context, query string) (string, bool) {
	if c.KV == nil || c.Embedder == nil {
		return "", false
	}
	vec, err := c.Embedder.Embed(ctx, query)
	if err != nil {
		return "", false
	}
	keys, err := c.KV.Keys(ctx, vectorKeyPrefix)
	if err != nil {
		return "", false
	}
	var best cacheEntry
	bestScore := -1.0
	for _, key := range keys {
		raw, ok, err := c.KV.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		var entry cacheEntry
		if json.Unmarshal([]byte(raw), &entry) != nil {
			continue
		}
		score := embedder.CosineSimilarity(vec, entry.Vector)
		if score > bestScore {
			bestScore = score
			best = entry
		}
	}
	if bestScore < c.Threshold {
		return "", false
	}
	return best.Answer, true
}

// Save persists query/answer for future Lookup calls. Failures are
// swallowed: a fire-and-forget cache write never affects the response that
// triggered it (§4.7.2, §4.8).
func (c *SemanticCache) Save(ctx context.Context, query, answer string) {
	if c.KV == nil || c.Embedder == nil {
		return
	}
	vec, err := c.Embedder.Embed(ctx, query)
	if err != nil {
		return
	}
	entry := cacheEntry{Query: query, Vector: vec, Answer: answer}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	key := vectorKeyPrefix + md5Hex(query)
	_ = c.KV.Set(ctx, key, string(raw), c.TTL)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
