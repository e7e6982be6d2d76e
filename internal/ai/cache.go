package ai

import (
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"
)

// responseCache 带容量上限的响应缓存，超出上限时淘汰最早写入的一批
type responseCache struct {
	mu         sync.Mutex
	items      *gocache.Cache
	maxEntries int
	evictCount int
	seq        uint64
}

type cachedResponse struct {
	text string
	seq  uint64
}

func newResponseCache(ttl time.Duration, maxEntries, evictCount int) *responseCache {
	return &responseCache{
		items:      gocache.New(ttl, ttl),
		maxEntries: maxEntries,
		evictCount: evictCount,
	}
}

func (c *responseCache) get(key string) (string, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return "", false
	}
	r, ok := v.(cachedResponse)
	return r.text, ok
}

// set 写入后检查容量，按写入顺序淘汰
func (c *responseCache) set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.items.SetDefault(key, cachedResponse{text: value, seq: c.seq})
	if c.maxEntries <= 0 || c.items.ItemCount() <= c.maxEntries {
		return
	}

	type entry struct {
		key string
		seq uint64
	}
	all := c.items.Items()
	entries := make([]entry, 0, len(all))
	for k, item := range all {
		if r, ok := item.Object.(cachedResponse); ok {
			entries = append(entries, entry{key: k, seq: r.seq})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	for _, e := range entries[:min(c.evictCount, len(entries))] {
		c.items.Delete(e.key)
	}
}

func (c *responseCache) len() int {
	return c.items.ItemCount()
}

func (c *responseCache) flush() {
	c.items.Flush()
}

type contextSignature struct {
	FilesCount int  `json:"files_count"`
	HasHistory bool `json:"has_history"`
}

// cacheKeyData 字段按名称排序声明，序列化结果与键顺序无关
type cacheKeyData struct {
	ContextHash *string `json:"context_hash"`
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
}

// cacheKey 对 (prompt, model, 粗粒度上下文签名) 做哈希
func cacheKey(prompt, modelName string, gctx *GenerateContext) string {
	data := cacheKeyData{Model: modelName, Prompt: prompt}
	if gctx != nil {
		sig, _ := json.Marshal(contextSignature{
			FilesCount: len(gctx.Files),
			HasHistory: len(gctx.History) > 0,
		})
		h := strconv.FormatUint(xxhash.Sum64(sig), 16)
		data.ContextHash = &h
	}
	b, _ := json.Marshal(data)
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}
