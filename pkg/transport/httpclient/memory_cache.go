package httpclient

import (
	"time"

	"github.com/karlseguin/ccache/v2"

	"github.com/luizaranda/go-restclient/pkg/transport"
)

// A Cache is a transport.Cache that must be closed once it is not needed
// anymore.
type Cache interface {
	transport.Cache

	// Close stops the background goroutines of the cache. Operations on a
	// closed cache may panic. Package httpclient never calls Close.
	Close() error
}

// MiB represents an integer value in Mega Bytes (1024*1024 bytes). It is used
// to indicate the local in-memory cache size.
type MiB int64

func (m MiB) bytes() int64 { return int64(m * 1024 * 1024) }

var (
	// DefaultCacheTTL is how long responses are kept by NewLocalCache when
	// no TTL is given.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCache is used by EnableCache when no custom cache is given.
	DefaultCache transport.Cache = NewLocalCache(64, DefaultCacheTTL)
)

type cache struct {
	cache *ccache.Cache
	ttl   time.Duration
}

// sizedBytes implements ccache.Sized so that memory usage is tracked by
// payload size rather than by item count.
type sizedBytes []byte

// Size adds the ~350 bytes of per entry overhead of ccache.
func (s sizedBytes) Size() int64 {
	return int64(len(s)) + 350
}

// NewLocalCache returns an in-memory LRU cache of serialized responses that
// tries to stay below maxSize megabytes. Entries expire after ttl, or after
// DefaultCacheTTL when ttl is not positive.
//
// Memory is reclaimed in background, so the cache may temporarily exceed
// maxSize. Short lived caches must be closed to avoid leaking goroutines.
func NewLocalCache(maxSize MiB, ttl time.Duration) Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	gcThreshold := uint32(maxSize) / 10
	if gcThreshold == 0 {
		gcThreshold = 1
	}

	cfg := ccache.Configure().
		MaxSize(maxSize.bytes()).
		ItemsToPrune(gcThreshold)

	return &cache{
		cache: ccache.New(cfg),
		ttl:   ttl,
	}
}

func (c *cache) Get(key string) ([]byte, bool) {
	item := c.cache.Get(key)
	if item == nil || item.Expired() {
		return nil, false
	}

	b, ok := item.Value().(sizedBytes)
	return b, ok
}

func (c *cache) Set(key string, responseBytes []byte) {
	c.cache.Set(key, sizedBytes(responseBytes), c.ttl)
}

func (c *cache) Delete(key string) {
	c.cache.Delete(key)
}

func (c *cache) Close() error {
	c.cache.Stop()
	return nil
}
