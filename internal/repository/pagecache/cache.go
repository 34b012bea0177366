package pagecache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cityhealth/directory/internal/db"
	"github.com/cityhealth/directory/internal/domain"
	"github.com/cityhealth/directory/internal/domain/search/result"
)

var (
	pageKeyPrefix   = domain.KeyPrefix + "page:"
	cursorKeyPrefix = domain.KeyPrefix + "cursor:"
)

// store is the consumer interface for the page cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache keeps rendered search pages and the cursors that start each page.
// Every failure is logged and treated as a miss.
type Cache struct {
	store      store
	pageTTL    time.Duration
	cursorTTL  time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a page cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	s store,
	pageTTL, cursorTTL time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		store:      s,
		pageTTL:    pageTTL,
		cursorTTL:  cursorTTL,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// GetPage returns the cached page for key.
func (c *Cache) GetPage(ctx context.Context, key string) (result.Page, bool) {
	data, ok := c.get(ctx, pageKeyPrefix+key)
	if !ok {
		c.inc("miss")
		return result.Page{}, false
	}
	var p result.Page
	if err := json.Unmarshal(data, &p); err != nil {
		c.logger.Warn("Failed to parse cached page", zap.String("key", key), zap.Error(err))
		c.inc("miss")
		return result.Page{}, false
	}
	c.inc("hit")
	return p, true
}

// PutPage caches p under key.
func (c *Cache) PutPage(ctx context.Context, key string, p *result.Page) {
	data, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("Failed to encode page", zap.String("key", key), zap.Error(err))
		return
	}
	c.set(ctx, pageKeyPrefix+key, data, c.pageTTL)
}

// GetCursor returns the cursor that starts page n of the result set baseKey.
func (c *Cache) GetCursor(ctx context.Context, baseKey string, n int) (string, bool) {
	data, ok := c.get(ctx, cursorKey(baseKey, n))
	if !ok || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// PutCursor remembers the cursor that starts page n of the result set baseKey.
func (c *Cache) PutCursor(ctx context.Context, baseKey string, n int, cursor string) {
	if cursor == "" {
		return
	}
	c.set(ctx, cursorKey(baseKey, n), []byte(cursor), c.cursorTTL)
}

func cursorKey(baseKey string, n int) string {
	return cursorKeyPrefix + baseKey + ":" + strconv.Itoa(n)
}

func (c *Cache) get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (c *Cache) set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := c.store.SetWithTTL(ctx, key, data, ttl); err != nil {
		c.logger.Warn("Failed to write cache", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
