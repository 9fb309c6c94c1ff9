// Package shortcode keeps the shortcode table in memory between exports.
package shortcode

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/repository"
)

const DefaultTTL = 10 * time.Minute

// Cache loads shortcodes on demand and reuses them for ttl. Concurrent
// callers share one load.
type Cache struct {
	mu       sync.RWMutex
	byID     map[string]domain.Shortcode
	loadedAt time.Time
	ttl      time.Duration
	group    singleflight.Group
	reader   repository.ShortcodeReader
	logger   *zap.Logger
	now      func() time.Time
}

func NewCache(reader repository.ShortcodeReader, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{reader: reader, ttl: ttl, logger: logger, now: time.Now}
}

func (c *Cache) fresh() (map[string]domain.Shortcode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.byID != nil && c.now().Sub(c.loadedAt) < c.ttl {
		return c.byID, true
	}
	return nil, false
}

// Load returns the id-keyed shortcode table, reading the store on a miss.
func (c *Cache) Load(ctx context.Context) (map[string]domain.Shortcode, error) {
	if byID, ok := c.fresh(); ok {
		return byID, nil
	}

	result, err, _ := c.group.Do("load", func() (any, error) {
		if byID, ok := c.fresh(); ok {
			return byID, nil
		}
		// Shared by every waiter, so one caller's cancellation must not fail the rest.
		list, err := c.reader.ListShortcodes(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		byID := make(map[string]domain.Shortcode, len(list))
		for _, sc := range list {
			if sc.ID != "" {
				byID[sc.ID] = sc
			}
		}

		c.mu.Lock()
		c.byID = byID
		c.loadedAt = c.now()
		c.mu.Unlock()
		return byID, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]domain.Shortcode), nil
}

// Shortcodes is Load for callers that can work without the table: a load
// failure is logged and nil is returned.
func (c *Cache) Shortcodes(ctx context.Context) map[string]domain.Shortcode {
	byID, err := c.Load(ctx)
	if err != nil {
		c.logger.Warn("loading shortcodes failed", zap.Error(err))
		return nil
	}
	return byID
}

// Invalidate forces the next call to reload.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.byID = nil
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}
