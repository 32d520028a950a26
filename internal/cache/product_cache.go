package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"inventory-service/internal/core"

	"github.com/bsm/redislock"
	"go.uber.org/zap"
)

const (
	fillLockTTL = 5 * time.Second
	fillWait    = 50 * time.Millisecond
)

// ProductCache serves core.ProductService reads from Redis.
// It also implements core.ProductObserver so committed stock and catalog changes drop the entry.
//
// Redis failures never fail a read: the product is loaded from the database instead.
type ProductCache struct {
	store *Store
	log   *zap.Logger
}

var (
	_ core.ProductCache    = (*ProductCache)(nil)
	_ core.ProductObserver = (*ProductCache)(nil)
)

// NewProductCache returns a cache over store.
func NewProductCache(store *Store) *ProductCache {
	return &ProductCache{store: store, log: store.log.Named("product_cache")}
}

func productKey(id int) string {
	return "product:" + strconv.Itoa(id)
}

// Fetch returns the cached product or fills the entry from load.
// Only one caller fills a missing entry; others wait briefly and re-read before loading themselves.
func (c *ProductCache) Fetch(ctx context.Context, id int, load func(context.Context) (*core.Product, error)) (*core.Product, error) {
	key := productKey(id)

	if p, ok := c.get(ctx, key); ok {
		return p, nil
	}

	lock, err := c.store.Lock(ctx, key, fillLockTTL)
	switch {
	case errors.Is(err, redislock.ErrNotObtained):
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(fillWait):
		}
		if p, ok := c.get(ctx, key); ok {
			return p, nil
		}
		return load(ctx)
	case err != nil:
		c.log.Warn("cache lock failed", zap.String("key", key), zap.Error(err))
		return load(ctx)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			c.log.Warn("cache lock release failed", zap.String("key", key), zap.Error(err))
		}
	}()

	// An invalidation that lands while load runs bumps the generation and the fill is dropped.
	gen, err := c.store.Generation(ctx, key)
	if err != nil {
		c.log.Warn("cache generation read failed", zap.String("key", key), zap.Error(err))
		return load(ctx)
	}
	p, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := c.store.SetObjectAt(ctx, key, p, gen); err != nil {
		c.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return p, nil
}

func (c *ProductCache) get(ctx context.Context, key string) (*core.Product, bool) {
	var p core.Product
	ok, err := c.store.GetObject(ctx, key, &p)
	if err != nil {
		c.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &p, true
}

// ProductChanged drops the cached entry for the changed product.
func (c *ProductCache) ProductChanged(ctx context.Context, e core.ProductEvent) {
	key := productKey(e.Product.ID)
	if err := c.store.Invalidate(ctx, key); err != nil {
		c.log.Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
