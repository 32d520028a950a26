package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"inventory-service/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping redis test")
	}
	rdb, err := Connect(context.Background(), addr, os.Getenv("TEST_REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	// Unique prefix per test so parallel runs never see each other's keys.
	return NewStore(rdb, "test:"+uuid.NewString()+":", time.Minute, nil)
}

func widget(qty int) *core.Product {
	return &core.Product{
		ID: 7, SKU: "WID-001", Name: "Widget",
		Price: decimal.RequireFromString("25.00"), Quantity: qty, MinThreshold: 5,
	}
}

func TestProductKey(t *testing.T) {
	require.Equal(t, "product:42", productKey(42))
}

func TestProductCacheFillsOnceAndServesHits(t *testing.T) {
	c := NewProductCache(newTestStore(t))
	ctx := context.Background()

	var loads atomic.Int32
	load := func(context.Context) (*core.Product, error) {
		loads.Add(1)
		return widget(10), nil
	}

	p, err := c.Fetch(ctx, 7, load)
	require.NoError(t, err)
	require.Equal(t, 10, p.Quantity)

	p, err = c.Fetch(ctx, 7, load)
	require.NoError(t, err)
	require.Equal(t, "WID-001", p.SKU)
	require.True(t, p.Price.Equal(decimal.RequireFromString("25.00")))
	require.Equal(t, int32(1), loads.Load())
}

func TestProductCacheInvalidatesOnChange(t *testing.T) {
	c := NewProductCache(newTestStore(t))
	ctx := context.Background()

	qty := 10
	load := func(context.Context) (*core.Product, error) { return widget(qty), nil }

	_, err := c.Fetch(ctx, 7, load)
	require.NoError(t, err)

	qty = 4
	c.ProductChanged(ctx, core.ProductEvent{Kind: core.ProductStockChanged, Product: *widget(4), Change: -6})

	p, err := c.Fetch(ctx, 7, load)
	require.NoError(t, err)
	require.Equal(t, 4, p.Quantity)
}

func TestProductCacheDoesNotCacheErrors(t *testing.T) {
	c := NewProductCache(newTestStore(t))
	ctx := context.Background()

	notFound := &core.NotFoundError{Resource: "product", ID: 7}
	_, err := c.Fetch(ctx, 7, func(context.Context) (*core.Product, error) { return nil, notFound })
	var nf *core.NotFoundError
	require.True(t, errors.As(err, &nf))

	p, err := c.Fetch(ctx, 7, func(context.Context) (*core.Product, error) { return widget(1), nil })
	require.NoError(t, err)
	require.Equal(t, 1, p.Quantity)
}

func TestProductCacheConcurrentMissesAllSucceed(t *testing.T) {
	c := NewProductCache(newTestStore(t))
	ctx := context.Background()

	load := func(context.Context) (*core.Product, error) {
		time.Sleep(10 * time.Millisecond)
		return widget(10), nil
	}

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := c.Fetch(ctx, 7, load)
			if err == nil && p.Quantity != 10 {
				err = errors.New("unexpected quantity")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestProductCacheDropsFillRacingAnInvalidation(t *testing.T) {
	c := NewProductCache(newTestStore(t))
	ctx := context.Background()

	// The loader reads the old row, then a ledger commit invalidates before the fill is written.
	stale := func(ctx context.Context) (*core.Product, error) {
		c.ProductChanged(ctx, core.ProductEvent{Kind: core.ProductStockChanged, Product: *widget(4), Change: -6})
		return widget(10), nil
	}
	p, err := c.Fetch(ctx, 7, stale)
	require.NoError(t, err)
	require.Equal(t, 10, p.Quantity)

	var loads atomic.Int32
	p, err = c.Fetch(ctx, 7, func(context.Context) (*core.Product, error) {
		loads.Add(1)
		return widget(4), nil
	})
	require.NoError(t, err)
	require.Equal(t, 4, p.Quantity)
	require.Equal(t, int32(1), loads.Load())
}

func TestStoreSetObjectAtChecksGeneration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	gen, err := s.Generation(ctx, "k")
	require.NoError(t, err)
	require.Zero(t, gen)

	require.NoError(t, s.Invalidate(ctx, "k"))
	ok, err := s.SetObjectAt(ctx, "k", widget(1), gen)
	require.NoError(t, err)
	require.False(t, ok)

	gen, err = s.Generation(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, int64(1), gen)
	ok, err = s.SetObjectAt(ctx, "k", widget(1), gen)
	require.NoError(t, err)
	require.True(t, ok)

	var got core.Product
	found, err := s.GetObject(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1, got.Quantity)
}
