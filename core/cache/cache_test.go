package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("k", 42, 20*time.Millisecond)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	time.Sleep(30 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestTTLCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewTTLCache[string, string]()
	c.Set("k", "v", 0)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestTTLCacheDelete(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("k", 1, time.Minute)
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestNoopCacheNeverHits(t *testing.T) {
	c := NoopCache[string, int]{}
	c.Set("k", 1, time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestLoaderCachesResult(t *testing.T) {
	l := NewLoader[int](NewTTLCache[string, int](), time.Minute)

	var calls atomic.Int32
	fetch := func() (int, error) {
		calls.Add(1)
		return 7, nil
	}

	for i := 0; i < 3; i++ {
		v, err := l.Get("k", fetch)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestLoaderDoesNotCacheErrors(t *testing.T) {
	l := NewLoader[int](NewTTLCache[string, int](), time.Minute)

	var calls atomic.Int32
	boom := errors.New("boom")
	_, err := l.Get("k", func() (int, error) {
		calls.Add(1)
		return 0, boom
	})
	require.ErrorIs(t, err, boom)

	v, err := l.Get("k", func() (int, error) {
		calls.Add(1)
		return 9, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 9, v)
	assert.EqualValues(t, 2, calls.Load())
}

func TestLoaderDeduplicatesConcurrentFetches(t *testing.T) {
	l := NewLoader[int](NewTTLCache[string, int](), time.Minute)

	var calls atomic.Int32
	gate := make(chan struct{})
	fetch := func() (int, error) {
		calls.Add(1)
		<-gate
		return 1, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.Get("k", fetch)
			assert.NoError(t, err)
			assert.Equal(t, 1, v)
		}()
	}

	// Give the goroutines time to pile onto the singleflight slot.
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
}

func TestLoaderWithNoopCacheStillFetches(t *testing.T) {
	l := NewLoader[int](NoopCache[string, int]{}, 0)

	var calls atomic.Int32
	for i := 0; i < 2; i++ {
		v, err := l.Get("k", func() (int, error) {
			calls.Add(1)
			return 3, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, v)
	}
	assert.EqualValues(t, 2, calls.Load())
}
