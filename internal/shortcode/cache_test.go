package shortcode

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

type slowReader struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (r *slowReader) ListShortcodes(context.Context) ([]domain.Shortcode, error) {
	r.calls.Add(1)
	time.Sleep(r.delay)
	if r.err != nil {
		return nil, r.err
	}
	return []domain.Shortcode{
		{ID: "SC001", Code: "TV", DisplayNameFR: "Télévision", DisplayNameEN: "Television"},
		{ID: "SC002", Code: "RAD", DisplayNameFR: "Radio"},
	}, nil
}

func TestCache_LoadsOnceWithinTTL(t *testing.T) {
	reader := &slowReader{}
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewCache(reader, time.Minute, nil)
	c.now = func() time.Time { return now }

	byID, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, byID, 2)
	assert.Equal(t, "Television", byID["SC001"].DisplayNameEN)

	_, err = c.Load(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, reader.calls.Load())

	now = now.Add(time.Minute)
	_, err = c.Load(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, reader.calls.Load())
}

func TestCache_CoalescesConcurrentLoads(t *testing.T) {
	reader := &slowReader{delay: 50 * time.Millisecond}
	c := NewCache(reader, time.Minute, nil)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Load(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, reader.calls.Load())
}

type gatedReader struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (r *gatedReader) ListShortcodes(ctx context.Context) ([]domain.Shortcode, error) {
	if r.calls.Add(1) == 1 {
		close(r.started)
	}
	<-r.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []domain.Shortcode{{ID: "SC001", Code: "TV"}}, nil
}

func TestCache_CanceledCallerDoesNotFailSharedLoad(t *testing.T) {
	reader := &gatedReader{started: make(chan struct{}), release: make(chan struct{})}
	c := NewCache(reader, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := c.Load(ctx)
		first <- err
	}()
	<-reader.started

	second := make(chan error, 1)
	go func() {
		byID, err := c.Load(context.Background())
		if err == nil && len(byID) != 1 {
			err = errors.New("unexpected table size")
		}
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(reader.release)

	require.NoError(t, <-second)
	<-first
	assert.EqualValues(t, 1, reader.calls.Load())
}

func TestCache_ShortcodesReturnsNilOnFailure(t *testing.T) {
	c := NewCache(&slowReader{err: errors.New("permission denied")}, time.Minute, nil)
	assert.Nil(t, c.Shortcodes(context.Background()))
}

func TestCache_Invalidate(t *testing.T) {
	reader := &slowReader{}
	c := NewCache(reader, time.Hour, nil)

	_, err := c.Load(context.Background())
	require.NoError(t, err)
	c.Invalidate()
	_, err = c.Load(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, reader.calls.Load())
}
