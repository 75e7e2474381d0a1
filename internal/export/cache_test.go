package export

import (
	"image/color"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/caption-art/internal/imaging"
	"github.com/ironsheep/caption-art/internal/mocks"
)

func TestScaledCache_TTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)

	now := time.Date(2025, 1, 27, 12, 0, 0, 0, time.UTC)
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return now }).AnyTimes()

	cache := newScaledCache(clock, 5*time.Second)
	src := contentSurface(t, 10, 10)
	scaled := contentSurface(t, 5, 5)
	key := newCacheKey(src, 5)

	cache.put(key, scaled)

	now = now.Add(4 * time.Second)
	got, ok := cache.get(key)
	require.True(t, ok)
	assert.Same(t, scaled, got)

	now = now.Add(time.Second)
	_, ok = cache.get(key)
	assert.False(t, ok, "entry must expire after the TTL")
	assert.Equal(t, 0, cache.len(), "expired entries are purged")
}

func TestScaledCache_KeyIncludesContent(t *testing.T) {
	a := contentSurface(t, 10, 10)
	b, err := imaging.NewSurface(10, 10)
	require.NoError(t, err)
	b.Fill(color.NRGBA{0, 255, 0, 255})

	assert.Equal(t, newCacheKey(a, 5), newCacheKey(a.Clone(), 5))
	assert.NotEqual(t, newCacheKey(a, 5), newCacheKey(b, 5))
	assert.NotEqual(t, newCacheKey(a, 5), newCacheKey(a, 6))
}

func TestScaledCache_ZeroTTLDisables(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)

	cache := newScaledCache(clock, 0)
	src := contentSurface(t, 4, 4)
	cache.put(newCacheKey(src, 2), src)

	assert.Equal(t, 0, cache.len())
}

func TestScaledCache_Clear(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Unix(0, 0)).AnyTimes()

	cache := newScaledCache(clock, time.Minute)
	src := contentSurface(t, 4, 4)
	cache.put(newCacheKey(src, 2), src)
	cache.put(newCacheKey(src, 3), src)
	assert.Equal(t, 2, cache.len())

	cache.clear()
	assert.Equal(t, 0, cache.len())
}
