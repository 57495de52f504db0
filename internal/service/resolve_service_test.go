package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waymarker/waymarker-backend/internal/domain"
	"github.com/waymarker/waymarker-backend/internal/events"
	"github.com/waymarker/waymarker-backend/pkg/cache"
)

type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := f.entries[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = data
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func (f *fakeCache) GetResolved(ctx context.Context, contentID string, dest interface{}) error {
	return f.Get(ctx, "resolved:"+contentID, dest)
}

func (f *fakeCache) SetResolved(ctx context.Context, contentID string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries["resolved:"+contentID] = data
	return nil
}

func (f *fakeCache) DeleteResolved(ctx context.Context, contentID string) error {
	return f.Delete(ctx, "resolved:"+contentID)
}

func newResolveFixture(title string) (*mockContentRepo, *domain.ContentItem) {
	repo := newMockContentRepo()
	item := &domain.ContentItem{
		ContentID:      uuid.New(),
		ContentVersion: domain.NewVersionStamper().Next(),
		Kind:           domain.KindPhoto,
		Slug:           "old-bridge",
		Folder:         "photos",
		Title:          title,
	}
	repo.items[item.ContentID] = item
	return repo, item
}

func TestResolveBracketCodes_ServesCachedTargetWithinTTL(t *testing.T) {
	repo, item := newResolveFixture("Old Bridge")
	svc := NewResolveService(repo, newFakeCache())

	text := fmt.Sprintf("{{PhotoLink %s}}", item.ContentID)
	refs, err := svc.ResolveBracketCodes(context.Background(), text, "photolink")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "Old Bridge", refs[0].TargetTitle)

	// Without an eviction the stale entry is served.
	repo.items[item.ContentID].Title = "New Bridge"
	refs, err = svc.ResolveBracketCodes(context.Background(), text, "photolink")
	require.NoError(t, err)
	assert.Equal(t, "Old Bridge", refs[0].TargetTitle)
}

func TestResolveBracketCodes_UpdateEventEvictsCachedTarget(t *testing.T) {
	repo, item := newResolveFixture("Old Bridge")
	cacheSvc := newFakeCache()
	svc := NewResolveService(repo, cacheSvc)

	bus := events.NewBus(zerolog.Nop())
	SubscribeResolveCacheInvalidation(bus, cacheSvc)

	text := fmt.Sprintf("{{PhotoLink %s}}", item.ContentID)
	refs, err := svc.ResolveBracketCodes(context.Background(), text, "photolink")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "Old Bridge", refs[0].TargetTitle)

	repo.items[item.ContentID].Title = "New Bridge"
	bus.Publish(events.TopicContentUpdated, map[string]interface{}{
		"content_id": item.ContentID.String(),
	})

	refs, err = svc.ResolveBracketCodes(context.Background(), text, "photolink")
	require.NoError(t, err)
	assert.Equal(t, "New Bridge", refs[0].TargetTitle)
}

func TestResolveBracketCodes_DeleteEventEvictsCachedTarget(t *testing.T) {
	repo, item := newResolveFixture("Old Bridge")
	cacheSvc := newFakeCache()
	svc := NewResolveService(repo, cacheSvc)

	bus := events.NewBus(zerolog.Nop())
	SubscribeResolveCacheInvalidation(bus, cacheSvc)

	text := fmt.Sprintf("{{PhotoLink %s}}", item.ContentID)
	_, err := svc.ResolveBracketCodes(context.Background(), text, "photolink")
	require.NoError(t, err)

	delete(repo.items, item.ContentID)
	bus.Publish(events.TopicContentDeleted, map[string]interface{}{
		"content_id": item.ContentID.String(),
	})

	refs, err := svc.ResolveBracketCodes(context.Background(), text, "photolink")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.False(t, refs[0].Resolved)
}
