package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/waymarker/waymarker-backend/internal/bracket"
	"github.com/waymarker/waymarker-backend/internal/common"
	"github.com/waymarker/waymarker-backend/internal/domain"
	"github.com/waymarker/waymarker-backend/internal/events"
	"github.com/waymarker/waymarker-backend/internal/repository"
	"github.com/waymarker/waymarker-backend/pkg/cache"
	"github.com/waymarker/waymarker-backend/pkg/logger"
)

// ResolvedRef is a bracket code reference resolved against live content, the
// form renderers need to turn a reference into a link or embed.
type ResolvedRef struct {
	ContentID     uuid.UUID `json:"content_id"`
	RawText       string    `json:"raw_text"`
	DisplayText   string    `json:"display_text"`
	Resolved      bool      `json:"resolved"`
	TargetKind    string    `json:"target_kind,omitempty"`
	TargetSlug    string    `json:"target_slug,omitempty"`
	TargetFolder  string    `json:"target_folder,omitempty"`
	TargetTitle   string    `json:"target_title,omitempty"`
	TargetVersion string    `json:"target_version,omitempty"`
}

// ResolveService resolves bracket codes for external renderers. An unresolved
// reference is flagged, never an error: rendering proceeds with the reference
// left unresolved rather than aborting.
type ResolveService interface {
	ResolveBracketCodes(ctx context.Context, text, token string) ([]ResolvedRef, error)
}

type resolveService struct {
	content repository.ContentRepository
	cache   cache.Service
}

// NewResolveService creates a new ResolveService. cacheSvc may be nil; the
// resolver then always hits the live store.
func NewResolveService(content repository.ContentRepository, cacheSvc cache.Service) ResolveService {
	return &resolveService{content: content, cache: cacheSvc}
}

// SubscribeResolveCacheInvalidation evicts a target's cached resolution as
// soon as the target is updated or deleted, so resolves inside the cache TTL
// never serve the pre-change title, slug or version.
func SubscribeResolveCacheInvalidation(bus *events.Bus, cacheSvc cache.Service) {
	if bus == nil || cacheSvc == nil {
		return
	}
	invalidate := func(event events.Event) {
		id, _ := event.Payload["content_id"].(string)
		if id == "" {
			return
		}
		if err := cacheSvc.DeleteResolved(context.Background(), id); err != nil {
			logger.GetLogger().Warn().Err(err).
				Str("content_id", id).
				Msg("resolve cache eviction failed")
		}
	}
	bus.Subscribe("resolve-cache", events.TopicContentUpdated, invalidate)
	bus.Subscribe("resolve-cache", events.TopicContentDeleted, invalidate)
}

func (s *resolveService) ResolveBracketCodes(ctx context.Context, text, token string) ([]ResolvedRef, error) {
	refs := bracket.FindContentRefs(text, token)
	resolved := make([]ResolvedRef, 0, len(refs))

	for _, ref := range refs {
		if s.cache != nil {
			var cached ResolvedRef
			if err := s.cache.GetResolved(ctx, ref.ContentID.String(), &cached); err == nil {
				cached.RawText = ref.RawText
				if ref.DisplayText != "" {
					cached.DisplayText = ref.DisplayText
				}
				resolved = append(resolved, cached)
				continue
			}
		}

		target, err := s.content.FindByID(ref.ContentID)
		if errors.Is(err, common.ErrContentNotFound) {
			// ReferenceError semantics: flag and continue.
			logger.GetLogger().Warn().
				Str("target_id", ref.ContentID.String()).
				Str("raw", ref.RawText).
				Msg("bracket code cites unknown content")
			resolved = append(resolved, ResolvedRef{
				ContentID:   ref.ContentID,
				RawText:     ref.RawText,
				DisplayText: ref.DisplayText,
				Resolved:    false,
			})
			continue
		}
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, s.resolvedFor(ctx, ref, target))
	}
	return resolved, nil
}

func (s *resolveService) resolvedFor(ctx context.Context, ref bracket.ContentRef, target *domain.ContentItem) ResolvedRef {
	display := ref.DisplayText
	if display == "" {
		display = target.Title
	}
	out := ResolvedRef{
		ContentID:     ref.ContentID,
		RawText:       ref.RawText,
		DisplayText:   display,
		Resolved:      true,
		TargetKind:    string(target.Kind),
		TargetSlug:    target.Slug,
		TargetFolder:  target.Folder,
		TargetTitle:   target.Title,
		TargetVersion: target.ContentVersion.String(),
	}

	if s.cache != nil {
		if err := s.cache.SetResolved(ctx, ref.ContentID.String(), out); err != nil {
			logger.GetLogger().Warn().Err(err).Msg("resolve cache write failed")
		}
	}
	return out
}
