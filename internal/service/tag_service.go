package service

import (
	"github.com/waymarker/waymarker-backend/internal/common"
	"github.com/waymarker/waymarker-backend/internal/domain"
	"github.com/waymarker/waymarker-backend/internal/repository"
)

// TagService tag exclusion business logic. Excluded tags render as plain
// text instead of links everywhere in the site.
type TagService interface {
	Exclusions() ([]string, error)
	AddExclusion(tag string) error
	IsExcluded(tag string) (bool, error)
}

type tagService struct {
	exclusions repository.TagExclusionRepository
}

// NewTagService creates a new TagService
func NewTagService(exclusions repository.TagExclusionRepository) TagService {
	return &tagService{exclusions: exclusions}
}

func (s *tagService) Exclusions() ([]string, error) {
	return s.exclusions.List()
}

// AddExclusion appends one normalized tag to the exclusion set. Adding a
// duplicate is a validation failure, not a silent no-op.
func (s *tagService) AddExclusion(tag string) error {
	normalized := domain.NormalizeTag(tag)
	if normalized == "" {
		return common.NewValidationError("tag", "required")
	}
	return s.exclusions.Add(normalized)
}

func (s *tagService) IsExcluded(tag string) (bool, error) {
	return s.exclusions.Exists(domain.NormalizeTag(tag))
}
