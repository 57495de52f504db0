package repository

import (
	"gorm.io/gorm"

	"github.com/waymarker/waymarker-backend/internal/common"
	"github.com/waymarker/waymarker-backend/internal/domain"
)

// TagExclusionRepository tag exclusion data access. The set is append-only.
type TagExclusionRepository interface {
	Add(tag string) error
	List() ([]string, error)
	Exists(tag string) (bool, error)
}

type tagExclusionRepository struct {
	db *gorm.DB
}

// NewTagExclusionRepository creates a new TagExclusionRepository
func NewTagExclusionRepository(db *gorm.DB) TagExclusionRepository {
	return &tagExclusionRepository{db: db}
}

func (r *tagExclusionRepository) Add(tag string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.TagExclusion{}).
			Where("tag = ?", tag).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return common.ErrDuplicateTag
		}
		return tx.Create(&domain.TagExclusion{Tag: tag}).Error
	})
}

func (r *tagExclusionRepository) List() ([]string, error) {
	var tags []string
	err := r.db.Model(&domain.TagExclusion{}).
		Order("tag ASC").
		Pluck("tag", &tags).Error
	return tags, err
}

func (r *tagExclusionRepository) Exists(tag string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.TagExclusion{}).
		Where("tag = ?", tag).
		Count(&count).Error
	return count > 0, err
}
