package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/waymarker/waymarker-backend/internal/common"
	"github.com/waymarker/waymarker-backend/internal/domain"
)

// ContentRepository live content data access
type ContentRepository interface {
	Create(item *domain.ContentItem) error
	FindByID(id uuid.UUID) (*domain.ContentItem, error)
	ListAll() ([]*domain.ContentItem, error)
	ListByIDs(ids []uuid.UUID) ([]*domain.ContentItem, error)
	ListChangedSince(v domain.Version) ([]*domain.ContentItem, error)
	Count() (int64, error)
	MaxContentVersion() (domain.Version, error)

	// UpdateWithArchive replaces the live row with updated inside one
	// transaction that first archives prior as a historic snapshot.
	// A snapshot key collision fails the whole transaction.
	UpdateWithArchive(prior, updated *domain.ContentItem) error

	// DeleteWithArchive archives the final live state then removes the
	// live row, as one transaction.
	DeleteWithArchive(item *domain.ContentItem) error
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(item *domain.ContentItem) error {
	return r.db.Create(item).Error
}

func (r *contentRepository) FindByID(id uuid.UUID) (*domain.ContentItem, error) {
	var item domain.ContentItem
	err := r.db.Where("content_id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *contentRepository) ListAll() ([]*domain.ContentItem, error) {
	var items []*domain.ContentItem
	err := r.db.Order("content_version DESC").Find(&items).Error
	return items, err
}

func (r *contentRepository) ListByIDs(ids []uuid.UUID) ([]*domain.ContentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []*domain.ContentItem
	err := r.db.Where("content_id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *contentRepository) ListChangedSince(v domain.Version) ([]*domain.ContentItem, error) {
	var items []*domain.ContentItem
	err := r.db.Where("content_version > ?", v).Find(&items).Error
	return items, err
}

func (r *contentRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&domain.ContentItem{}).Count(&n).Error
	return n, err
}

func (r *contentRepository) MaxContentVersion() (domain.Version, error) {
	var raw *string
	err := r.db.Model(&domain.ContentItem{}).
		Select("MAX(content_version)").
		Scan(&raw).Error
	if err != nil || raw == nil {
		return domain.Version{}, err
	}
	t, err := domain.ParseVersion(*raw)
	if err != nil {
		return domain.Version{}, err
	}
	return domain.NewVersion(t), nil
}

func (r *contentRepository) UpdateWithArchive(prior, updated *domain.ContentItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := archiveSnapshot(tx, domain.NewHistoricSnapshot(prior)); err != nil {
			return err
		}
		res := tx.Model(&domain.ContentItem{}).
			Where("content_id = ? AND content_version = ?", prior.ContentID, prior.ContentVersion).
			Select("*").Omit("content_id").
			Updates(updated)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a race: the live row moved past prior since it was read.
			return common.ErrStaleVersion
		}
		return nil
	})
}

func (r *contentRepository) DeleteWithArchive(item *domain.ContentItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := archiveSnapshot(tx, domain.NewHistoricSnapshot(item)); err != nil {
			return err
		}
		return tx.Where("content_id = ?", item.ContentID).
			Delete(&domain.ContentItem{}).Error
	})
}

// archiveSnapshot inserts one historic snapshot, failing fast on a key
// collision: a duplicate (content_id, content_version) means version
// monotonicity was violated upstream and must not be papered over.
func archiveSnapshot(tx *gorm.DB, snap *domain.HistoricSnapshot) error {
	var count int64
	if err := tx.Model(&domain.HistoricSnapshot{}).
		Where("content_id = ? AND content_version = ?", snap.ContentID, snap.ContentVersion).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return common.NewConsistencyError(
			"historic snapshot already exists for %s at %s",
			snap.ContentID, snap.ContentVersion)
	}
	if err := tx.Create(snap).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.NewConsistencyError(
				"historic snapshot already exists for %s at %s",
				snap.ContentID, snap.ContentVersion)
		}
		return err
	}
	return nil
}
