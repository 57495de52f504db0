package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/waymarker/waymarker-backend/internal/domain"
)

// EdgeRepository related-content edge data access
type EdgeRepository interface {
	// ReplaceForSource supersedes every edge previously recorded for the
	// source, whatever run discovered them, with the given set.
	ReplaceForSource(source uuid.UUID, edges []domain.RelatedContentEdge) error
	EdgesFrom(source uuid.UUID, generationVersion domain.Version) ([]domain.RelatedContentEdge, error)
	EdgesInto(target uuid.UUID, generationVersion domain.Version) ([]domain.RelatedContentEdge, error)
	DeleteForSource(source uuid.UUID) error
}

type edgeRepository struct {
	db *gorm.DB
}

// NewEdgeRepository creates a new EdgeRepository
func NewEdgeRepository(db *gorm.DB) EdgeRepository {
	return &edgeRepository{db: db}
}

func (r *edgeRepository) ReplaceForSource(source uuid.UUID, edges []domain.RelatedContentEdge) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("content_one = ?", source).
			Delete(&domain.RelatedContentEdge{}).Error; err != nil {
			return err
		}
		if len(edges) == 0 {
			return nil
		}
		return tx.Create(&edges).Error
	})
}

func (r *edgeRepository) EdgesFrom(source uuid.UUID, generationVersion domain.Version) ([]domain.RelatedContentEdge, error) {
	var edges []domain.RelatedContentEdge
	err := r.db.Where("content_one = ? AND generation_version = ?", source, generationVersion).
		Find(&edges).Error
	return edges, err
}

func (r *edgeRepository) EdgesInto(target uuid.UUID, generationVersion domain.Version) ([]domain.RelatedContentEdge, error) {
	var edges []domain.RelatedContentEdge
	err := r.db.Where("content_two = ? AND generation_version = ?", target, generationVersion).
		Find(&edges).Error
	return edges, err
}

func (r *edgeRepository) DeleteForSource(source uuid.UUID) error {
	return r.db.Where("content_one = ?", source).
		Delete(&domain.RelatedContentEdge{}).Error
}
