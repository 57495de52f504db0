package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/waymarker/waymarker-backend/internal/domain"
)

// GenerationRepository generation run bookkeeping. Runs are append-only.
type GenerationRepository interface {
	Append(run *domain.GenerationRun) error
	// Latest returns the most recent completed run, or nil when no build
	// has ever completed.
	Latest() (*domain.GenerationRun, error)
	List(limit int) ([]*domain.GenerationRun, error)
}

type generationRepository struct {
	db *gorm.DB
}

// NewGenerationRepository creates a new GenerationRepository
func NewGenerationRepository(db *gorm.DB) GenerationRepository {
	return &generationRepository{db: db}
}

func (r *generationRepository) Append(run *domain.GenerationRun) error {
	return r.db.Create(run).Error
}

func (r *generationRepository) Latest() (*domain.GenerationRun, error) {
	var run domain.GenerationRun
	err := r.db.Order("generation_version DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *generationRepository) List(limit int) ([]*domain.GenerationRun, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var runs []*domain.GenerationRun
	err := r.db.Order("generation_version DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
