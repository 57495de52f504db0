package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/waymarker/waymarker-backend/internal/domain"
)

// SnapshotRepository historic snapshot data access. Snapshots are append-only;
// there is deliberately no update or delete here.
type SnapshotRepository interface {
	Archive(snap *domain.HistoricSnapshot) error
	ListByContentID(id uuid.UUID) ([]*domain.HistoricSnapshot, error)
	LatestByContentID(id uuid.UUID) (*domain.HistoricSnapshot, error)
	// ListDeleted returns, for every content id that has snapshots but no
	// live row, the most recent snapshot by content version.
	ListDeleted() ([]*domain.HistoricSnapshot, error)
	MaxContentVersion() (domain.Version, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new SnapshotRepository
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Archive(snap *domain.HistoricSnapshot) error {
	return archiveSnapshot(r.db, snap)
}

func (r *snapshotRepository) ListByContentID(id uuid.UUID) ([]*domain.HistoricSnapshot, error) {
	var snaps []*domain.HistoricSnapshot
	err := r.db.Where("content_id = ?", id).
		Order("content_version DESC").
		Find(&snaps).Error
	return snaps, err
}

func (r *snapshotRepository) LatestByContentID(id uuid.UUID) (*domain.HistoricSnapshot, error) {
	var snap domain.HistoricSnapshot
	err := r.db.Where("content_id = ?", id).
		Order("content_version DESC").
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *snapshotRepository) MaxContentVersion() (domain.Version, error) {
	var raw *string
	err := r.db.Model(&domain.HistoricSnapshot{}).
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

func (r *snapshotRepository) ListDeleted() ([]*domain.HistoricSnapshot, error) {
	live := r.db.Model(&domain.ContentItem{}).Select("content_id")

	var snaps []*domain.HistoricSnapshot
	err := r.db.Where("content_id NOT IN (?)", live).
		Order("content_version DESC").
		Find(&snaps).Error
	if err != nil {
		return nil, err
	}

	// Keep the most recent snapshot per content id; rows arrive newest-first.
	seen := make(map[uuid.UUID]bool, len(snaps))
	var latest []*domain.HistoricSnapshot
	for _, s := range snaps {
		if seen[s.ContentID] {
			continue
		}
		seen[s.ContentID] = true
		latest = append(latest, s)
	}
	return latest, nil
}
