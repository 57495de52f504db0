package service

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/waymarker/waymarker-backend/internal/common"
	"github.com/waymarker/waymarker-backend/internal/domain"
	"github.com/waymarker/waymarker-backend/internal/events"
	"github.com/waymarker/waymarker-backend/internal/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// SaveContentRequest creates a brand-new content item.
type SaveContentRequest struct {
	Kind            domain.ContentKind `json:"kind"`
	Slug            string             `json:"slug"`
	Folder          string             `json:"folder"`
	Title           string             `json:"title"`
	Summary         string             `json:"summary"`
	Tags            []string           `json:"tags"`
	BodyText        string             `json:"body_text"`
	UpdateNotesText string             `json:"update_notes_text"`
	CreatedBy       string             `json:"created_by"`
}

// UpdateContentRequest updates an existing content item. PriorContentVersion
// is the optimistic version token: it must equal the live row's version.
// UpdatedBy/UpdatedOn are required; the engine never invents an updater
// identity for an explicit update.
type UpdateContentRequest struct {
	PriorContentVersion domain.Version `json:"prior_content_version"`
	Slug                string         `json:"slug"`
	Folder              string         `json:"folder"`
	Title               string         `json:"title"`
	Summary             string         `json:"summary"`
	Tags                []string       `json:"tags"`
	BodyText            string         `json:"body_text"`
	UpdateNotesText     string         `json:"update_notes_text"`
	UpdatedBy           string         `json:"updated_by"`
	UpdatedOn           *time.Time     `json:"updated_on"`
}

// ContentService business logic for content identity, versioning and
// snapshot-protected saves
type ContentService interface {
	Save(req *SaveContentRequest) (*domain.ContentItem, error)
	SaveUpdate(id uuid.UUID, req *UpdateContentRequest) (*domain.ContentItem, error)
	Delete(id uuid.UUID) error
	Get(id uuid.UUID) (*domain.ContentItem, error)
	List() ([]*domain.ContentItem, error)
	ListDeleted() ([]*domain.ContentItem, error)
	History(id uuid.UUID) ([]*domain.HistoricSnapshot, error)
}

type contentService struct {
	content   repository.ContentRepository
	snapshots repository.SnapshotRepository
	edges     repository.EdgeRepository
	stamper   *domain.VersionStamper
	bus       *events.Bus
}

// NewContentService creates a new ContentService
func NewContentService(
	content repository.ContentRepository,
	snapshots repository.SnapshotRepository,
	edges repository.EdgeRepository,
	stamper *domain.VersionStamper,
	bus *events.Bus,
) ContentService {
	return &contentService{
		content:   content,
		snapshots: snapshots,
		edges:     edges,
		stamper:   stamper,
		bus:       bus,
	}
}

// Save assigns a fresh content id and the next version stamp, then inserts
// the live row. No snapshot is taken for a brand-new id.
func (s *contentService) Save(req *SaveContentRequest) (*domain.ContentItem, error) {
	if err := validateCommonFields(req.Kind, req.Slug, req.Folder, req.Title); err != nil {
		return nil, err
	}
	if req.CreatedBy == "" {
		return nil, common.NewValidationError("created_by", "required")
	}

	version := s.stamper.Next()
	item := &domain.ContentItem{
		ContentID:       uuid.New(),
		ContentVersion:  version,
		Kind:            req.Kind,
		Slug:            req.Slug,
		Folder:          req.Folder,
		Title:           req.Title,
		Summary:         req.Summary,
		Tags:            domain.NormalizeTags(req.Tags),
		BodyText:        req.BodyText,
		UpdateNotesText: req.UpdateNotesText,
		CreatedBy:       req.CreatedBy,
		CreatedOn:       version.Time,
	}

	if err := s.content.Create(item); err != nil {
		return nil, err
	}

	s.publish(events.TopicContentCreated, item)
	return item, nil
}

// SaveUpdate archives the pre-update state and replaces the live row as one
// atomic unit. A stale prior version is rejected before any snapshot or edge
// work begins.
func (s *contentService) SaveUpdate(id uuid.UUID, req *UpdateContentRequest) (*domain.ContentItem, error) {
	if err := validateSlugFolderTitle(req.Slug, req.Folder, req.Title); err != nil {
		return nil, err
	}
	if req.UpdatedBy == "" {
		return nil, common.NewValidationError("updated_by", "required for update")
	}
	if req.UpdatedOn == nil {
		return nil, common.NewValidationError("updated_on", "required for update")
	}

	prior, err := s.content.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !req.PriorContentVersion.Equal(prior.ContentVersion.Time) {
		return nil, common.ErrStaleVersion
	}

	version := s.stamper.Next()
	if !version.After(prior.ContentVersion.Time) {
		return nil, common.NewConsistencyError(
			"new version %s does not advance past %s for %s",
			version, prior.ContentVersion, id)
	}

	updatedBy := req.UpdatedBy
	updatedOn := req.UpdatedOn.UTC()
	updated := &domain.ContentItem{
		ContentID:       prior.ContentID,
		ContentVersion:  version,
		Kind:            prior.Kind,
		Slug:            req.Slug,
		Folder:          req.Folder,
		Title:           req.Title,
		Summary:         req.Summary,
		Tags:            domain.NormalizeTags(req.Tags),
		BodyText:        req.BodyText,
		UpdateNotesText: req.UpdateNotesText,
		CreatedBy:       prior.CreatedBy,
		CreatedOn:       prior.CreatedOn,
		LastUpdatedBy:   &updatedBy,
		LastUpdatedOn:   &updatedOn,
	}

	if err := s.content.UpdateWithArchive(prior, updated); err != nil {
		return nil, err
	}

	s.publish(events.TopicContentUpdated, updated)
	return updated, nil
}

// Delete archives the final live state then removes the live row. Recorded
// edges out of the item are dropped; its rendered artifact is removed by the
// next full build's reconciliation pass.
func (s *contentService) Delete(id uuid.UUID) error {
	item, err := s.content.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.content.DeleteWithArchive(item); err != nil {
		return err
	}
	if err := s.edges.DeleteForSource(id); err != nil {
		return err
	}
	s.publish(events.TopicContentDeleted, item)
	return nil
}

func (s *contentService) Get(id uuid.UUID) (*domain.ContentItem, error) {
	return s.content.FindByID(id)
}

func (s *contentService) List() ([]*domain.ContentItem, error) {
	return s.content.ListAll()
}

// ListDeleted reconstructs each deleted item from its most recent historic
// snapshot, the best available record of "what it was".
func (s *contentService) ListDeleted() ([]*domain.ContentItem, error) {
	snaps, err := s.snapshots.ListDeleted()
	if err != nil {
		return nil, err
	}
	items := make([]*domain.ContentItem, len(snaps))
	for i, snap := range snaps {
		items[i] = snap.ToContentItem()
	}
	return items, nil
}

func (s *contentService) History(id uuid.UUID) ([]*domain.HistoricSnapshot, error) {
	return s.snapshots.ListByContentID(id)
}

func (s *contentService) publish(topic string, item *domain.ContentItem) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(topic, map[string]interface{}{
		"content_id":      item.ContentID.String(),
		"content_version": item.ContentVersion.String(),
		"kind":            string(item.Kind),
		"slug":            item.Slug,
	})
}

func validateCommonFields(kind domain.ContentKind, slug, folder, title string) error {
	if !kind.Valid() {
		return common.NewValidationError("kind", common.ErrInvalidKind.Error())
	}
	return validateSlugFolderTitle(slug, folder, title)
}

func validateSlugFolderTitle(slug, folder, title string) error {
	if title == "" {
		return common.NewValidationError("title", "required")
	}
	if slug == "" || !slugPattern.MatchString(slug) {
		return common.NewValidationError("slug", "must be lower-case words separated by single hyphens")
	}
	if folder == "" || !slugPattern.MatchString(folder) {
		return common.NewValidationError("folder", "must be lower-case words separated by single hyphens")
	}
	return nil
}
