package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waymarker/waymarker-backend/internal/common"
	"github.com/waymarker/waymarker-backend/internal/domain"
)

type mockContentRepo struct {
	items    map[uuid.UUID]*domain.ContentItem
	archived []*domain.HistoricSnapshot
}

func newMockContentRepo() *mockContentRepo {
	return &mockContentRepo{items: map[uuid.UUID]*domain.ContentItem{}}
}

func (m *mockContentRepo) Create(item *domain.ContentItem) error {
	m.items[item.ContentID] = item
	return nil
}

func (m *mockContentRepo) FindByID(id uuid.UUID) (*domain.ContentItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, common.ErrContentNotFound
	}
	copied := *item
	return &copied, nil
}

func (m *mockContentRepo) ListAll() ([]*domain.ContentItem, error) {
	var out []*domain.ContentItem
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

func (m *mockContentRepo) ListByIDs(ids []uuid.UUID) ([]*domain.ContentItem, error) {
	var out []*domain.ContentItem
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockContentRepo) ListChangedSince(v domain.Version) ([]*domain.ContentItem, error) {
	var out []*domain.ContentItem
	for _, item := range m.items {
		if item.ContentVersion.After(v.Time) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockContentRepo) Count() (int64, error) {
	return int64(len(m.items)), nil
}

func (m *mockContentRepo) MaxContentVersion() (domain.Version, error) {
	var max domain.Version
	for _, item := range m.items {
		if item.ContentVersion.After(max.Time) {
			max = item.ContentVersion
		}
	}
	return max, nil
}

func (m *mockContentRepo) UpdateWithArchive(prior, updated *domain.ContentItem) error {
	live, ok := m.items[updated.ContentID]
	if !ok || !live.ContentVersion.Equal(prior.ContentVersion.Time) {
		return common.ErrStaleVersion
	}
	m.archived = append(m.archived, domain.NewHistoricSnapshot(prior))
	m.items[updated.ContentID] = updated
	return nil
}

func (m *mockContentRepo) DeleteWithArchive(item *domain.ContentItem) error {
	m.archived = append(m.archived, domain.NewHistoricSnapshot(item))
	delete(m.items, item.ContentID)
	return nil
}

type mockSnapshotRepo struct {
	snaps []*domain.HistoricSnapshot
}

func (m *mockSnapshotRepo) Archive(snap *domain.HistoricSnapshot) error {
	m.snaps = append(m.snaps, snap)
	return nil
}

func (m *mockSnapshotRepo) ListByContentID(id uuid.UUID) ([]*domain.HistoricSnapshot, error) {
	var out []*domain.HistoricSnapshot
	for _, s := range m.snaps {
		if s.ContentID == id {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSnapshotRepo) LatestByContentID(id uuid.UUID) (*domain.HistoricSnapshot, error) {
	var latest *domain.HistoricSnapshot
	for _, s := range m.snaps {
		if s.ContentID == id && (latest == nil || s.ContentVersion.After(latest.ContentVersion.Time)) {
			latest = s
		}
	}
	return latest, nil
}

func (m *mockSnapshotRepo) ListDeleted() ([]*domain.HistoricSnapshot, error) {
	return m.snaps, nil
}

func (m *mockSnapshotRepo) MaxContentVersion() (domain.Version, error) {
	var max domain.Version
	for _, s := range m.snaps {
		if s.ContentVersion.After(max.Time) {
			max = s.ContentVersion
		}
	}
	return max, nil
}

type mockEdgeRepo struct {
	deletedSources []uuid.UUID
}

func (m *mockEdgeRepo) ReplaceForSource(source uuid.UUID, edges []domain.RelatedContentEdge) error {
	return nil
}

func (m *mockEdgeRepo) EdgesFrom(source uuid.UUID, v domain.Version) ([]domain.RelatedContentEdge, error) {
	return nil, nil
}

func (m *mockEdgeRepo) EdgesInto(target uuid.UUID, v domain.Version) ([]domain.RelatedContentEdge, error) {
	return nil, nil
}

func (m *mockEdgeRepo) DeleteForSource(source uuid.UUID) error {
	m.deletedSources = append(m.deletedSources, source)
	return nil
}

func newService(content *mockContentRepo, edges *mockEdgeRepo) ContentService {
	return NewContentService(content, &mockSnapshotRepo{}, edges, domain.NewVersionStamper(), nil)
}

func validSaveRequest() *SaveContentRequest {
	return &SaveContentRequest{
		Kind:      domain.KindPost,
		Slug:      "a-walk-in-the-alps",
		Folder:    "hiking",
		Title:     "A Walk in the Alps",
		Tags:      []string{"Alps", "hiking"},
		BodyText:  "some text",
		CreatedBy: "admin",
	}
}

func TestSave_AssignsIdentityAndVersion(t *testing.T) {
	repo := newMockContentRepo()
	svc := newService(repo, &mockEdgeRepo{})

	item, err := svc.Save(validSaveRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, item.ContentID)
	assert.False(t, item.ContentVersion.IsZero())
	assert.Equal(t, item.ContentVersion.Time, item.CreatedOn)
	assert.Equal(t, "alps,hiking", item.Tags)
	assert.Nil(t, item.LastUpdatedBy)
}

func TestSave_RejectsUnknownKind(t *testing.T) {
	svc := newService(newMockContentRepo(), &mockEdgeRepo{})

	req := validSaveRequest()
	req.Kind = "widget"
	_, err := svc.Save(req)

	assert.True(t, common.IsValidation(err))
}

func TestSave_RejectsBadSlug(t *testing.T) {
	svc := newService(newMockContentRepo(), &mockEdgeRepo{})

	for _, slug := range []string{"", "Has Spaces", "UPPER", "trailing-", "-leading", "double--hyphen"} {
		req := validSaveRequest()
		req.Slug = slug
		_, err := svc.Save(req)
		assert.True(t, common.IsValidation(err), "slug %q accepted", slug)
	}
}

func TestSave_RequiresCreator(t *testing.T) {
	svc := newService(newMockContentRepo(), &mockEdgeRepo{})

	req := validSaveRequest()
	req.CreatedBy = ""
	_, err := svc.Save(req)

	assert.True(t, common.IsValidation(err))
}

func TestSaveUpdate_AdvancesVersionAndArchives(t *testing.T) {
	repo := newMockContentRepo()
	svc := newService(repo, &mockEdgeRepo{})

	item, err := svc.Save(validSaveRequest())
	require.NoError(t, err)

	now := time.Now().UTC()
	updated, err := svc.SaveUpdate(item.ContentID, &UpdateContentRequest{
		PriorContentVersion: item.ContentVersion,
		Slug:                item.Slug,
		Folder:              item.Folder,
		Title:               "Retitled",
		Tags:                []string{"alps"},
		BodyText:            "new text",
		UpdatedBy:           "editor",
		UpdatedOn:           &now,
	})
	require.NoError(t, err)

	assert.Equal(t, item.ContentID, updated.ContentID)
	assert.True(t, updated.ContentVersion.After(item.ContentVersion.Time))
	assert.Equal(t, item.CreatedBy, updated.CreatedBy)
	require.NotNil(t, updated.LastUpdatedBy)
	assert.Equal(t, "editor", *updated.LastUpdatedBy)

	require.Len(t, repo.archived, 1)
	assert.Equal(t, item.ContentVersion.String(), repo.archived[0].ContentVersion.String())
}

func TestSaveUpdate_StaleVersionRejected(t *testing.T) {
	repo := newMockContentRepo()
	svc := newService(repo, &mockEdgeRepo{})

	item, err := svc.Save(validSaveRequest())
	require.NoError(t, err)

	now := time.Now().UTC()
	stale := domain.NewVersion(item.ContentVersion.Add(-time.Second))
	_, err = svc.SaveUpdate(item.ContentID, &UpdateContentRequest{
		PriorContentVersion: stale,
		Slug:                item.Slug,
		Folder:              item.Folder,
		Title:               "Retitled",
		UpdatedBy:           "editor",
		UpdatedOn:           &now,
	})

	assert.ErrorIs(t, err, common.ErrStaleVersion)
	assert.Empty(t, repo.archived, "stale update must not archive")
}

func TestSaveUpdate_RequiresUpdaterIdentity(t *testing.T) {
	repo := newMockContentRepo()
	svc := newService(repo, &mockEdgeRepo{})

	item, err := svc.Save(validSaveRequest())
	require.NoError(t, err)

	now := time.Now().UTC()
	_, err = svc.SaveUpdate(item.ContentID, &UpdateContentRequest{
		PriorContentVersion: item.ContentVersion,
		Slug:                item.Slug,
		Folder:              item.Folder,
		Title:               "Retitled",
		UpdatedOn:           &now,
	})
	assert.True(t, common.IsValidation(err), "missing updated_by accepted")

	_, err = svc.SaveUpdate(item.ContentID, &UpdateContentRequest{
		PriorContentVersion: item.ContentVersion,
		Slug:                item.Slug,
		Folder:              item.Folder,
		Title:               "Retitled",
		UpdatedBy:           "editor",
	})
	assert.True(t, common.IsValidation(err), "missing updated_on accepted")
}

func TestSaveUpdate_UnknownID(t *testing.T) {
	svc := newService(newMockContentRepo(), &mockEdgeRepo{})

	now := time.Now().UTC()
	_, err := svc.SaveUpdate(uuid.New(), &UpdateContentRequest{
		PriorContentVersion: domain.NewVersion(now),
		Slug:                "s",
		Folder:              "f",
		Title:               "t",
		UpdatedBy:           "editor",
		UpdatedOn:           &now,
	})

	assert.ErrorIs(t, err, common.ErrContentNotFound)
}

func TestDelete_ArchivesAndDropsEdges(t *testing.T) {
	repo := newMockContentRepo()
	edges := &mockEdgeRepo{}
	svc := newService(repo, edges)

	item, err := svc.Save(validSaveRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(item.ContentID))

	_, err = svc.Get(item.ContentID)
	assert.ErrorIs(t, err, common.ErrContentNotFound)
	require.Len(t, repo.archived, 1)
	assert.Equal(t, []uuid.UUID{item.ContentID}, edges.deletedSources)
}

func TestDelete_UnknownID(t *testing.T) {
	svc := newService(newMockContentRepo(), &mockEdgeRepo{})
	assert.ErrorIs(t, svc.Delete(uuid.New()), common.ErrContentNotFound)
}
