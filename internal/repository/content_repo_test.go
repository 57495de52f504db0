package repository

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waymarker/waymarker-backend/internal/common"
	"github.com/waymarker/waymarker-backend/internal/database"
	"github.com/waymarker/waymarker-backend/internal/domain"
)

func newTestRepos(t *testing.T) (ContentRepository, SnapshotRepository) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	return NewContentRepository(db), NewSnapshotRepository(db)
}

func newArchiveItem(stamper *domain.VersionStamper, slug string) *domain.ContentItem {
	v := stamper.Next()
	return &domain.ContentItem{
		ContentID:       uuid.New(),
		ContentVersion:  v,
		Kind:            domain.KindPost,
		Slug:            slug,
		Folder:          "posts",
		Title:           "Title " + slug,
		Summary:         "summary of " + slug,
		Tags:            "alps,hiking",
		BodyText:        "body of " + slug,
		UpdateNotesText: "first draft",
		CreatedBy:       "admin",
		CreatedOn:       v.Time,
	}
}

func updatedCopy(prior *domain.ContentItem, stamper *domain.VersionStamper) *domain.ContentItem {
	updatedBy := "editor"
	v := stamper.Next()
	updatedOn := v.Time
	updated := *prior
	updated.ContentVersion = v
	updated.Title = prior.Title + " revised"
	updated.BodyText = prior.BodyText + " revised"
	updated.Tags = "dolomites"
	updated.LastUpdatedBy = &updatedBy
	updated.LastUpdatedOn = &updatedOn
	return &updated
}

func TestUpdateWithArchive_SnapshotReproducesPriorState(t *testing.T) {
	content, snapshots := newTestRepos(t)
	stamper := domain.NewVersionStamper()

	prior := newArchiveItem(stamper, "old-bridge")
	require.NoError(t, content.Create(prior))
	updated := updatedCopy(prior, stamper)
	require.NoError(t, content.UpdateWithArchive(prior, updated))

	snap, err := snapshots.LatestByContentID(prior.ContentID)
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, prior.ContentID, snap.ContentID)
	assert.Equal(t, prior.ContentVersion.String(), snap.ContentVersion.String())
	assert.Equal(t, prior.Kind, snap.Kind)
	assert.Equal(t, prior.Slug, snap.Slug)
	assert.Equal(t, prior.Folder, snap.Folder)
	assert.Equal(t, prior.Title, snap.Title)
	assert.Equal(t, prior.Summary, snap.Summary)
	assert.Equal(t, prior.Tags, snap.Tags)
	assert.Equal(t, prior.BodyText, snap.BodyText)
	assert.Equal(t, prior.UpdateNotesText, snap.UpdateNotesText)
	assert.Equal(t, prior.CreatedBy, snap.CreatedBy)
	assert.True(t, snap.CreatedOn.Equal(prior.CreatedOn))
	assert.Nil(t, snap.LastUpdatedBy)
	assert.Nil(t, snap.LastUpdatedOn)

	live, err := content.FindByID(prior.ContentID)
	require.NoError(t, err)
	assert.Equal(t, updated.ContentVersion.String(), live.ContentVersion.String())
	assert.Equal(t, updated.Title, live.Title)
	assert.Equal(t, updated.BodyText, live.BodyText)
}

func TestUpdateWithArchive_StaleWriteRollsBackSnapshot(t *testing.T) {
	content, snapshots := newTestRepos(t)
	stamper := domain.NewVersionStamper()

	staleVersion := stamper.Next()
	item := newArchiveItem(stamper, "old-bridge")
	require.NoError(t, content.Create(item))

	// A prior read that never matched the live row.
	stale := *item
	stale.ContentVersion = staleVersion

	err := content.UpdateWithArchive(&stale, updatedCopy(&stale, stamper))
	assert.ErrorIs(t, err, common.ErrStaleVersion)

	snaps, err := snapshots.ListByContentID(item.ContentID)
	require.NoError(t, err)
	assert.Empty(t, snaps)

	live, err := content.FindByID(item.ContentID)
	require.NoError(t, err)
	assert.Equal(t, item.ContentVersion.String(), live.ContentVersion.String())
}

func TestDeleteWithArchive_AddsOneSnapshotAndRemovesLiveRow(t *testing.T) {
	content, snapshots := newTestRepos(t)
	stamper := domain.NewVersionStamper()

	item := newArchiveItem(stamper, "old-bridge")
	require.NoError(t, content.Create(item))
	updated := updatedCopy(item, stamper)
	require.NoError(t, content.UpdateWithArchive(item, updated))

	before, err := snapshots.ListByContentID(item.ContentID)
	require.NoError(t, err)

	require.NoError(t, content.DeleteWithArchive(updated))

	after, err := snapshots.ListByContentID(item.ContentID)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)

	_, err = content.FindByID(item.ContentID)
	assert.ErrorIs(t, err, common.ErrContentNotFound)

	deleted, err := snapshots.ListDeleted()
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, updated.ContentVersion.String(), deleted[0].ContentVersion.String())
	assert.Equal(t, updated.BodyText, deleted[0].BodyText)
}

func TestListDeleted_SkipsLiveAndKeepsNewestSnapshotPerID(t *testing.T) {
	content, snapshots := newTestRepos(t)
	stamper := domain.NewVersionStamper()

	// A live item with history must not show up as deleted.
	kept := newArchiveItem(stamper, "kept")
	require.NoError(t, content.Create(kept))
	require.NoError(t, content.UpdateWithArchive(kept, updatedCopy(kept, stamper)))

	// A deleted item with two snapshots shows up once, at its final state.
	gone := newArchiveItem(stamper, "gone")
	require.NoError(t, content.Create(gone))
	goneUpdated := updatedCopy(gone, stamper)
	require.NoError(t, content.UpdateWithArchive(gone, goneUpdated))
	require.NoError(t, content.DeleteWithArchive(goneUpdated))

	history, err := snapshots.ListByContentID(gone.ContentID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	deleted, err := snapshots.ListDeleted()
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, gone.ContentID, deleted[0].ContentID)
	assert.Equal(t, goneUpdated.ContentVersion.String(), deleted[0].ContentVersion.String())
	assert.Equal(t, goneUpdated.Title, deleted[0].Title)
}
