package domain

import (
	"time"

	"github.com/google/uuid"
)

// HistoricSnapshot is an immutable copy of a ContentItem's full state as it
// existed immediately before an update or delete overwrote it. Keyed by
// (content_id, content_version); never mutated or deleted. The live row holds
// no reference back to its snapshots.
type HistoricSnapshot struct {
	ContentID       uuid.UUID   `gorm:"column:content_id;type:char(36);primaryKey" json:"content_id"`
	ContentVersion  Version     `gorm:"column:content_version;type:char(28);primaryKey" json:"content_version"`
	Kind            ContentKind `gorm:"column:kind;type:varchar(20)" json:"kind"`
	Slug            string      `gorm:"column:slug;type:varchar(255)" json:"slug"`
	Folder          string      `gorm:"column:folder;type:varchar(255)" json:"folder"`
	Title           string      `gorm:"column:title;type:varchar(255)" json:"title"`
	Summary         string      `gorm:"column:summary;type:text" json:"summary"`
	Tags            string      `gorm:"column:tags;type:text" json:"tags"`
	BodyText        string      `gorm:"column:body_text;type:text" json:"body_text"`
	UpdateNotesText string      `gorm:"column:update_notes_text;type:text" json:"update_notes_text"`
	CreatedBy       string      `gorm:"column:created_by;type:varchar(100)" json:"created_by"`
	CreatedOn       time.Time   `gorm:"column:created_on" json:"created_on"`
	LastUpdatedBy   *string     `gorm:"column:last_updated_by;type:varchar(100)" json:"last_updated_by,omitempty"`
	LastUpdatedOn   *time.Time  `gorm:"column:last_updated_on" json:"last_updated_on,omitempty"`
	ArchivedOn      time.Time   `gorm:"column:archived_on;autoCreateTime" json:"archived_on"`
}

func (HistoricSnapshot) TableName() string { return "historic_snapshots" }

// NewHistoricSnapshot copies a live item into its archival form.
func NewHistoricSnapshot(item *ContentItem) *HistoricSnapshot {
	return &HistoricSnapshot{
		ContentID:       item.ContentID,
		ContentVersion:  item.ContentVersion,
		Kind:            item.Kind,
		Slug:            item.Slug,
		Folder:          item.Folder,
		Title:           item.Title,
		Summary:         item.Summary,
		Tags:            item.Tags,
		BodyText:        item.BodyText,
		UpdateNotesText: item.UpdateNotesText,
		CreatedBy:       item.CreatedBy,
		CreatedOn:       item.CreatedOn,
		LastUpdatedBy:   item.LastUpdatedBy,
		LastUpdatedOn:   item.LastUpdatedOn,
	}
}

// ToContentItem reconstructs the content item state held by this snapshot.
func (s *HistoricSnapshot) ToContentItem() *ContentItem {
	return &ContentItem{
		ContentID:       s.ContentID,
		ContentVersion:  s.ContentVersion,
		Kind:            s.Kind,
		Slug:            s.Slug,
		Folder:          s.Folder,
		Title:           s.Title,
		Summary:         s.Summary,
		Tags:            s.Tags,
		BodyText:        s.BodyText,
		UpdateNotesText: s.UpdateNotesText,
		CreatedBy:       s.CreatedBy,
		CreatedOn:       s.CreatedOn,
		LastUpdatedBy:   s.LastUpdatedBy,
		LastUpdatedOn:   s.LastUpdatedOn,
	}
}
