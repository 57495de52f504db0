package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentKind is the closed set of publishable content kinds. Kind-specific
// behavior switches exhaustively on this type; there is no runtime type
// dispatch.
type ContentKind string

const (
	KindPost    ContentKind = "post"
	KindPhoto   ContentKind = "photo"
	KindImage   ContentKind = "image"
	KindFile    ContentKind = "file"
	KindNote    ContentKind = "note"
	KindPoint   ContentKind = "point"
	KindLine    ContentKind = "line"
	KindGeoJSON ContentKind = "geojson"
	KindMap     ContentKind = "map"
	KindVideo   ContentKind = "video"
)

// AllKinds returns every valid content kind.
func AllKinds() []ContentKind {
	return []ContentKind{
		KindPost, KindPhoto, KindImage, KindFile, KindNote,
		KindPoint, KindLine, KindGeoJSON, KindMap, KindVideo,
	}
}

// Valid reports whether k is a known content kind.
func (k ContentKind) Valid() bool {
	switch k {
	case KindPost, KindPhoto, KindImage, KindFile, KindNote,
		KindPoint, KindLine, KindGeoJSON, KindMap, KindVideo:
		return true
	default:
		return false
	}
}

// ContentItem is the live record for one unit of publishable content.
// ContentID is assigned once at creation and never changes; ContentVersion
// strictly increases on every successful save.
type ContentItem struct {
	ContentID       uuid.UUID   `gorm:"column:content_id;type:char(36);primaryKey" json:"content_id"`
	ContentVersion  Version     `gorm:"column:content_version;type:char(28);index" json:"content_version"`
	Kind            ContentKind `gorm:"column:kind;type:varchar(20);index" json:"kind"`
	Slug            string      `gorm:"column:slug;type:varchar(255);index" json:"slug"`
	Folder          string      `gorm:"column:folder;type:varchar(255);index" json:"folder"`
	Title           string      `gorm:"column:title;type:varchar(255)" json:"title"`
	Summary         string      `gorm:"column:summary;type:text" json:"summary"`
	Tags            string      `gorm:"column:tags;type:text" json:"tags"`
	BodyText        string      `gorm:"column:body_text;type:text" json:"body_text"`
	UpdateNotesText string      `gorm:"column:update_notes_text;type:text" json:"update_notes_text"`
	CreatedBy       string      `gorm:"column:created_by;type:varchar(100)" json:"created_by"`
	CreatedOn       time.Time   `gorm:"column:created_on" json:"created_on"`
	LastUpdatedBy   *string     `gorm:"column:last_updated_by;type:varchar(100)" json:"last_updated_by,omitempty"`
	LastUpdatedOn   *time.Time  `gorm:"column:last_updated_on" json:"last_updated_on,omitempty"`
}

func (ContentItem) TableName() string { return "content_items" }

// TagList returns the normalized tags as a slice.
func (c *ContentItem) TagList() []string {
	if c.Tags == "" {
		return nil
	}
	return strings.Split(c.Tags, ",")
}

// ReferenceText returns the concatenated reference-bearing text fields for
// this item's kind, the text scanned for bracket codes.
func (c *ContentItem) ReferenceText() string {
	switch c.Kind {
	case KindPost, KindPhoto, KindImage, KindFile, KindNote,
		KindPoint, KindLine, KindGeoJSON, KindVideo:
		if c.UpdateNotesText == "" {
			return c.BodyText
		}
		return c.BodyText + "\n" + c.UpdateNotesText
	case KindMap:
		// Map bodies are component definitions; only update notes carry prose.
		return c.BodyText + "\n" + c.UpdateNotesText
	default:
		return c.BodyText
	}
}

// VersionString returns the content version in the fixed artifact format.
func (c *ContentItem) VersionString() string {
	return c.ContentVersion.String()
}

// NormalizeTag lower-cases and whitespace-trims a single tag.
func NormalizeTag(tag string) string {
	return strings.Join(strings.Fields(strings.ToLower(tag)), " ")
}

// NormalizeTags lower-cases, trims, de-duplicates and orders a tag list,
// returning the canonical CSV form stored on ContentItem.
func NormalizeTags(tags []string) string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// SplitTags parses a raw comma-separated tag string into a normalized list.
func SplitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(NormalizeTags(strings.Split(raw, ",")), ",")
}
