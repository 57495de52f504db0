package domain

import "time"

// TagExclusion is a tag that renders as plain text instead of a link,
// everywhere in the site. The set is append-only; adding a duplicate is a
// validation failure, not a silent no-op.
type TagExclusion struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Tag       string    `gorm:"column:tag;type:varchar(255);uniqueIndex" json:"tag"`
	CreatedOn time.Time `gorm:"column:created_on;autoCreateTime" json:"created_on"`
}

func (TagExclusion) TableName() string { return "tag_exclusions" }
