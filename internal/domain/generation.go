package domain

import (
	"time"

	"github.com/google/uuid"
)

// BuildScope selects which content a build run considers.
type BuildScope string

const (
	// ScopeFull rebuilds every live content item and reconciles orphaned
	// artifacts afterwards.
	ScopeFull BuildScope = "full"
	// ScopeChangedOnly rebuilds content saved since the last completed run
	// plus one level of referenced content. No reconciliation.
	ScopeChangedOnly BuildScope = "changed"
)

// Valid reports whether s is a known build scope.
func (s BuildScope) Valid() bool {
	return s == ScopeFull || s == ScopeChangedOnly
}

// GenerationRun records one completed build pass. Exactly one row is appended
// per completed run, full or incremental, even when nothing was rendered.
// Rows are never updated after creation.
type GenerationRun struct {
	GenerationVersion Version    `gorm:"column:generation_version;type:char(28);primaryKey" json:"generation_version"`
	Scope             BuildScope `gorm:"column:scope;type:varchar(10)" json:"scope"`
	StartedOn         time.Time  `gorm:"column:started_on" json:"started_on"`
	CompletedOn       time.Time  `gorm:"column:completed_on" json:"completed_on"`
	RenderedCount     int        `gorm:"column:rendered_count" json:"rendered_count"`
	FailureCount      int        `gorm:"column:failure_count" json:"failure_count"`
}

func (GenerationRun) TableName() string { return "generation_runs" }

// RelatedContentEdge is a directed reference discovered during a generation
// run: a scan of ContentOne's text found a bracket code pointing at
// ContentTwo. The identity pair (source, source) marks that the source was
// scanned in the run, so "scanned with zero refs" is distinguishable from
// "never scanned". Edges are scoped to the run that discovered them; a later
// scan of the same source supersedes its whole outgoing set.
type RelatedContentEdge struct {
	ContentOne        uuid.UUID `gorm:"column:content_one;type:char(36);primaryKey" json:"content_one"`
	ContentTwo        uuid.UUID `gorm:"column:content_two;type:char(36);primaryKey;index" json:"content_two"`
	GenerationVersion Version   `gorm:"column:generation_version;type:char(28);primaryKey;index" json:"generation_version"`
}

func (RelatedContentEdge) TableName() string { return "related_content_edges" }
