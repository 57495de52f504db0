package build

import (
	"time"

	"github.com/google/uuid"

	"github.com/waymarker/waymarker-backend/internal/domain"
)

// Failure is one item or page that could not be produced during a run. The
// run itself carries on past it.
type Failure struct {
	ContentID *uuid.UUID `json:"content_id,omitempty"`
	Path      string     `json:"path,omitempty"`
	Stage     State      `json:"stage"`
	Reason    string     `json:"reason"`
}

// BuildReport summarizes a single build run.
type BuildReport struct {
	GenerationVersion domain.Version    `json:"generation_version"`
	Scope             domain.BuildScope `json:"scope"`
	StartedOn         time.Time         `json:"started_on"`
	CompletedOn       time.Time         `json:"completed_on"`
	RenderedIDs       []uuid.UUID       `json:"rendered_ids"`
	RenderedPaths     []string          `json:"rendered_paths"`
	RemovedPaths      []string          `json:"removed_paths,omitempty"`
	Warnings          []string          `json:"warnings,omitempty"`
	Failures          []Failure         `json:"failures,omitempty"`
}
