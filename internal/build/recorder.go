package build

import (
	"sort"

	"github.com/google/uuid"

	"github.com/waymarker/waymarker-backend/internal/bracket"
	"github.com/waymarker/waymarker-backend/internal/domain"
	"github.com/waymarker/waymarker-backend/internal/repository"
)

// Recorder turns the bracket codes found in an item's text into dependency
// edges and persists them, superseding whatever an earlier run recorded for
// the same source.
type Recorder struct {
	edges repository.EdgeRepository
}

func NewRecorder(edges repository.EdgeRepository) *Recorder {
	return &Recorder{edges: edges}
}

// RecordEdges writes the full outgoing edge set for sourceID under the given
// generation. The set always contains the identity pair (source, source),
// marking the item as scanned, plus one edge per distinct referenced item.
// Duplicate references collapse to a single edge.
func (r *Recorder) RecordEdges(generationVersion domain.Version, sourceID uuid.UUID, sourceText string) ([]domain.RelatedContentEdge, error) {
	targets := map[uuid.UUID]struct{}{sourceID: {}}
	for _, ref := range bracket.FindAllContentRefs(sourceText) {
		targets[ref.ContentID] = struct{}{}
	}

	edges := make([]domain.RelatedContentEdge, 0, len(targets))
	for target := range targets {
		edges = append(edges, domain.RelatedContentEdge{
			ContentOne:        sourceID,
			ContentTwo:        target,
			GenerationVersion: generationVersion,
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].ContentTwo.String() < edges[j].ContentTwo.String()
	})

	if err := r.edges.ReplaceForSource(sourceID, edges); err != nil {
		return nil, err
	}
	recordedEdgesTotal.Add(float64(len(edges)))
	return edges, nil
}
