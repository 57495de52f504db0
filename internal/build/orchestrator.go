package build

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/waymarker/waymarker-backend/internal/common"
	"github.com/waymarker/waymarker-backend/internal/domain"
	"github.com/waymarker/waymarker-backend/internal/events"
	"github.com/waymarker/waymarker-backend/internal/render"
	"github.com/waymarker/waymarker-backend/internal/repository"
	"github.com/waymarker/waymarker-backend/pkg/storage"
)

// Orchestrator drives build runs: it selects the scope, scans bracket codes
// into dependency edges, cascades one level out to referencing aggregates,
// renders artifacts and, on full runs, reconciles orphans. At most one run
// executes at a time.
type Orchestrator struct {
	content     repository.ContentRepository
	snapshots   repository.SnapshotRepository
	generations repository.GenerationRepository
	exclusions  repository.TagExclusionRepository
	recorder    *Recorder
	renderer    render.Renderer
	store       render.Store
	remote      *storage.S3Client
	stamper     *domain.VersionStamper
	bus         *events.Bus
	workers     int
	log         zerolog.Logger

	runMu   sync.Mutex
	stateMu sync.Mutex
	state   State
}

// Options carries the optional pieces of an orchestrator.
type Options struct {
	// Workers bounds scan and render parallelism. Zero means 4.
	Workers int
	// Remote mirrors written and deleted artifacts to object storage when
	// set.
	Remote *storage.S3Client
}

func NewOrchestrator(
	content repository.ContentRepository,
	snapshots repository.SnapshotRepository,
	generations repository.GenerationRepository,
	edges repository.EdgeRepository,
	exclusions repository.TagExclusionRepository,
	renderer render.Renderer,
	store render.Store,
	stamper *domain.VersionStamper,
	bus *events.Bus,
	log zerolog.Logger,
	opts Options,
) *Orchestrator {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Orchestrator{
		content:     content,
		snapshots:   snapshots,
		generations: generations,
		exclusions:  exclusions,
		recorder:    NewRecorder(edges),
		renderer:    renderer,
		store:       store,
		remote:      opts.Remote,
		stamper:     stamper,
		bus:         bus,
		workers:     workers,
		log:         log.With().Str("component", "build").Logger(),
		state:       StateIdle,
	}
}

// Run executes one build pass and returns its report. A second caller while
// a run is active gets common.ErrBuildInProgress immediately rather than
// queueing. Per-item render failures are collected in the report and do not
// abort the run; scan and bookkeeping errors do.
func (o *Orchestrator) Run(ctx context.Context, scope domain.BuildScope) (*BuildReport, error) {
	if !scope.Valid() {
		return nil, common.NewValidationError("scope", fmt.Sprintf("unknown build scope %q", scope))
	}
	if !o.runMu.TryLock() {
		return nil, common.ErrBuildInProgress
	}
	defer o.runMu.Unlock()
	o.resetAfterFailure()

	started := time.Now().UTC()
	report := &BuildReport{
		GenerationVersion: o.stamper.Next(),
		Scope:             scope,
		StartedOn:         started,
		RenderedIDs:       []uuid.UUID{},
		RenderedPaths:     []string{},
	}
	log := o.log.With().
		Str("generation_version", report.GenerationVersion.String()).
		Str("scope", string(scope)).
		Logger()
	log.Info().Msg("build run started")

	if err := o.execute(ctx, scope, report, log); err != nil {
		o.failState()
		buildRunsTotal.WithLabelValues(string(scope), "failed").Inc()
		o.bus.Publish(events.TopicBuildFailed, map[string]interface{}{
			"generation_version": report.GenerationVersion.String(),
			"scope":              string(scope),
			"error":              err.Error(),
		})
		log.Error().Err(err).Msg("build run failed")
		return report, err
	}

	report.CompletedOn = time.Now().UTC()
	buildRunsTotal.WithLabelValues(string(scope), "completed").Inc()
	buildDuration.WithLabelValues(string(scope)).Observe(report.CompletedOn.Sub(started).Seconds())
	o.bus.Publish(events.TopicBuildCompleted, map[string]interface{}{
		"generation_version": report.GenerationVersion.String(),
		"scope":              string(scope),
		"rendered_count":     len(report.RenderedPaths),
		"failure_count":      len(report.Failures),
	})
	log.Info().
		Int("rendered", len(report.RenderedPaths)).
		Int("failures", len(report.Failures)).
		Int("removed", len(report.RemovedPaths)).
		Msg("build run completed")
	return report, nil
}

func (o *Orchestrator) execute(ctx context.Context, scope domain.BuildScope, report *BuildReport, log zerolog.Logger) error {
	if err := o.transition(StateScopeSelection); err != nil {
		return err
	}
	candidates, err := o.selectScope(scope)
	if err != nil {
		return fmt.Errorf("scope selection: %w", err)
	}
	log.Info().Int("candidates", len(candidates)).Msg("scope selected")

	if err := o.transition(StateScanning); err != nil {
		return err
	}
	scanned, err := o.scan(ctx, report.GenerationVersion, candidates)
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	if err := o.transition(StateCascading); err != nil {
		return err
	}
	renderSet, err := o.cascade(candidates, scanned, report)
	if err != nil {
		return fmt.Errorf("cascading: %w", err)
	}

	if err := o.transition(StateRendering); err != nil {
		return err
	}
	allLive, err := o.content.ListAll()
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	if err := o.renderAll(ctx, candidates, renderSet, allLive, report); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	if err := o.transition(StateReconciling); err != nil {
		return err
	}
	// Incremental runs never remove artifacts; a stale page is only ever
	// cleaned up by a full run that can see the complete live set.
	if scope == domain.ScopeFull {
		if err := o.reconcile(ctx, allLive, report); err != nil {
			return fmt.Errorf("reconciling: %w", err)
		}
	}

	run := &domain.GenerationRun{
		GenerationVersion: report.GenerationVersion,
		Scope:             scope,
		StartedOn:         report.StartedOn,
		CompletedOn:       time.Now().UTC(),
		RenderedCount:     len(report.RenderedPaths),
		FailureCount:      len(report.Failures),
	}
	if err := o.generations.Append(run); err != nil {
		return fmt.Errorf("recording generation run: %w", err)
	}
	return o.transition(StateIdle)
}

// selectScope picks the content items a run starts from. A changed-only run
// with no prior completed run behaves like a full one: everything is new.
func (o *Orchestrator) selectScope(scope domain.BuildScope) ([]*domain.ContentItem, error) {
	if scope == domain.ScopeFull {
		return o.content.ListAll()
	}
	last, err := o.generations.Latest()
	if err != nil {
		return nil, err
	}
	if last == nil {
		return o.content.ListAll()
	}
	return o.content.ListChangedSince(last.GenerationVersion)
}

// scan records dependency edges for every candidate in parallel. The whole
// phase completes before cascading reads its results.
func (o *Orchestrator) scan(ctx context.Context, generationVersion domain.Version, candidates []*domain.ContentItem) ([][]domain.RelatedContentEdge, error) {
	scanned := make([][]domain.RelatedContentEdge, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, item := range candidates {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			edges, err := o.recorder.RecordEdges(generationVersion, item.ContentID, item.ReferenceText())
			if err != nil {
				return fmt.Errorf("content %s: %w", item.ContentID, err)
			}
			scanned[i] = edges
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scanned, nil
}

// cascade widens the candidate set by exactly one level: every item a
// candidate references joins the render set, but the referenced items'
// own references do not. A reference to a missing item is a warning, not
// a run failure.
func (o *Orchestrator) cascade(candidates []*domain.ContentItem, scanned [][]domain.RelatedContentEdge, report *BuildReport) (map[uuid.UUID]*domain.ContentItem, error) {
	renderSet := make(map[uuid.UUID]*domain.ContentItem, len(candidates))
	for _, item := range candidates {
		renderSet[item.ContentID] = item
	}

	var extra []uuid.UUID
	seen := map[uuid.UUID]struct{}{}
	for i, edges := range scanned {
		source := candidates[i].ContentID
		for _, e := range edges {
			if e.ContentTwo == source {
				continue
			}
			if _, ok := renderSet[e.ContentTwo]; ok {
				continue
			}
			if _, ok := seen[e.ContentTwo]; ok {
				continue
			}
			seen[e.ContentTwo] = struct{}{}
			extra = append(extra, e.ContentTwo)
		}
	}
	if len(extra) == 0 {
		return renderSet, nil
	}

	items, err := o.content.ListByIDs(extra)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		renderSet[item.ContentID] = item
	}
	for _, id := range extra {
		if _, ok := renderSet[id]; !ok {
			refErr := &common.ReferenceError{
				SourceID: findSource(candidates, scanned, id).String(),
				TargetID: id.String(),
			}
			report.Warnings = append(report.Warnings, refErr.Error())
		}
	}
	return renderSet, nil
}

// findSource locates a candidate whose scan produced an edge into target,
// for warning attribution.
func findSource(candidates []*domain.ContentItem, scanned [][]domain.RelatedContentEdge, target uuid.UUID) uuid.UUID {
	for i, edges := range scanned {
		for _, e := range edges {
			if e.ContentTwo == target {
				return candidates[i].ContentID
			}
		}
	}
	return uuid.Nil
}

// renderAll writes the artifacts for the render set plus every aggregate
// page whose membership the run touched. Individual failures are recorded
// and skipped; successes stand regardless.
func (o *Orchestrator) renderAll(ctx context.Context, candidates []*domain.ContentItem, renderSet map[uuid.UUID]*domain.ContentItem, allLive []*domain.ContentItem, report *BuildReport) error {
	var mu sync.Mutex
	fail := func(f Failure) {
		mu.Lock()
		report.Failures = append(report.Failures, f)
		mu.Unlock()
		failedItemsTotal.Inc()
	}
	succeed := func(id *uuid.UUID, path string) {
		mu.Lock()
		if id != nil {
			report.RenderedIDs = append(report.RenderedIDs, *id)
		}
		report.RenderedPaths = append(report.RenderedPaths, path)
		mu.Unlock()
		renderedItemsTotal.Inc()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, item := range renderSet {
		item := item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := render.ContentPath(item)
			body, err := o.renderer.RenderContent(item)
			if err != nil {
				fail(Failure{ContentID: &item.ContentID, Path: path, Stage: StateRendering, Reason: err.Error()})
				return nil
			}
			if err := o.writeArtifact(gctx, path, report.GenerationVersion, item.ContentVersion, body); err != nil {
				fail(Failure{ContentID: &item.ContentID, Path: path, Stage: StateRendering, Reason: err.Error()})
				return nil
			}
			succeed(&item.ContentID, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(renderSet) == 0 {
		return nil
	}
	return o.renderAggregates(ctx, candidates, renderSet, allLive, report, fail, succeed)
}

// renderAggregates rebuilds every tag page, daily rollup and the index whose
// membership could have changed. Tags and days an item used to belong to are
// recovered from its most recent historic snapshot, so a removed tag's page
// is rebuilt without the item.
func (o *Orchestrator) renderAggregates(ctx context.Context, candidates []*domain.ContentItem, renderSet map[uuid.UUID]*domain.ContentItem, allLive []*domain.ContentItem, report *BuildReport, fail func(Failure), succeed func(*uuid.UUID, string)) error {
	tags := map[string]struct{}{}
	days := map[string]time.Time{}
	for _, item := range renderSet {
		for _, tag := range item.TagList() {
			tags[tag] = struct{}{}
		}
		day := item.CreatedOn.UTC().Truncate(24 * time.Hour)
		days[day.Format("2006-01-02")] = day
	}
	for _, item := range candidates {
		snap, err := o.snapshots.LatestByContentID(item.ContentID)
		if err != nil {
			return err
		}
		if snap == nil {
			continue
		}
		prior := snap.ToContentItem()
		for _, tag := range prior.TagList() {
			tags[tag] = struct{}{}
		}
		day := prior.CreatedOn.UTC().Truncate(24 * time.Hour)
		days[day.Format("2006-01-02")] = day
	}

	byTag := map[string][]*domain.ContentItem{}
	byDay := map[string][]*domain.ContentItem{}
	for _, item := range allLive {
		for _, tag := range item.TagList() {
			byTag[tag] = append(byTag[tag], item)
		}
		key := item.CreatedOn.UTC().Format("2006-01-02")
		byDay[key] = append(byDay[key], item)
	}

	for tag := range tags {
		if err := ctx.Err(); err != nil {
			return err
		}
		excluded, err := o.exclusions.Exists(tag)
		if err != nil {
			return err
		}
		path := render.TagPath(tag)
		body, err := o.renderer.RenderTagPage(tag, excluded, byTag[tag])
		if err != nil {
			fail(Failure{Path: path, Stage: StateRendering, Reason: err.Error()})
			continue
		}
		if err := o.writeArtifact(ctx, path, report.GenerationVersion, report.GenerationVersion, body); err != nil {
			fail(Failure{Path: path, Stage: StateRendering, Reason: err.Error()})
			continue
		}
		succeed(nil, path)
	}

	for key, day := range days {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := render.DailyPath(day)
		body, err := o.renderer.RenderDailyPage(day, byDay[key])
		if err != nil {
			fail(Failure{Path: path, Stage: StateRendering, Reason: err.Error()})
			continue
		}
		if err := o.writeArtifact(ctx, path, report.GenerationVersion, report.GenerationVersion, body); err != nil {
			fail(Failure{Path: path, Stage: StateRendering, Reason: err.Error()})
			continue
		}
		succeed(nil, path)
	}

	body, err := o.renderer.RenderIndexPage(allLive)
	if err != nil {
		fail(Failure{Path: render.IndexPath, Stage: StateRendering, Reason: err.Error()})
		return nil
	}
	if err := o.writeArtifact(ctx, render.IndexPath, report.GenerationVersion, report.GenerationVersion, body); err != nil {
		fail(Failure{Path: render.IndexPath, Stage: StateRendering, Reason: err.Error()})
		return nil
	}
	succeed(nil, render.IndexPath)
	return nil
}

// writeArtifact persists one artifact locally and mirrors it to object
// storage when a remote is configured.
func (o *Orchestrator) writeArtifact(ctx context.Context, path string, generationVersion, contentVersion domain.Version, body []byte) error {
	if err := o.store.Write(path, generationVersion, contentVersion, body); err != nil {
		return err
	}
	if o.remote == nil {
		return nil
	}
	_, buf, err := o.store.Read(path)
	if err != nil {
		return err
	}
	return o.remote.UploadArtifact(ctx, path, bytes.NewReader(buf))
}

// reconcile removes artifacts whose source no longer exists. Only full runs
// reach here, so the expected set is complete.
func (o *Orchestrator) reconcile(ctx context.Context, allLive []*domain.ContentItem, report *BuildReport) error {
	expected := map[string]struct{}{render.IndexPath: {}}
	for _, item := range allLive {
		expected[render.ContentPath(item)] = struct{}{}
		for _, tag := range item.TagList() {
			expected[render.TagPath(tag)] = struct{}{}
		}
		expected[render.DailyPath(item.CreatedOn.UTC())] = struct{}{}
	}

	existing, err := o.store.List()
	if err != nil {
		return err
	}
	for _, artifact := range existing {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := expected[artifact.Path]; ok {
			continue
		}
		if err := o.store.Delete(artifact.Path); err != nil {
			report.Failures = append(report.Failures, Failure{Path: artifact.Path, Stage: StateReconciling, Reason: err.Error()})
			continue
		}
		if o.remote != nil {
			if err := o.remote.DeleteArtifact(ctx, artifact.Path); err != nil {
				report.Failures = append(report.Failures, Failure{Path: artifact.Path, Stage: StateReconciling, Reason: err.Error()})
				continue
			}
		}
		report.RemovedPaths = append(report.RemovedPaths, artifact.Path)
	}
	return nil
}

// failState moves the machine to Failed without transition validation; a
// failure can interrupt any working stage.
func (o *Orchestrator) failState() {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	o.state = StateFailed
}

// resetAfterFailure lets a new run start after a failed one.
func (o *Orchestrator) resetAfterFailure() {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	if o.state == StateFailed {
		o.state = StateIdle
	}
}
