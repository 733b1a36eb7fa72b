// Package pipeline drives the end-to-end indexing run: fetching records from
// each data family's platform.Source, extracting entities and relationships,
// predicting implicit links across the batch, detecting communities, and
// summarizing them. It is written as a cooperatively-paused state machine
// (spec §4.6): Run polls a pause/cancel flag at item, batch, and phase
// boundaries rather than relying on OS-level thread suspension, and reports
// progress through the broadcaster in progress.go. Grounded on the teacher's
// pkg/scanner/conductor.go orchestration loop, re-expressed over this
// module's own extractor/predictor/detector/summarizer instead of the
// conductor's syntax-scanning pipeline.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kittclouds/graphrag/pkg/community"
	"github.com/kittclouds/graphrag/pkg/extract"
	"github.com/kittclouds/graphrag/pkg/graphtypes"
	"github.com/kittclouds/graphrag/pkg/linkpredict"
	"github.com/kittclouds/graphrag/pkg/llm"
	"github.com/kittclouds/graphrag/pkg/platform"
	"github.com/kittclouds/graphrag/pkg/summarize"
)

// Store is the union of store operations the pipeline depends on across
// extraction, link prediction, community detection, and summarization.
type Store interface {
	GetEntity(id string) (*graphtypes.Entity, error)
	AddEntity(e *graphtypes.Entity) error
	AddRelationship(r *graphtypes.Relationship) error
	ListForEntity(id string) ([]*graphtypes.Relationship, error)
	ListByType(t graphtypes.EntityType) ([]*graphtypes.Entity, error)
	ListAllRelationships() ([]*graphtypes.Relationship, error)
	AddCommunity(c *graphtypes.Community) error
	ListByLevel(level int) ([]*graphtypes.Community, error)
	MaxCommunityLevel() (int, error)
	UpdateSummary(id, text string, embedding []float32) error
}

// Pipeline runs one data source set's worth of indexing against a Store. Run
// refuses to start a second concurrent run; Pause/Resume/Cancel act on
// whichever run is currently in flight.
type Pipeline struct {
	Store     Store
	Generator llm.Generator
	Embedder  llm.Embedder
	Sources   platform.SourceSet
	Notifier  platform.Notifier
	Config    Config
	Log       *slog.Logger

	broadcaster *broadcaster
	running     atomic.Bool
	cancelled   atomic.Bool
	mu          sync.Mutex
	paused      bool
}

// New returns a Pipeline ready to Run. A nil Notifier is treated as
// platform.NoopNotifier{}; a nil Log uses slog.Default().
func New(store Store, gen llm.Generator, embedder llm.Embedder, sources platform.SourceSet, notifier platform.Notifier, cfg Config, log *slog.Logger) *Pipeline {
	if notifier == nil {
		notifier = platform.NoopNotifier{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		Store:       store,
		Generator:   gen,
		Embedder:    embedder,
		Sources:     sources,
		Notifier:    notifier,
		Config:      cfg,
		Log:         log,
		broadcaster: newBroadcaster(Progress{Status: StatusIdle}),
	}
}

// Subscribe returns a channel of progress updates for the run currently in
// flight (or the next one started).
func (p *Pipeline) Subscribe() <-chan Progress { return p.broadcaster.Subscribe() }

// Snapshot returns the most recent progress update.
func (p *Pipeline) Snapshot() Progress { return p.broadcaster.Snapshot() }

// Pause requests the running pipeline suspend at its next safe boundary.
// A no-op when no run is in flight.
func (p *Pipeline) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
}

// Resume clears a pending or active pause request.
func (p *Pipeline) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
}

// Cancel requests the running pipeline stop at its next safe boundary; the
// run will report StatusCancelled rather than StatusCompleted.
func (p *Pipeline) Cancel() {
	p.cancelled.Store(true)
}

func (p *Pipeline) isPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// waitWhilePaused blocks while a pause is in effect, still honoring
// cancellation and ctx. It is the pipeline's only sleep-based wait, since
// OS-level suspension isn't available to a cooperative state machine.
func (p *Pipeline) waitWhilePaused(ctx context.Context) bool {
	p.publish(func(pr *Progress) { pr.Status = StatusPaused })
	for p.isPaused() {
		if p.cancelled.Load() {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
	if p.cancelled.Load() {
		return false
	}
	p.publish(func(pr *Progress) { pr.Status = StatusRunning })
	return true
}

func (p *Pipeline) publish(mutate func(*Progress)) {
	cur := p.broadcaster.Snapshot()
	mutate(&cur)
	p.broadcaster.Publish(cur)
}

// Run executes one full indexing pass: fetch, extract, link-predict,
// detect communities, summarize. fullReindex ignores any incremental
// watermark and refetches every source from the beginning. Returns an error
// only for a failure outside the per-item/per-source recoverable paths (a
// second concurrent Run, for instance); per-item failures are logged and
// skipped so one bad record cannot abort the run.
func (p *Pipeline) Run(ctx context.Context, fullReindex bool) error {
	if !p.running.CompareAndSwap(false, true) {
		return fmt.Errorf("pipeline: a run is already in progress")
	}
	defer p.running.Store(false)
	p.cancelled.Store(false)
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()

	start := time.Now().UnixMilli()
	p.broadcaster.Publish(Progress{Status: StatusRunning, PhaseName: "bootstrap", StartTime: start})

	if err := p.Notifier.Start(ctx); err != nil {
		p.Log.Warn("pipeline: notifier start failed", "err", err)
	}
	defer func() {
		if err := p.Notifier.Stop(ctx); err != nil {
			p.Log.Warn("pipeline: notifier stop failed", "err", err)
		}
	}()

	predictor := linkpredict.New(p.Store, p.Config.LinkPrediction, p.Embedder)
	if err := linkpredict.EnsureSelf(ctx, p.Store, p.Embedder, start); err != nil {
		return p.fail(start, fmt.Errorf("pipeline: bootstrap self entity: %w", err))
	}
	known := extract.NewKnownEntities()

	var (
		batchEntities      int
		batchRelationships int
		batchMentions      []linkpredict.Mention
		batchTimed         []linkpredict.TimedItem
		batchEntityPtrs    []*graphtypes.Entity
		processedItems     int
		totalItems         int
	)

	// Watermarks are not yet persisted across process restarts; an
	// incremental run still re-fetches everything FetchSince reports as new
	// relative to since=0, relying on AddEntity's timestamp-wins merge
	// (mergeEntities) to make re-processing the same record idempotent.
	since := int64(0)
	for family, source := range p.Sources {
		granted, err := source.CheckPermission(ctx)
		if err != nil {
			p.Log.Warn("pipeline: permission check failed", "family", family, "err", err)
			continue
		}
		if !granted {
			continue
		}
		records, err := source.FetchSince(ctx, since, 0)
		if err != nil {
			p.Log.Warn("pipeline: fetch failed", "family", family, "err", err)
			continue
		}
		totalItems += len(records)

		for batchStart := 0; batchStart < len(records); batchStart += p.Config.BatchSize {
			if p.cancelled.Load() {
				return p.cancelReport(start)
			}
			if !p.waitWhilePaused(ctx) {
				return p.cancelReport(start)
			}

			end := batchStart + p.Config.BatchSize
			if end > len(records) {
				end = len(records)
			}
			batch := records[batchStart:end]

			for _, rec := range batch {
				if p.cancelled.Load() {
					return p.cancelReport(start)
				}
				res, err := p.extractItem(ctx, rec, family, known)
				if err != nil {
					p.Log.Warn("pipeline: extraction failed", "family", family, "record", rec.ID, "err", err)
					processedItems++
					continue
				}
				filtered := extract.Filter(res, extract.DefaultConfig())
				entityIDs, primary, err := p.mergeEntities(ctx, filtered, rec.LastModified)
				if err != nil {
					p.Log.Warn("pipeline: merge entities failed", "record", rec.ID, "err", err)
				}
				for _, ee := range filtered.Entities {
					known.Add(ee.Name, graphtypes.DeriveEntityID(ee.Type, ee.Name))
				}
				batchEntities += len(entityIDs)
				rels := p.resolveRelationships(filtered, entityIDs)
				for _, rel := range rels {
					if err := p.Store.AddRelationship(rel); err != nil {
						p.Log.Warn("pipeline: add relationship failed", "err", err)
						continue
					}
					batchRelationships++
				}

				if primary != "" {
					if err := predictor.LinkNewEntity(ctx, primary, family, rec.LastModified); err != nil {
						p.Log.Warn("pipeline: self-link failed", "err", err)
					}
					batchTimed = append(batchTimed, linkpredict.TimedItem{EntityID: primary, Timestamp: rec.LastModified})
				}
				if len(entityIDs) > 1 {
					batchMentions = append(batchMentions, linkpredict.Mention{EntityIDs: entityIDs, SourceID: rec.ID})
				}
				for _, id := range entityIDs {
					if e, err := p.Store.GetEntity(id); err == nil && e != nil {
						batchEntityPtrs = append(batchEntityPtrs, e)
					}
				}

				processedItems++
				p.publish(func(pr *Progress) {
					pr.PhaseName = "extract"
					pr.ProcessedItems = processedItems
					pr.TotalItems = totalItems
					pr.ExtractedEntities = batchEntities
					pr.ExtractedRelationships = batchRelationships
				})
			}

			if p.Config.BatchDelay > 0 {
				select {
				case <-ctx.Done():
					return p.cancelReport(start)
				case <-time.After(p.Config.BatchDelay):
				}
			}
		}
	}

	if p.cancelled.Load() {
		return p.cancelReport(start)
	}
	if !p.waitWhilePaused(ctx) {
		return p.cancelReport(start)
	}

	predictedLinks := 0
	if p.Config.EnableLinkPrediction {
		p.publish(func(pr *Progress) { pr.PhaseName = "link_predict" })
		predictedLinks += predictor.RunTemplateRules(batchEntityPtrs, start)
		predictedLinks += predictor.RunCoMention(batchMentions, start)
		predictedLinks += predictor.RunTemporalProximity(batchTimed, start)
		n, err := predictor.RunColleagueInference(start)
		if err != nil {
			p.Log.Warn("pipeline: colleague inference failed", "err", err)
		}
		predictedLinks += n
		p.publish(func(pr *Progress) { pr.PredictedLinks = predictedLinks })
	}

	if p.cancelled.Load() {
		return p.cancelReport(start)
	}

	detectedCommunities := 0
	if p.Config.DetectCommunities {
		p.publish(func(pr *Progress) { pr.PhaseName = "community_detect" })
		n, err := p.detectCommunities()
		if err != nil {
			p.Log.Warn("pipeline: community detection failed", "err", err)
		}
		detectedCommunities = n
		p.publish(func(pr *Progress) { pr.DetectedCommunities = detectedCommunities })
	}

	if p.cancelled.Load() {
		return p.cancelReport(start)
	}

	if p.Config.GenerateSummaries && p.Generator != nil {
		p.publish(func(pr *Progress) { pr.PhaseName = "summarize" })
		cancelled := func() bool { return p.cancelled.Load() }
		if _, err := summarize.Run(ctx, p.Store, p.Generator, p.Embedder, cancelled, p.Config.Summarize, p.Log); err != nil {
			p.Log.Warn("pipeline: summarization failed", "err", err)
		}
	}

	if p.cancelled.Load() {
		return p.cancelReport(start)
	}

	end := time.Now().UnixMilli()
	p.broadcaster.Publish(Progress{
		Status: StatusCompleted, PhaseName: "done",
		ProcessedItems: processedItems, TotalItems: totalItems,
		ExtractedEntities: batchEntities, ExtractedRelationships: batchRelationships,
		PredictedLinks: predictedLinks, DetectedCommunities: detectedCommunities,
		StartTime: start, EndTime: end,
	})
	return nil
}

// RunPeriodic runs once immediately (fullReindex on the first pass only)
// and then, if Config.ReindexInterval is positive, keeps re-triggering
// itself with fullReindex=false every interval until ctx is cancelled.
// Per spec §4.6, a scheduled tick that lands while a run is already active
// is simply skipped rather than queued: Run's own CompareAndSwap guard
// refuses the overlapping start, and RunPeriodic logs that and waits for
// the next tick.
func (p *Pipeline) RunPeriodic(ctx context.Context, fullReindex bool) error {
	if err := p.Run(ctx, fullReindex); err != nil {
		return err
	}
	if p.Config.ReindexInterval <= 0 {
		return nil
	}
	ticker := time.NewTicker(p.Config.ReindexInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.Run(ctx, false); err != nil {
				p.Log.Warn("pipeline: scheduled reindex refused", "err", err)
			}
		}
	}
}

func (p *Pipeline) fail(start int64, err error) error {
	p.broadcaster.Publish(Progress{Status: StatusFailed, StartTime: start, EndTime: time.Now().UnixMilli(), Error: err.Error()})
	return err
}

func (p *Pipeline) cancelReport(start int64) error {
	cur := p.broadcaster.Snapshot()
	cur.Status = StatusCancelled
	cur.StartTime = start
	cur.EndTime = time.Now().UnixMilli()
	p.broadcaster.Publish(cur)
	return nil
}

// extractItem dispatches to the direct extractor for families with a
// structured shape and to the LLM extractor otherwise, falling back to the
// LLM extractor if the direct extractor yields nothing.
func (p *Pipeline) extractItem(ctx context.Context, rec platform.Record, family graphtypes.DataFamily, known *extract.KnownEntities) (extract.Result, error) {
	switch family {
	case graphtypes.FamilyContact, graphtypes.FamilyEvent, graphtypes.FamilyPhoto, graphtypes.FamilyCall:
		res, err := extract.Direct(rec, family)
		if err == nil && len(res.Entities) > 0 {
			return res, nil
		}
	}
	if p.Generator == nil {
		return extract.Result{SourceID: rec.ID, SourceType: family}, nil
	}
	text, _ := rec.Fields["text"].(string)
	if text == "" {
		if name, ok := rec.Fields["name"].(string); ok {
			text = name
		}
	}
	return extract.LLMExtractWithHints(ctx, p.Generator, text, rec.ID, family, known)
}

// mergeEntities upserts every extracted entity using timestamp-wins
// conflict resolution (spec §4.1's monotonicity invariant: a write only
// replaces an existing entity when its LastModified is not older), embedding
// each one's "name description" text. It returns the resolved ids in
// extraction order and the id of the first (primary) entity, if any.
func (p *Pipeline) mergeEntities(ctx context.Context, filtered extract.Result, itemLastModified int64) ([]string, string, error) {
	var ids []string
	var primary string
	for _, ee := range filtered.Entities {
		id := graphtypes.DeriveEntityID(ee.Type, ee.Name)
		existing, err := p.Store.GetEntity(id)
		if err != nil {
			return ids, primary, err
		}

		lastModified := itemLastModified
		if lastModified == 0 {
			lastModified = time.Now().UnixMilli()
		}

		var embedding []float32
		if p.Embedder != nil {
			vec, err := p.Embedder.Embed(ctx, ee.Name+" "+ee.Description)
			if err == nil {
				embedding = vec
			}
		}

		entity := &graphtypes.Entity{
			ID: id, Name: ee.Name, Type: ee.Type, Description: ee.Description,
			Attributes: ee.Attributes, Embedding: embedding,
			CreatedAt: lastModified, LastModified: lastModified,
		}
		if existing != nil {
			if existing.LastModified > lastModified {
				ids = append(ids, id)
				if primary == "" {
					primary = id
				}
				continue
			}
			entity.CreatedAt = existing.CreatedAt
			if embedding == nil {
				entity.Embedding = existing.Embedding
			}
		}
		if err := p.Store.AddEntity(entity); err != nil {
			return ids, primary, err
		}
		ids = append(ids, id)
		if primary == "" {
			primary = id
		}
	}
	return ids, primary, nil
}

// resolveRelationships resolves each extracted relationship's source/target
// names to entity ids, first against the item's own extracted entities and
// falling back to a derived-id lookup across every recognized type.
// Relationships whose endpoints don't resolve are dropped.
func (p *Pipeline) resolveRelationships(res extract.Result, itemEntityIDs []string) []*graphtypes.Relationship {
	byName := make(map[string]string, len(res.Entities))
	for _, ee := range res.Entities {
		byName[ee.Name] = graphtypes.DeriveEntityID(ee.Type, ee.Name)
	}

	resolve := func(name string) string {
		if id, ok := byName[name]; ok {
			return id
		}
		for _, t := range graphtypes.AllEntityTypes {
			candidate := graphtypes.DeriveEntityID(t, name)
			if e, err := p.Store.GetEntity(candidate); err == nil && e != nil {
				return candidate
			}
		}
		return ""
	}

	var out []*graphtypes.Relationship
	now := time.Now().UnixMilli()
	for _, er := range res.Relationships {
		srcID := resolve(er.Source)
		tgtID := resolve(er.Target)
		if srcID == "" || tgtID == "" {
			continue
		}
		out = append(out, &graphtypes.Relationship{
			ID:        graphtypes.DeriveRelationshipID(srcID, er.Type, tgtID),
			SourceID:  srcID,
			TargetID:  tgtID,
			Type:      er.Type,
			Weight:    er.Confidence,
			Metadata:  er.Metadata,
			CreatedAt: now,
		})
	}
	return out
}

// detectCommunities gathers the whole graph, runs Louvain detection, filters
// each resulting community's members down to ids that still resolve, and
// persists every non-empty community.
func (p *Pipeline) detectCommunities() (int, error) {
	var entities []*graphtypes.Entity
	for _, t := range graphtypes.AllEntityTypes {
		es, err := p.Store.ListByType(t)
		if err != nil {
			return 0, err
		}
		entities = append(entities, es...)
	}
	relationships, err := p.Store.ListAllRelationships()
	if err != nil {
		return 0, err
	}

	cfg := p.Config.Community
	if cfg.MaxIterations == 0 {
		cfg = community.DefaultConfig()
	}
	result := community.Detect(entities, relationships, cfg)

	n := 0
	for _, c := range result.Communities {
		var kept []string
		for _, id := range c.MemberIDs {
			if e, err := p.Store.GetEntity(id); err == nil && e != nil {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			continue
		}
		c.MemberIDs = kept
		if err := p.Store.AddCommunity(c); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
