package linkpredict

import (
	"context"

	"github.com/kittclouds/graphrag/pkg/graphtypes"
	"github.com/kittclouds/graphrag/pkg/llm"
)

// Predictor runs the enabled inference strategies against a store, per
// Config.
type Predictor struct {
	Store    Store
	Config   Config
	Embedder llm.Embedder
}

// New returns a Predictor for s with cfg.
func New(s Store, cfg Config, embedder llm.Embedder) *Predictor {
	return &Predictor{Store: s, Config: cfg, Embedder: embedder}
}

// LinkNewEntity runs self-linking for a single newly-inserted entity: it
// ensures the Self entity exists, then emits SELF -> entity with the
// family's fixed relation type. Safe to call even when self-linking is
// disabled (it becomes a no-op).
func (p *Predictor) LinkNewEntity(ctx context.Context, entityID string, family graphtypes.DataFamily, nowMillis int64) error {
	if !p.Config.EnableSelfLinking {
		return nil
	}
	if err := EnsureSelf(ctx, p.Store, p.Embedder, nowMillis); err != nil {
		return err
	}
	return LinkSelf(p.Store, entityID, family, nowMillis)
}

// RunTemplateRules applies TemplateInfer over entities if enabled.
func (p *Predictor) RunTemplateRules(entities []*graphtypes.Entity, nowMillis int64) int {
	if !p.Config.EnableTemplateRules {
		return 0
	}
	return TemplateInfer(p.Store, entities, p.Config.TemplateWeight, nowMillis)
}

// RunCoMention applies CoMention over a batch's mentions if enabled.
func (p *Predictor) RunCoMention(mentions []Mention, nowMillis int64) int {
	if !p.Config.EnableCoMention {
		return 0
	}
	return CoMention(p.Store, mentions, p.Config.MinCoOccurrenceCount, p.Config.CoOccurrenceWeight, nowMillis)
}

// RunTemporalProximity applies TemporalProximity over timed items if
// enabled.
func (p *Predictor) RunTemporalProximity(items []TimedItem, nowMillis int64) int {
	if !p.Config.EnableTemporalProximity {
		return 0
	}
	return TemporalProximity(p.Store, items, p.Config.TemporalWindow, nowMillis)
}

// RunColleagueInference applies ColleagueInfer if enabled.
func (p *Predictor) RunColleagueInference(nowMillis int64) (int, error) {
	if !p.Config.EnableColleagueInference {
		return 0, nil
	}
	return ColleagueInfer(p.Store, p.Config.TemplateWeight, nowMillis)
}
