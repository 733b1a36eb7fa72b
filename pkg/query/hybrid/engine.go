// Package hybrid implements local retrieval over the knowledge graph:
// optional Cypher-subset execution, embedding similarity search over
// entities and communities, and reciprocal-rank fusion of the resulting
// ranked lists into one context, with an optional grounded LLM answer.
// Grounded on the teacher's pkg/scanner/conductor.go query-assembly step,
// rewritten around this module's own store, cypher, and llm packages.
package hybrid

import (
	"context"
	"fmt"
	"sort"

	"github.com/kittclouds/graphrag/pkg/cypher"
	"github.com/kittclouds/graphrag/pkg/graphtypes"
	"github.com/kittclouds/graphrag/pkg/llm"
)

// Request is one hybrid query. CypherQuery overrides the natural-language
// heuristic when non-empty. TypeFilter restricts embedding search to one
// entity type; empty means search all types.
type Request struct {
	Query       string
	CypherQuery string
	TypeFilter  graphtypes.EntityType
}

// Result is the fused retrieval output, plus an optional generated answer.
type Result struct {
	Entities    []*graphtypes.Entity
	Communities []*graphtypes.Community
	Context     string
	Answer      string
	UsedCypher  bool
	CypherError string
}

// Engine runs hybrid queries against a Store using an Embedder for query
// vectors and an optional Generator for grounded answers.
type Engine struct {
	Store    Store
	Embedder llm.Embedder
	Config   Config
}

// New returns an Engine.
func New(s Store, embedder llm.Embedder, cfg Config) *Engine {
	return &Engine{Store: s, Embedder: embedder, Config: cfg}
}

// Query runs the full retrieval pipeline (spec §4.7 steps 1-7) and returns
// the fused context, without generating an answer.
func (eng *Engine) Query(ctx context.Context, req Request) (*Result, error) {
	queryVec, err := eng.Embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("hybrid: embed query: %w", err)
	}

	res := &Result{}
	lists := make(map[string][]string)
	weights := map[string]float64{
		"cypher":    eng.Config.CypherWeight,
		"embedding": eng.Config.EmbeddingWeight,
		"community": eng.Config.CommunityWeight,
	}

	cypherSrc := req.CypherQuery
	if cypherSrc == "" && looksLikeCypher(req.Query) {
		cypherSrc = req.Query
	}
	if cypherSrc == "" {
		cypherSrc = heuristicCypher(req.Query)
	}
	if cypherSrc != "" {
		ids, used, cypherErr := eng.runCypher(cypherSrc)
		res.UsedCypher = used
		if cypherErr != nil {
			res.CypherError = cypherErr.Error()
		} else {
			lists["cypher"] = ids
		}
	}

	entityHits, err := eng.Store.SearchEntities(queryVec, eng.Config.TopK, eng.Config.SimilarityThreshold, req.TypeFilter)
	if err != nil {
		return nil, fmt.Errorf("hybrid: search entities: %w", err)
	}
	embeddingIDs := make([]string, 0, len(entityHits))
	for _, hit := range entityHits {
		embeddingIDs = append(embeddingIDs, hit.Entity.ID)
	}
	lists["embedding"] = embeddingIDs

	var communityHits []*graphtypes.Community
	if eng.Config.IncludeCommunityContext {
		communityIDs, communities, err := eng.searchCommunities(queryVec)
		if err != nil {
			return nil, fmt.Errorf("hybrid: search communities: %w", err)
		}
		lists["community"] = communityIDs
		communityHits = communities
	}

	fused := rrfFuse(eng.Config.RRFK, lists, weights)

	entities := make([]*graphtypes.Entity, 0, len(fused))
	for _, f := range fused {
		if len(entities) >= eng.Config.TopK {
			break
		}
		e, err := eng.Store.GetEntity(f.id)
		if err != nil {
			continue
		}
		if e != nil {
			entities = append(entities, e)
		}
	}

	communityTopK := eng.Config.TopK / 2
	if communityTopK > len(communityHits) {
		communityTopK = len(communityHits)
	}
	res.Entities = entities
	res.Communities = communityHits[:communityTopK]
	res.Context = buildContext(entities, res.Communities)
	return res, nil
}

// QueryWithAnswer runs Query and, if gen is non-nil and retrieval returned
// at least one entity, feeds a grounded prompt to it for a generated answer;
// otherwise Answer is left empty.
func (eng *Engine) QueryWithAnswer(ctx context.Context, req Request, gen llm.Generator) (*Result, error) {
	res, err := eng.Query(ctx, req)
	if err != nil {
		return nil, err
	}
	if gen == nil || len(res.Entities) == 0 {
		return res, nil
	}
	answer, err := gen.Generate(ctx, groundedPrompt(req.Query, res.Entities))
	if err != nil {
		return res, fmt.Errorf("hybrid: generate answer: %w", err)
	}
	res.Answer = answer
	return res, nil
}

// QueryWithAnswerStream is the streaming variant of QueryWithAnswer: it
// runs retrieval synchronously, then starts streaming the answer's tokens.
func (eng *Engine) QueryWithAnswerStream(ctx context.Context, req Request, gen llm.StreamGenerator) (*Result, <-chan string, <-chan error, error) {
	res, err := eng.Query(ctx, req)
	if err != nil {
		return nil, nil, nil, err
	}
	if gen == nil || len(res.Entities) == 0 {
		empty := make(chan string)
		close(empty)
		noErr := make(chan error)
		close(noErr)
		return res, empty, noErr, nil
	}
	tokens, errs := gen.GenerateStream(ctx, groundedPrompt(req.Query, res.Entities))
	return res, tokens, errs, nil
}

// runCypher executes src and returns the ids of returned entity-shaped
// records. Per spec §4.8's failure mode, an execution error is swallowed
// here (reported via Result.CypherError) rather than failing the whole
// query, so the caller proceeds with vector-only retrieval.
func (eng *Engine) runCypher(src string) ([]string, bool, error) {
	q, err := cypher.Parse(src)
	if err != nil {
		return nil, false, err
	}
	result, err := cypher.Execute(q, eng.Store)
	if err != nil {
		return nil, true, err
	}
	return result.EntityIDs(), true, nil
}

func (eng *Engine) searchCommunities(queryVec []float32) ([]string, []*graphtypes.Community, error) {
	topK := eng.Config.TopK / 2
	type scored struct {
		community *graphtypes.Community
		score     float64
	}
	var all []scored
	for level := 0; level <= eng.Config.MaxCommunityLevel; level++ {
		hits, err := eng.Store.SearchCommunities(queryVec, topK, level)
		if err != nil {
			return nil, nil, err
		}
		for _, hit := range hits {
			all = append(all, scored{community: hit.Community, score: hit.Score})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	var ids []string
	communities := make([]*graphtypes.Community, 0, len(all))
	for _, s := range all {
		ids = append(ids, s.community.ID)
		communities = append(communities, s.community)
		ids = append(ids, s.community.MemberIDs...)
	}
	return ids, communities, nil
}
