package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Request defaults and limits.
const (
	DefaultLimit           = 10
	DefaultThreshold       = 0.3
	DefaultSemanticWeight  = 0.7
	DefaultDiversityLambda = 0.7

	// MinQueryLength is the shortest free-text query worth embedding.
	MinQueryLength = 3
)

// Orchestrator coordinates a search request end to end: validation, query
// embedding, candidate retrieval, optional reranking, and facet aggregation.
type Orchestrator struct {
	store     KnowledgeStore
	embedder  Embedder
	scorer    RelevanceScorer
	retriever *Retriever
	rerank    *RerankPipeline
	logger    *slog.Logger
}

// NewOrchestrator wires the pipeline. scorer may be nil, which disables
// reranking unless a request asks for it explicitly (such requests degrade to
// the similarity ordering).
func NewOrchestrator(store KnowledgeStore, embedder Embedder, scorer RelevanceScorer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		store:    store,
		embedder: embedder,
		scorer:   scorer,
		logger:   logger,
	}
	o.retriever = NewRetriever(store, logger)
	if scorer != nil {
		o.rerank = NewRerankPipeline(scorer, logger)
	}
	return o
}

// Search executes one request. Only an embedding-provider failure (or a
// failing find-similar lookup) is an error; short or empty queries produce an
// empty successful response, and per-source or rerank failures degrade.
func (o *Orchestrator) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	req = withDefaults(req)

	resp := &Response{
		Query:   req.Query,
		Results: []Candidate{},
	}

	findSimilar := req.SimilarTo != ""
	if !findSimilar && len(strings.TrimSpace(req.Query)) < MinQueryLength {
		// Benign input: skip embedding and retrieval entirely.
		resp.Timing.Total = millisSince(start)
		return resp, nil
	}

	var vector []float32
	if !findSimilar {
		embedStart := time.Now()
		v, err := o.embedder.EmbedQuery(ctx, req.Query)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		vector = v
		resp.Timing.Embedding = millisSince(embedStart)
	}

	rerankWanted := o.scorer != nil
	if req.Rerank != nil {
		rerankWanted = *req.Rerank
	}
	rerankWanted = rerankWanted && o.scorer != nil && strings.TrimSpace(req.Query) != ""

	searchStart := time.Now()
	var candidates []Candidate
	if findSimilar {
		limit := req.Limit
		if rerankWanted {
			limit = req.Limit * RerankOverfetchFactor
		}
		var err error
		candidates, err = o.store.FindSimilar(ctx, SimilarParams{
			ChunkID:             req.SimilarTo,
			Limit:               limit,
			Threshold:           req.Threshold,
			ExcludeSameDocument: req.ExcludeSameDocument,
			ExcludeIDs:          req.Filters.ExcludeIDs,
		})
		if err != nil {
			return nil, fmt.Errorf("find similar %q: %w", req.SimilarTo, err)
		}
	} else {
		candidates = o.retriever.Retrieve(ctx, RetrieveParams{
			Query:          req.Query,
			Vector:         vector,
			Sources:        req.Types,
			Mode:           req.Mode,
			SemanticWeight: req.SemanticWeight,
			Limit:          req.Limit,
			Threshold:      req.Threshold,
			Filters:        req.Filters,
			Overfetch:      rerankWanted,
		})
	}
	resp.Timing.Search = millisSince(searchStart)
	resp.Meta.CandidatesRetrieved = len(candidates)

	if rerankWanted && len(candidates) > 0 {
		diversity := true
		if req.Diversity != nil {
			diversity = *req.Diversity
		}

		rerankStart := time.Now()
		ranked, err := o.rerank.Rerank(ctx, req.Query, candidates, RerankOptions{
			TopK:            req.Limit,
			Model:           req.RerankModel,
			ApplyDiversity:  diversity,
			DiversityLambda: req.DiversityLambda,
		})
		if err != nil {
			// Fall back to the pre-rerank similarity ordering; the response
			// must not claim results were reranked.
			o.logger.Warn("reranking failed, returning similarity order", "error", err)
			resp.Results = truncate(candidates, req.Limit)
		} else {
			resp.Results = applyRanking(candidates, ranked)
			resp.Meta.Reranked = true
			resp.Meta.DiversityApplied = diversity
			elapsed := millisSince(rerankStart)
			resp.Timing.Rerank = &elapsed
		}
	} else {
		resp.Results = truncate(candidates, req.Limit)
	}

	if req.IncludeFacets {
		resp.Facets = o.collectFacets(ctx, req.Types)
	}

	resp.Timing.Total = millisSince(start)
	return resp, nil
}

// GetFacets aggregates metadata facet counts for one source type,
// independently of any ranking path.
func (o *Orchestrator) GetFacets(ctx context.Context, source SourceType) ([]Facet, error) {
	return o.store.Facets(ctx, source)
}

// collectFacets gathers facets for every enabled source type. A failing
// source is logged and skipped; facets are auxiliary to the result list.
func (o *Orchestrator) collectFacets(ctx context.Context, sources []SourceType) []SourceFacets {
	out := make([]SourceFacets, 0, len(sources))
	for _, src := range sources {
		facets, err := o.store.Facets(ctx, src)
		if err != nil {
			o.logger.Warn("facet aggregation failed", "source", src, "error", err)
			continue
		}
		out = append(out, SourceFacets{Source: src, Facets: facets})
	}
	return out
}

// applyRanking reorders candidates per the rerank output and attaches the
// ranking scores to each returned candidate.
func applyRanking(candidates []Candidate, ranked []RankedResult) []Candidate {
	out := make([]Candidate, 0, len(ranked))
	for _, r := range ranked {
		c := candidates[r.OriginalRank]
		c.Ranking = &Ranking{
			RelevanceScore: r.RelevanceScore,
			DiversityScore: r.DiversityScore,
			OriginalRank:   r.OriginalRank,
		}
		out = append(out, c)
	}
	return out
}

func truncate(candidates []Candidate, limit int) []Candidate {
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	if candidates == nil {
		candidates = []Candidate{}
	}
	return candidates
}

func withDefaults(req Request) Request {
	req.Types = normalizeSources(req.Types)
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Threshold <= 0 {
		req.Threshold = DefaultThreshold
	}
	switch req.Mode {
	case ModeHybrid, ModeSemantic, ModeKeyword:
	default:
		req.Mode = ModeHybrid
	}
	if req.SemanticWeight <= 0 || req.SemanticWeight > 1 {
		req.SemanticWeight = DefaultSemanticWeight
	}
	if req.DiversityLambda <= 0 || req.DiversityLambda > 1 {
		req.DiversityLambda = DefaultDiversityLambda
	}
	return req
}

func millisSince(t time.Time) int64 {
	return time.Since(t).Milliseconds()
}
