package search

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
)

// RerankOverfetchFactor multiplies the candidate limit when a rerank stage
// follows, so the reranker has enough material to diversify.
const RerankOverfetchFactor = 3

// Retriever fans a query out across the enabled source types and merges the
// results into one similarity-sorted candidate list.
type Retriever struct {
	store  KnowledgeStore
	logger *slog.Logger
}

// NewRetriever creates a Retriever over the given store.
func NewRetriever(store KnowledgeStore, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{store: store, logger: logger}
}

// RetrieveParams configures one retrieval fan-out.
type RetrieveParams struct {
	Query          string
	Vector         []float32
	Sources        []SourceType
	Mode           Mode
	SemanticWeight float64
	Limit          int
	Threshold      float64
	Filters        Filters

	// Overfetch widens the per-source limit for a downstream rerank stage.
	Overfetch bool
}

// Retrieve issues one retrieval per source type concurrently and merges the
// results, sorted non-increasing by similarity. A failing source contributes
// an empty list; it never fails the other sources or the request.
func (r *Retriever) Retrieve(ctx context.Context, p RetrieveParams) []Candidate {
	perSource := p.Limit
	if p.Overfetch {
		perSource = p.Limit * RerankOverfetchFactor
	}

	results := make([][]Candidate, len(p.Sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range p.Sources {
		g.Go(func() error {
			results[i] = r.retrieveSource(gctx, src, p, perSource)
			return nil
		})
	}
	// Goroutines never return an error; a per-source failure degrades locally.
	_ = g.Wait()

	var merged []Candidate
	for _, list := range results {
		merged = append(merged, list...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})
	return merged
}

// retrieveSource runs the store call for a single source type. Hybrid mode
// falls back to semantic-only on store failure; filters (including exclude
// IDs) apply on every path.
func (r *Retriever) retrieveSource(ctx context.Context, src SourceType, p RetrieveParams, limit int) []Candidate {
	sp := SearchParams{
		Source:         src,
		Query:          p.Query,
		Vector:         p.Vector,
		Limit:          limit,
		Threshold:      p.Threshold,
		SemanticWeight: p.SemanticWeight,
		Filters:        p.Filters,
	}

	switch p.Mode {
	case ModeSemantic:
		candidates, err := r.store.SemanticSearch(ctx, sp)
		if err != nil {
			r.logger.Warn("semantic search failed", "source", src, "error", err)
			return nil
		}
		return candidates

	case ModeKeyword:
		candidates, err := r.store.KeywordSearch(ctx, sp)
		if err != nil {
			r.logger.Warn("keyword search failed", "source", src, "error", err)
			return nil
		}
		return candidates

	default:
		candidates, err := r.store.HybridSearch(ctx, sp)
		if err == nil {
			return candidates
		}
		r.logger.Warn("hybrid search failed, retrying semantic-only", "source", src, "error", err)
		candidates, err = r.store.SemanticSearch(ctx, sp)
		if err != nil {
			r.logger.Warn("semantic fallback failed", "source", src, "error", err)
			return nil
		}
		return candidates
	}
}
