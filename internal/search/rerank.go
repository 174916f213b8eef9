package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// RankedResult is one output row of the rerank stage. RelevanceScore
// supersedes the candidate's retrieval similarity; the two are never blended.
type RankedResult struct {
	ID             string
	RelevanceScore float64
	DiversityScore *float64
	OriginalRank   int
}

// RerankOptions configures one rerank invocation.
type RerankOptions struct {
	TopK            int
	Model           string
	ApplyDiversity  bool
	DiversityLambda float64
}

// RerankPipeline scores candidates with a cross-encoder provider and
// optionally diversifies the top-K with Maximal Marginal Relevance.
type RerankPipeline struct {
	scorer RelevanceScorer
	logger *slog.Logger
}

// NewRerankPipeline creates a pipeline over the given relevance provider.
func NewRerankPipeline(scorer RelevanceScorer, logger *slog.Logger) *RerankPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &RerankPipeline{scorer: scorer, logger: logger}
}

// Rerank scores every candidate's display text against the query and returns
// at most TopK results. A provider error propagates to the caller; the caller
// decides the fallback ordering.
func (p *RerankPipeline) Rerank(ctx context.Context, query string, candidates []Candidate, opts RerankOptions) ([]RankedResult, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	texts := make([]string, len(candidates))
	for i := range candidates {
		texts[i] = candidates[i].DisplayText()
	}

	scores, err := p.scorer.Score(ctx, query, opts.Model, texts)
	if err != nil {
		return nil, fmt.Errorf("relevance scoring: %w", err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("relevance scoring: got %d scores for %d candidates", len(scores), len(candidates))
	}

	ranked := make([]RankedResult, len(candidates))
	for i := range candidates {
		ranked[i] = RankedResult{
			ID:             candidates[i].ID,
			RelevanceScore: scores[i],
			OriginalRank:   i,
		}
	}

	topK := opts.TopK
	if topK <= 0 || topK > len(ranked) {
		topK = len(ranked)
	}

	if opts.ApplyDiversity {
		return selectDiverse(ranked, texts, topK, opts.DiversityLambda), nil
	}

	// Relevance order, ties broken by original position.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RelevanceScore != ranked[j].RelevanceScore {
			return ranked[i].RelevanceScore > ranked[j].RelevanceScore
		}
		return ranked[i].OriginalRank < ranked[j].OriginalRank
	})
	return ranked[:topK], nil
}

// selectDiverse runs Maximal Marginal Relevance over the scored candidates.
// At each step every unselected candidate is scored as
// lambda*relevance - (1-lambda)*maxSimilarityToSelected and the highest
// scorer wins; ties go to the earlier original rank, keeping selection
// deterministic.
func selectDiverse(ranked []RankedResult, texts []string, topK int, lambda float64) []RankedResult {
	sets := make([]tokenSet, len(texts))
	for i, t := range texts {
		sets[i] = newTokenSet(t)
	}

	selected := make([]RankedResult, 0, topK)
	var selectedSets []tokenSet
	remaining := make([]int, len(ranked))
	for i := range remaining {
		remaining[i] = i
	}

	for len(selected) < topK && len(remaining) > 0 {
		best := -1
		bestScore := 0.0
		for _, idx := range remaining {
			maxSim := 0.0
			for _, s := range selectedSets {
				if sim := jaccard(sets[idx], s); sim > maxSim {
					maxSim = sim
				}
			}
			score := lambda*ranked[idx].RelevanceScore - (1-lambda)*maxSim
			// Strict > keeps the lowest original rank on ties: remaining is
			// iterated in input order.
			if best == -1 || score > bestScore {
				best = idx
				bestScore = score
			}
		}

		diversity := bestScore
		chosen := ranked[best]
		chosen.DiversityScore = &diversity
		selected = append(selected, chosen)
		selectedSets = append(selectedSets, sets[best])

		next := remaining[:0]
		for _, idx := range remaining {
			if idx != best {
				next = append(next, idx)
			}
		}
		remaining = next
	}

	return selected
}

type tokenSet map[string]struct{}

func newTokenSet(text string) tokenSet {
	set := make(tokenSet)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,;:!?\"'()[]{}")
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}

// jaccard is the symmetric token-overlap similarity used for the MMR
// redundancy penalty. Identical texts score 1, disjoint texts 0.
func jaccard(a, b tokenSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
