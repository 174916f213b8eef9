package search

import (
	"context"
	"fmt"
)

// fakeStore implements KnowledgeStore with per-method hooks. Unset hooks
// return empty results.
type fakeStore struct {
	hybrid   func(ctx context.Context, p SearchParams) ([]Candidate, error)
	semantic func(ctx context.Context, p SearchParams) ([]Candidate, error)
	keyword  func(ctx context.Context, p SearchParams) ([]Candidate, error)
	similar  func(ctx context.Context, p SimilarParams) ([]Candidate, error)
	facets   func(ctx context.Context, source SourceType) ([]Facet, error)
}

func (f *fakeStore) HybridSearch(ctx context.Context, p SearchParams) ([]Candidate, error) {
	if f.hybrid == nil {
		return nil, nil
	}
	return f.hybrid(ctx, p)
}

func (f *fakeStore) SemanticSearch(ctx context.Context, p SearchParams) ([]Candidate, error) {
	if f.semantic == nil {
		return nil, nil
	}
	return f.semantic(ctx, p)
}

func (f *fakeStore) KeywordSearch(ctx context.Context, p SearchParams) ([]Candidate, error) {
	if f.keyword == nil {
		return nil, nil
	}
	return f.keyword(ctx, p)
}

func (f *fakeStore) FindSimilar(ctx context.Context, p SimilarParams) ([]Candidate, error) {
	if f.similar == nil {
		return nil, nil
	}
	return f.similar(ctx, p)
}

func (f *fakeStore) Facets(ctx context.Context, source SourceType) ([]Facet, error) {
	if f.facets == nil {
		return nil, nil
	}
	return f.facets(ctx, source)
}

// fakeEmbedder returns a fixed vector, or an error when failWith is set.
type fakeEmbedder struct {
	vector   []float32
	failWith error
	calls    int
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.vector == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return f.vector, nil
}

// fakeScorer scores texts via a hook, or fails with a fixed error.
type fakeScorer struct {
	score    func(query, model string, texts []string) []float64
	failWith error
	calls    int
}

func (f *fakeScorer) Score(ctx context.Context, query, model string, texts []string) ([]float64, error) {
	f.calls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.score == nil {
		return make([]float64, len(texts)), nil
	}
	return f.score(query, model, texts), nil
}

// docCandidate builds a document-chunk candidate for tests.
func docCandidate(id string, similarity float64, content string) Candidate {
	return Candidate{
		ID:         id,
		Source:     SourceDocuments,
		Similarity: similarity,
		MatchType:  MatchSemantic,
		Document: &DocumentResult{
			DocumentID: "doc-" + id,
			Content:    content,
		},
	}
}

// candidateList builds n candidates with descending similarity.
func candidateList(prefix string, n int, topSimilarity float64) []Candidate {
	out := make([]Candidate, n)
	for i := range out {
		out[i] = docCandidate(
			fmt.Sprintf("%s-%d", prefix, i),
			topSimilarity-float64(i)*0.01,
			fmt.Sprintf("%s content %d", prefix, i),
		)
	}
	return out
}
