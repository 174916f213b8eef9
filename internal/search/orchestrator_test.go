package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchShortQueryShortCircuits(t *testing.T) {
	store := &fakeStore{
		hybrid: func(ctx context.Context, p SearchParams) ([]Candidate, error) {
			t.Fatal("store must not be called for a short query")
			return nil, nil
		},
	}
	embedder := &fakeEmbedder{}

	o := NewOrchestrator(store, embedder, nil, nil)
	resp, err := o.Search(context.Background(), Request{Query: "  ab "})
	require.NoError(t, err)

	assert.Empty(t, resp.Results)
	assert.NotNil(t, resp.Results, "results must be an empty list, not nil")
	assert.Zero(t, embedder.calls, "query must not be embedded")
	assert.Zero(t, resp.Timing.Embedding)
	assert.Zero(t, resp.Timing.Search)
	assert.Nil(t, resp.Timing.Rerank)
	assert.False(t, resp.Meta.Reranked)
}

func TestSearchEmbeddingFailureIsFatal(t *testing.T) {
	embedErr := errors.New("provider unavailable")
	o := NewOrchestrator(&fakeStore{}, &fakeEmbedder{failWith: embedErr}, nil, nil)

	_, err := o.Search(context.Background(), Request{Query: "brand colors"})
	require.Error(t, err)
	assert.ErrorIs(t, err, embedErr)
}

func TestSearchWithoutScorerKeepsSimilarityOrder(t *testing.T) {
	store := &fakeStore{
		hybrid: func(ctx context.Context, p SearchParams) ([]Candidate, error) {
			if p.Source != SourceDocuments {
				return nil, nil
			}
			return candidateList("d", 5, 0.9), nil
		},
	}

	o := NewOrchestrator(store, &fakeEmbedder{}, nil, nil)
	resp, err := o.Search(context.Background(), Request{Query: "brand colors", Limit: 3})
	require.NoError(t, err)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, "d-0", resp.Results[0].ID)
	assert.False(t, resp.Meta.Reranked)
	assert.Nil(t, resp.Timing.Rerank)
	assert.Equal(t, 5, resp.Meta.CandidatesRetrieved)
	for _, c := range resp.Results {
		assert.Nil(t, c.Ranking)
	}
}

func TestSearchRerankAttachesRankings(t *testing.T) {
	store := &fakeStore{
		hybrid: func(ctx context.Context, p SearchParams) ([]Candidate, error) {
			if p.Source != SourceDocuments {
				return nil, nil
			}
			// Overfetched pool: limit 2 with a scorer configured.
			assert.Equal(t, 2*RerankOverfetchFactor, p.Limit)
			return []Candidate{
				docCandidate("low", 0.9, "offbrand trivia"),
				docCandidate("high", 0.8, "the exact answer"),
			}, nil
		},
	}
	scorer := &fakeScorer{
		score: func(query, model string, texts []string) []float64 {
			return []float64{0.1, 0.95}
		},
	}

	o := NewOrchestrator(store, &fakeEmbedder{}, scorer, nil)
	noDiversity := false
	resp, err := o.Search(context.Background(), Request{
		Query:     "brand colors",
		Limit:     2,
		Diversity: &noDiversity,
	})
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "high", resp.Results[0].ID)
	assert.True(t, resp.Meta.Reranked)
	assert.False(t, resp.Meta.DiversityApplied)
	require.NotNil(t, resp.Timing.Rerank)

	require.NotNil(t, resp.Results[0].Ranking)
	assert.Equal(t, 0.95, resp.Results[0].Ranking.RelevanceScore)
	assert.Equal(t, 1, resp.Results[0].Ranking.OriginalRank)
	// Retrieval similarity survives alongside the rerank score.
	assert.Equal(t, 0.8, resp.Results[0].Similarity)
}

func TestSearchRerankFailureFallsBack(t *testing.T) {
	store := &fakeStore{
		hybrid: func(ctx context.Context, p SearchParams) ([]Candidate, error) {
			if p.Source != SourceDocuments {
				return nil, nil
			}
			return candidateList("d", 6, 0.9), nil
		},
	}
	scorer := &fakeScorer{failWith: errors.New("rerank provider down")}

	o := NewOrchestrator(store, &fakeEmbedder{}, scorer, nil)
	resp, err := o.Search(context.Background(), Request{Query: "brand colors", Limit: 2})
	require.NoError(t, err, "rerank failure must not fail the request")

	require.Len(t, resp.Results, 2, "fallback truncates the overfetched pool to the limit")
	assert.Equal(t, "d-0", resp.Results[0].ID, "fallback keeps similarity order")
	assert.False(t, resp.Meta.Reranked)
	assert.False(t, resp.Meta.DiversityApplied)
	assert.Nil(t, resp.Timing.Rerank)
}

func TestSearchRerankDisabledByRequest(t *testing.T) {
	store := &fakeStore{
		hybrid: func(ctx context.Context, p SearchParams) ([]Candidate, error) {
			if p.Source != SourceDocuments {
				return nil, nil
			}
			assert.Equal(t, 5, p.Limit, "no overfetch when reranking is off")
			return candidateList("d", 3, 0.9), nil
		},
	}
	scorer := &fakeScorer{}

	o := NewOrchestrator(store, &fakeEmbedder{}, scorer, nil)
	off := false
	resp, err := o.Search(context.Background(), Request{Query: "brand colors", Limit: 5, Rerank: &off})
	require.NoError(t, err)

	assert.Zero(t, scorer.calls)
	assert.False(t, resp.Meta.Reranked)
}

func TestSearchFindSimilarSkipsEmbedding(t *testing.T) {
	var gotParams SimilarParams
	store := &fakeStore{
		similar: func(ctx context.Context, p SimilarParams) ([]Candidate, error) {
			gotParams = p
			return candidateList("n", 2, 0.8), nil
		},
	}
	embedder := &fakeEmbedder{failWith: errors.New("must not be called")}

	o := NewOrchestrator(store, embedder, nil, nil)
	resp, err := o.Search(context.Background(), Request{
		SimilarTo:           "chunk-42",
		Limit:               5,
		ExcludeSameDocument: true,
		Filters:             Filters{ExcludeIDs: []string{"skip-me"}},
	})
	require.NoError(t, err)

	assert.Zero(t, embedder.calls)
	assert.Zero(t, resp.Timing.Embedding)
	assert.Len(t, resp.Results, 2)

	assert.Equal(t, "chunk-42", gotParams.ChunkID)
	assert.Equal(t, 5, gotParams.Limit)
	assert.True(t, gotParams.ExcludeSameDocument)
	assert.Equal(t, []string{"skip-me"}, gotParams.ExcludeIDs)
}

func TestSearchFindSimilarErrorIsFatal(t *testing.T) {
	lookupErr := errors.New("chunk not found")
	store := &fakeStore{
		similar: func(ctx context.Context, p SimilarParams) ([]Candidate, error) {
			return nil, lookupErr
		},
	}

	o := NewOrchestrator(store, &fakeEmbedder{}, nil, nil)
	_, err := o.Search(context.Background(), Request{SimilarTo: "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, lookupErr)
}

func TestSearchFacetsOnlyWhenRequested(t *testing.T) {
	store := &fakeStore{
		facets: func(ctx context.Context, source SourceType) ([]Facet, error) {
			if source == SourceChats {
				return nil, errors.New("facet query failed")
			}
			return []Facet{{Type: "category", Value: "guidelines", Count: 4}}, nil
		},
	}
	o := NewOrchestrator(store, &fakeEmbedder{}, nil, nil)

	resp, err := o.Search(context.Background(), Request{Query: "brand colors"})
	require.NoError(t, err)
	assert.Nil(t, resp.Facets, "facets are absent unless requested")

	resp, err = o.Search(context.Background(), Request{Query: "brand colors", IncludeFacets: true})
	require.NoError(t, err)
	// The failing source is skipped, the other two report.
	require.Len(t, resp.Facets, 2)
	for _, sf := range resp.Facets {
		assert.NotEqual(t, SourceChats, sf.Source)
		assert.Equal(t, "guidelines", sf.Facets[0].Value)
	}
}

func TestSearchAppliesDefaults(t *testing.T) {
	var got SearchParams
	store := &fakeStore{
		hybrid: func(ctx context.Context, p SearchParams) ([]Candidate, error) {
			if p.Source == SourceDocuments {
				got = p
			}
			return nil, nil
		},
	}

	o := NewOrchestrator(store, &fakeEmbedder{}, nil, nil)
	_, err := o.Search(context.Background(), Request{Query: "brand colors"})
	require.NoError(t, err)

	assert.Equal(t, DefaultLimit, got.Limit)
	assert.Equal(t, DefaultThreshold, got.Threshold)
	assert.Equal(t, DefaultSemanticWeight, got.SemanticWeight)
}

func TestSearchNormalizesSourceTypes(t *testing.T) {
	called := map[SourceType]int{}
	store := &fakeStore{
		hybrid: func(ctx context.Context, p SearchParams) ([]Candidate, error) {
			called[p.Source]++
			return nil, nil
		},
	}

	o := NewOrchestrator(store, &fakeEmbedder{}, nil, nil)
	_, err := o.Search(context.Background(), Request{
		Query: "brand colors",
		Types: []SourceType{"Documents", "documents", "bogus"},
	})
	require.NoError(t, err)

	assert.Equal(t, map[SourceType]int{SourceDocuments: 1}, called)
}

func TestGetFacetsPassesThrough(t *testing.T) {
	want := []Facet{{Type: "variant", Value: "dark", Count: 2}}
	store := &fakeStore{
		facets: func(ctx context.Context, source SourceType) ([]Facet, error) {
			assert.Equal(t, SourceAssets, source)
			return want, nil
		},
	}

	o := NewOrchestrator(store, &fakeEmbedder{}, nil, nil)
	got, err := o.GetFacets(context.Background(), SourceAssets)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
