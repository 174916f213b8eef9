//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandkit/knowledge-server/internal/search"
)

// setupTestStore creates a brand-scoped store and ensures the collection
// exists. Skips the test if Qdrant is not running. Each test gets its own
// brand ID, so tests never see each other's points.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore("localhost", 6334, "test-brand-"+uuid.New().String())
	if err != nil {
		t.Skipf("Qdrant not available: %v", err)
	}

	err = store.EnsureCollection(context.Background())
	require.NoError(t, err, "Failed to ensure collection")

	return store
}

// testVector returns a VectorDimension-sized embedding whose first component
// dominates, shifted by seed so different seeds stay distinguishable under
// cosine similarity.
func testVector(seed int) []float32 {
	v := make([]float32, VectorDimension)
	for i := range v {
		v[i] = 0.001
	}
	v[seed%VectorDimension] = 1.0
	return v
}

func TestDocumentRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	doc := &Document{
		ID:      uuid.New().String(),
		Title:   "Logo Usage",
		Content: "# Logo Usage\n\nClear space equals the height of the mark.",
		Metadata: DocumentMetadata{
			Path:      "guidelines/logo-usage.md",
			Category:  "guidelines",
			Summary:   "Rules for logo placement and clear space",
			Tags:      []string{"logo", "clear space"},
			IndexedAt: now,
		},
	}

	err := store.UpsertDocument(ctx, doc)
	require.NoError(t, err, "Failed to upsert document")

	retrieved, err := store.GetDocument(ctx, doc.ID)
	require.NoError(t, err, "Failed to get document")

	assert.Equal(t, doc.ID, retrieved.ID)
	assert.Equal(t, doc.Title, retrieved.Title)
	assert.Equal(t, doc.Content, retrieved.Content)
	assert.Equal(t, doc.Metadata.Path, retrieved.Metadata.Path)
	assert.Equal(t, doc.Metadata.Category, retrieved.Metadata.Category)
	assert.Equal(t, doc.Metadata.Summary, retrieved.Metadata.Summary)
	assert.ElementsMatch(t, doc.Metadata.Tags, retrieved.Metadata.Tags)
	assert.WithinDuration(t, doc.Metadata.IndexedAt, retrieved.Metadata.IndexedAt, time.Second)
}

func TestDocumentNotFound(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	_, err := store.GetDocument(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestGetDocumentByPath(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	path := "voice/tone.md"

	doc := &Document{
		ID:      uuid.New().String(),
		Title:   "Tone of Voice",
		Content: "# Tone of Voice\n\nPlain, direct, warm.",
		Metadata: DocumentMetadata{
			Path:      path,
			Category:  "voice",
			IndexedAt: time.Now().UTC(),
		},
	}
	require.NoError(t, store.UpsertDocument(ctx, doc))

	result, err := store.GetDocumentByPath(ctx, path)
	require.NoError(t, err, "Failed to get document by path")
	assert.Equal(t, doc.ID, result.ID)
	assert.Equal(t, doc.Content, result.Content)

	_, err = store.GetDocumentByPath(ctx, "nonexistent/path.md")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestListDocumentPaths(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	paths := []string{"docs/a.md", "docs/b.md", "docs/c.md"}

	for _, path := range paths {
		doc := &Document{
			ID:      uuid.New().String(),
			Title:   path,
			Content: "# Document at " + path,
			Metadata: DocumentMetadata{
				Path:      path,
				IndexedAt: time.Now().UTC(),
			},
		}
		require.NoError(t, store.UpsertDocument(ctx, doc), "Failed to upsert document at %s", path)
	}

	// Wait for Qdrant to index (eventual consistency)
	time.Sleep(100 * time.Millisecond)

	result, err := store.ListDocumentPaths(ctx)
	require.NoError(t, err, "Failed to list document paths")
	assert.Equal(t, paths, result, "Paths should be returned in sorted order")
}

func TestSemanticSearchRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	docID := uuid.New().String()

	chunk := &Chunk{
		ID:               uuid.New().String(),
		DocumentID:       docID,
		ChunkIndex:       0,
		Heading:          "Primary Palette",
		HeadingHierarchy: []string{"Colors", "Primary Palette"},
		Content:          "The primary palette is navy, white, and coral.",
		TokenCount:       12,
		Category:         "visual-identity",
		Embedding:        testVector(1),
	}
	require.NoError(t, store.UpsertChunks(ctx, []*Chunk{chunk}))

	time.Sleep(100 * time.Millisecond)

	results, err := store.SemanticSearch(ctx, search.SearchParams{
		Source:    search.SourceDocuments,
		Vector:    testVector(1),
		Limit:     10,
		Threshold: 0.5,
	})
	require.NoError(t, err, "Failed to search")
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, chunk.ID, got.ID)
	assert.Equal(t, search.SourceDocuments, got.Source)
	assert.Equal(t, search.MatchSemantic, got.MatchType)
	assert.Greater(t, got.Similarity, 0.9, "identical vectors should score near 1")
	require.NotNil(t, got.Document)
	assert.Equal(t, docID, got.Document.DocumentID)
	assert.Equal(t, chunk.Content, got.Document.Content)
	assert.Equal(t, chunk.HeadingHierarchy, got.Document.HeadingHierarchy)
}

func TestKeywordSearch(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	chunks := []*Chunk{
		{
			ID:         uuid.New().String(),
			DocumentID: uuid.New().String(),
			Content:    "Logo clear space must equal the cap height.",
			Embedding:  testVector(1),
		},
		{
			ID:         uuid.New().String(),
			DocumentID: uuid.New().String(),
			Content:    "Typography defaults to the Inter family.",
			Embedding:  testVector(2),
		},
	}
	require.NoError(t, store.UpsertChunks(ctx, chunks))

	time.Sleep(100 * time.Millisecond)

	results, err := store.KeywordSearch(ctx, search.SearchParams{
		Source: search.SourceDocuments,
		Query:  "logo clear space",
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, chunks[0].ID, results[0].ID)
	assert.Equal(t, search.MatchKeyword, results[0].MatchType)
	assert.Equal(t, 1, results[0].KeywordRank)
}

func TestHybridSearchMarksBothMatches(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	chunk := &Chunk{
		ID:         uuid.New().String(),
		DocumentID: uuid.New().String(),
		Content:    "Logo placement rules for dark backgrounds.",
		Embedding:  testVector(1),
	}
	require.NoError(t, store.UpsertChunks(ctx, []*Chunk{chunk}))

	time.Sleep(100 * time.Millisecond)

	results, err := store.HybridSearch(ctx, search.SearchParams{
		Source:         search.SourceDocuments,
		Query:          "logo placement",
		Vector:         testVector(1),
		Limit:          10,
		SemanticWeight: 0.7,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, search.MatchBoth, results[0].MatchType)
	assert.Greater(t, results[0].RRFScore, 0.0)
	assert.Equal(t, results[0].RRFScore, results[0].Similarity)
}

func TestBrandScoping(t *testing.T) {
	storeA := setupTestStore(t)
	defer storeA.Close()
	storeB := setupTestStore(t)
	defer storeB.Close()

	ctx := context.Background()

	chunk := &Chunk{
		ID:         uuid.New().String(),
		DocumentID: uuid.New().String(),
		Content:    "Brand A private guidance.",
		Embedding:  testVector(1),
	}
	require.NoError(t, storeA.UpsertChunks(ctx, []*Chunk{chunk}))

	time.Sleep(100 * time.Millisecond)

	params := search.SearchParams{
		Source: search.SourceDocuments,
		Vector: testVector(1),
		Limit:  10,
	}
	resultsA, err := storeA.SemanticSearch(ctx, params)
	require.NoError(t, err)
	assert.Len(t, resultsA, 1)

	resultsB, err := storeB.SemanticSearch(ctx, params)
	require.NoError(t, err)
	assert.Empty(t, resultsB, "another brand must not see the data")
}

func TestFindSimilar(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	docID := uuid.New().String()
	otherDocID := uuid.New().String()

	source := &Chunk{
		ID:         uuid.New().String(),
		DocumentID: docID,
		Content:    "Use coral for accents only.",
		Embedding:  testVector(1),
	}
	sibling := &Chunk{
		ID:         uuid.New().String(),
		DocumentID: docID,
		Content:    "Coral pairs with navy in print.",
		Embedding:  testVector(1),
	}
	other := &Chunk{
		ID:         uuid.New().String(),
		DocumentID: otherDocID,
		Content:    "Accent colors on the web follow print.",
		Embedding:  testVector(1),
	}
	require.NoError(t, store.UpsertChunks(ctx, []*Chunk{source, sibling, other}))

	time.Sleep(100 * time.Millisecond)

	// Without document exclusion both neighbors come back, never the source.
	results, err := store.FindSimilar(ctx, search.SimilarParams{
		ChunkID: source.ID,
		Limit:   10,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, c := range results {
		assert.NotEqual(t, source.ID, c.ID, "source chunk must not be its own neighbor")
	}

	// Same-document exclusion drops the sibling.
	results, err = store.FindSimilar(ctx, search.SimilarParams{
		ChunkID:             source.ID,
		Limit:               10,
		ExcludeSameDocument: true,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, other.ID, results[0].ID)

	// Explicit exclusions are honored too.
	results, err = store.FindSimilar(ctx, search.SimilarParams{
		ChunkID:    source.ID,
		Limit:      10,
		ExcludeIDs: []string{other.ID},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, sibling.ID, results[0].ID)
}

func TestFindSimilarUnknownChunk(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	_, err := store.FindSimilar(context.Background(), search.SimilarParams{
		ChunkID: uuid.New().String(),
		Limit:   5,
	})
	assert.ErrorIs(t, err, ErrChunkNotFound)
}

func TestFacets(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	assets := []*Asset{
		{ID: uuid.New().String(), Filename: "logo-dark.svg", Category: "logo", Variant: "dark", Description: "Dark logo", CreatedAt: time.Now(), Embedding: testVector(1)},
		{ID: uuid.New().String(), Filename: "logo-light.svg", Category: "logo", Variant: "light", Description: "Light logo", CreatedAt: time.Now(), Embedding: testVector(2)},
		{ID: uuid.New().String(), Filename: "banner.png", Category: "banner", Variant: "light", Description: "Banner", CreatedAt: time.Now(), Embedding: testVector(3)},
	}
	for _, a := range assets {
		require.NoError(t, store.UpsertAsset(ctx, a))
	}

	time.Sleep(100 * time.Millisecond)

	facets, err := store.Facets(ctx, search.SourceAssets)
	require.NoError(t, err)

	counts := map[string]int{}
	for _, f := range facets {
		counts[f.Type+"/"+f.Value] = f.Count
	}
	assert.Equal(t, 2, counts["category/logo"])
	assert.Equal(t, 1, counts["category/banner"])
	assert.Equal(t, 2, counts["variant/light"])
	assert.Equal(t, 1, counts["variant/dark"])
}

func TestChatSearch(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	chat := &Chat{
		ID:        uuid.New().String(),
		Title:     "Campaign kickoff",
		Content:   "We agreed the campaign uses the coral accent.",
		CreatedAt: time.Now(),
		Embedding: testVector(1),
	}
	require.NoError(t, store.UpsertChat(ctx, chat))

	time.Sleep(100 * time.Millisecond)

	results, err := store.SemanticSearch(ctx, search.SearchParams{
		Source: search.SourceChats,
		Vector: testVector(1),
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, search.SourceChats, results[0].Source)
	require.NotNil(t, results[0].Chat)
	assert.Equal(t, chat.Title, results[0].Chat.Title)
}

func TestCategoryFilter(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	chunks := []*Chunk{
		{ID: uuid.New().String(), DocumentID: uuid.New().String(), Content: "Voice guidance.", Category: "voice", Embedding: testVector(1)},
		{ID: uuid.New().String(), DocumentID: uuid.New().String(), Content: "Legal guidance.", Category: "legal", Embedding: testVector(1)},
	}
	require.NoError(t, store.UpsertChunks(ctx, chunks))

	time.Sleep(100 * time.Millisecond)

	results, err := store.SemanticSearch(ctx, search.SearchParams{
		Source:  search.SourceDocuments,
		Vector:  testVector(1),
		Limit:   10,
		Filters: search.Filters{Categories: []string{"voice"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, chunks[0].ID, results[0].ID)
}

func TestDimensionValidation(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	wrongChunk := &Chunk{
		ID:         uuid.New().String(),
		DocumentID: uuid.New().String(),
		Content:    "Wrong dimension test",
		Embedding:  make([]float32, 512),
	}
	err := store.UpsertChunks(ctx, []*Chunk{wrongChunk})
	assert.ErrorIs(t, err, ErrDimensionMismatch, "Should reject wrong embedding dimension")

	_, err = store.SemanticSearch(ctx, search.SearchParams{
		Source: search.SourceDocuments,
		Vector: make([]float32, 512),
		Limit:  10,
	})
	assert.ErrorIs(t, err, ErrDimensionMismatch, "Should reject wrong query dimension")
}

func TestBatchChunkUpsert(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	docID := uuid.New().String()

	// More than one batch of 100
	chunks := make([]*Chunk, 250)
	for i := range chunks {
		chunks[i] = &Chunk{
			ID:         uuid.New().String(),
			DocumentID: docID,
			ChunkIndex: i,
			Content:    "Chunk content",
			Embedding:  testVector(1),
		}
	}
	require.NoError(t, store.UpsertChunks(ctx, chunks), "Failed to upsert batch of chunks")

	time.Sleep(200 * time.Millisecond)

	results, err := store.SemanticSearch(ctx, search.SearchParams{
		Source: search.SourceDocuments,
		Vector: testVector(1),
		Limit:  300,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(results), 250, "Expected all chunks to be stored")
}
