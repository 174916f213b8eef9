// Package storage implements the brand-scoped knowledge store over Qdrant:
// ingestion-side upserts plus the hybrid/semantic/keyword/find-similar/facet
// query surface the search pipeline depends on.
package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"

	"github.com/brandkit/knowledge-server/internal/search"
)

// Payload discriminator values. Parent documents are excluded from every
// search path by source type.
const (
	typeParent = "parent"
)

// Store wraps the Qdrant client with connection management and brand scoping.
// Every query it issues is confined to one brand's knowledge base.
type Store struct {
	client  *qdrant.Client
	host    string
	port    int
	brandID string
}

// NewStore creates a brand-scoped Qdrant store with health validation.
// It performs a health check with retry on startup and fails fast if Qdrant
// is unreachable.
func NewStore(host string, port int, brandID string) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	store := &Store{
		client:  client,
		host:    host,
		port:    port,
		brandID: brandID,
	}

	ctx := context.Background()
	if err := store.healthCheckWithRetry(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	return store, nil
}

// healthCheckWithRetry performs a health check with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *Store) healthCheckWithRetry(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(exponentialBackoff, ctx))
}

// Health performs a single health check against Qdrant.
func (s *Store) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollection ensures the knowledge collection exists with proper
// configuration: 1536-dimension cosine vectors plus the payload indexes the
// filter dimensions depend on. Idempotent.
func (s *Store) EnsureCollection(ctx context.Context) error {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, name := range collections {
		if name == CollectionName {
			return nil
		}
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: CollectionName,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			VectorName: {
				Size:     VectorDimension,
				Distance: qdrant.Distance_Cosine,
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	if err := s.createPayloadIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create payload indexes: %w", err)
	}
	return nil
}

// createPayloadIndexes creates indexes for the filterable fields. Without
// these, filtered queries degrade badly at scale.
func (s *Store) createPayloadIndexes(ctx context.Context) error {
	keyword := []string{
		"brand_id",
		"source_type",
		"category",
		"variant",
		"document_id",
		"path",
	}
	for _, field := range keyword {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: CollectionName,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to create index for field %s: %w", field, err)
		}
	}

	// Date-range filters need a numeric index; keyword search needs full-text.
	_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: CollectionName,
		FieldName:      "created_at",
		FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to create index for field created_at: %w", err)
	}
	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: CollectionName,
		FieldName:      "content",
		FieldType:      qdrant.FieldType_FieldTypeText.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to create index for field content: %w", err)
	}
	return nil
}

// ClearCollection deletes all points and recreates the collection.
func (s *Store) ClearCollection(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, CollectionName); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return s.EnsureCollection(ctx)
}

// Close closes the Qdrant client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// upsertWithRetry performs an upsert with exponential backoff retry.
func (s *Store) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: CollectionName,
			Points:         points,
		})
		return err
	}, backoff.WithContext(exponentialBackoff, ctx))
}

// UpsertDocument stores a parent document. Parent documents carry no vector;
// they exist for full-content retrieval and are invisible to search.
func (s *Store) UpsertDocument(ctx context.Context, doc *Document) error {
	tags := make([]interface{}, len(doc.Metadata.Tags))
	for i, tag := range doc.Metadata.Tags {
		tags[i] = tag
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(doc.ID),
		Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{}),
		Payload: qdrant.NewValueMap(map[string]any{
			"brand_id":    s.brandID,
			"source_type": typeParent,
			"title":       doc.Title,
			"content":     doc.Content,
			"path":        doc.Metadata.Path,
			"category":    doc.Metadata.Category,
			"summary":     doc.Metadata.Summary,
			"tags":        tags,
			"indexed_at":  doc.Metadata.IndexedAt.Format(time.RFC3339),
			"created_at":  doc.Metadata.IndexedAt.Unix(),
		}),
	}
	return s.upsertWithRetry(ctx, []*qdrant.PointStruct{point})
}

// UpsertChunks stores document chunks with embeddings, batched in groups of
// 100.
func (s *Store) UpsertChunks(ctx context.Context, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for i, chunk := range chunks {
		if len(chunk.Embedding) != VectorDimension {
			return fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(chunk.Embedding), VectorDimension)
		}
	}

	batchSize := 100
	for i := 0; i < len(chunks); i += batchSize {
		end := min(i+batchSize, len(chunks))
		batch := chunks[i:end]
		points := make([]*qdrant.PointStruct, len(batch))

		for j, chunk := range batch {
			hierarchy := make([]interface{}, len(chunk.HeadingHierarchy))
			for k, h := range chunk.HeadingHierarchy {
				hierarchy[k] = h
			}
			points[j] = &qdrant.PointStruct{
				Id: qdrant.NewIDUUID(chunk.ID),
				Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
					VectorName: qdrant.NewVector(chunk.Embedding...),
				}),
				Payload: qdrant.NewValueMap(map[string]any{
					"brand_id":          s.brandID,
					"source_type":       string(search.SourceDocuments),
					"document_id":       chunk.DocumentID,
					"chunk_index":       chunk.ChunkIndex,
					"heading":           chunk.Heading,
					"heading_hierarchy": hierarchy,
					"content":           chunk.Content,
					"token_count":       chunk.TokenCount,
					"category":          chunk.Category,
					"created_at":        time.Now().Unix(),
				}),
			}
		}

		if err := s.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// UpsertChat stores one conversation-history entry with its embedding.
func (s *Store) UpsertChat(ctx context.Context, chat *Chat) error {
	if len(chat.Embedding) != VectorDimension {
		return fmt.Errorf("%w: chat has %d dimensions, expected %d",
			ErrDimensionMismatch, len(chat.Embedding), VectorDimension)
	}
	point := &qdrant.PointStruct{
		Id: qdrant.NewIDUUID(chat.ID),
		Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
			VectorName: qdrant.NewVector(chat.Embedding...),
		}),
		Payload: qdrant.NewValueMap(map[string]any{
			"brand_id":    s.brandID,
			"source_type": string(search.SourceChats),
			"title":       chat.Title,
			"content":     chat.Content,
			"created_at":  chat.CreatedAt.Unix(),
		}),
	}
	return s.upsertWithRetry(ctx, []*qdrant.PointStruct{point})
}

// UpsertAsset stores one brand-asset record with its description embedding.
func (s *Store) UpsertAsset(ctx context.Context, asset *Asset) error {
	if len(asset.Embedding) != VectorDimension {
		return fmt.Errorf("%w: asset has %d dimensions, expected %d",
			ErrDimensionMismatch, len(asset.Embedding), VectorDimension)
	}
	point := &qdrant.PointStruct{
		Id: qdrant.NewIDUUID(asset.ID),
		Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
			VectorName: qdrant.NewVector(asset.Embedding...),
		}),
		Payload: qdrant.NewValueMap(map[string]any{
			"brand_id":    s.brandID,
			"source_type": string(search.SourceAssets),
			"filename":    asset.Filename,
			"category":    asset.Category,
			"variant":     asset.Variant,
			"description": asset.Description,
			"content":     asset.Description,
			"created_at":  asset.CreatedAt.Unix(),
		}),
	}
	return s.upsertWithRetry(ctx, []*qdrant.PointStruct{point})
}

// GetDocument retrieves a parent document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	result, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: CollectionName,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(id)},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if len(result) == 0 {
		return nil, ErrDocumentNotFound
	}

	payload := result[0].Payload
	if payload["source_type"].GetStringValue() != typeParent {
		return nil, ErrDocumentNotFound
	}
	return documentFromPayload(id, payload), nil
}

// GetDocumentByPath retrieves a parent document by its path.
func (s *Store) GetDocumentByPath(ctx context.Context, path string) (*Document, error) {
	results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: CollectionName,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("brand_id", s.brandID),
				qdrant.NewMatch("source_type", typeParent),
				qdrant.NewMatch("path", path),
			},
		},
		Limit:       qdrant.PtrOf(uint32(1)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query document by path: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrDocumentNotFound
	}
	return documentFromPayload(results[0].Id.GetUuid(), results[0].Payload), nil
}

// ListDocumentPaths returns all document paths in the brand's index, sorted.
func (s *Store) ListDocumentPaths(ctx context.Context) ([]string, error) {
	var paths []string
	var offset *qdrant.PointId
	batchSize := uint32(100)

	for {
		results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: CollectionName,
			Filter: &qdrant.Filter{
				Must: []*qdrant.Condition{
					qdrant.NewMatch("brand_id", s.brandID),
					qdrant.NewMatch("source_type", typeParent),
				},
			},
			Limit:       qdrant.PtrOf(batchSize),
			Offset:      offset,
			WithPayload: qdrant.NewWithPayloadInclude("path"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scroll documents: %w", err)
		}

		for _, result := range results {
			if path := result.Payload["path"].GetStringValue(); path != "" {
				paths = append(paths, path)
			}
		}

		if uint32(len(results)) < batchSize {
			break
		}
		offset = results[len(results)-1].Id
	}

	sort.Strings(paths)
	return paths, nil
}

// SemanticSearch runs a vector similarity query for one source type.
func (s *Store) SemanticSearch(ctx context.Context, p search.SearchParams) ([]search.Candidate, error) {
	return s.semanticQuery(ctx, p, p.Limit)
}

// KeywordSearch runs a full-text query for one source type. Qdrant's text
// match narrows the candidate set; ranking is by term coverage and
// occurrence count over the matched contents.
func (s *Store) KeywordSearch(ctx context.Context, p search.SearchParams) ([]search.Candidate, error) {
	return s.keywordQuery(ctx, p, p.Limit)
}

// HybridSearch runs the semantic and keyword legs and fuses them with
// weighted Reciprocal Rank Fusion (k=60). The caller's SemanticWeight passes
// through unchanged.
func (s *Store) HybridSearch(ctx context.Context, p search.SearchParams) ([]search.Candidate, error) {
	semantic, err := s.semanticQuery(ctx, p, p.Limit)
	if err != nil {
		return nil, err
	}
	keyword, err := s.keywordQuery(ctx, p, p.Limit)
	if err != nil {
		return nil, err
	}

	fused := fuseRRF(semantic, keyword, p.SemanticWeight)
	if len(fused) > p.Limit {
		fused = fused[:p.Limit]
	}
	return fused, nil
}

// FindSimilar returns the nearest neighbors of a stored chunk, keyed by its
// stored vector. With ExcludeSameDocument set, no result shares the source
// chunk's parent document.
func (s *Store) FindSimilar(ctx context.Context, p search.SimilarParams) ([]search.Candidate, error) {
	source, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: CollectionName,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(p.ChunkID)},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get source chunk: %w", err)
	}
	if len(source) == 0 {
		return nil, ErrChunkNotFound
	}
	documentID := source[0].Payload["document_id"].GetStringValue()

	mustNot := []*qdrant.Condition{
		qdrant.NewHasID(qdrant.NewIDUUID(p.ChunkID)),
	}
	if p.ExcludeSameDocument && documentID != "" {
		mustNot = append(mustNot, qdrant.NewMatch("document_id", documentID))
	}
	if len(p.ExcludeIDs) > 0 {
		ids := make([]*qdrant.PointId, len(p.ExcludeIDs))
		for i, id := range p.ExcludeIDs {
			ids[i] = qdrant.NewIDUUID(id)
		}
		mustNot = append(mustNot, qdrant.NewHasID(ids...))
	}

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("brand_id", s.brandID),
			qdrant.NewMatch("source_type", string(search.SourceDocuments)),
		},
		MustNot: mustNot,
	}

	vectorName := VectorName
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: CollectionName,
		Query:          qdrant.NewQueryID(qdrant.NewIDUUID(p.ChunkID)),
		Using:          &vectorName,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(p.Limit)),
		ScoreThreshold: qdrant.PtrOf(float32(p.Threshold)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find similar chunks: %w", err)
	}

	candidates := make([]search.Candidate, 0, len(results))
	for _, result := range results {
		c := candidateFromPayload(result.Id.GetUuid(), result.Payload)
		c.Similarity = float64(result.Score)
		c.MatchType = search.MatchSemantic
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// Facets aggregates category and variant counts for one source type using
// Qdrant's facet API.
func (s *Store) Facets(ctx context.Context, source search.SourceType) ([]search.Facet, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("brand_id", s.brandID),
			qdrant.NewMatch("source_type", string(source)),
		},
	}

	var facets []search.Facet
	for _, key := range []string{"category", "variant"} {
		hits, err := s.client.Facet(ctx, &qdrant.FacetCounts{
			CollectionName: CollectionName,
			Key:            key,
			Filter:         filter,
			Limit:          qdrant.PtrOf(uint64(100)),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to facet %s: %w", key, err)
		}
		for _, hit := range hits {
			value := hit.GetValue().GetStringValue()
			if value == "" {
				continue
			}
			facets = append(facets, search.Facet{
				Type:  key,
				Value: value,
				Count: int(hit.GetCount()),
			})
		}
	}
	return facets, nil
}

// semanticQuery is the vector leg shared by semantic and hybrid search.
func (s *Store) semanticQuery(ctx context.Context, p search.SearchParams, limit int) ([]search.Candidate, error) {
	if len(p.Vector) != VectorDimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(p.Vector), VectorDimension)
	}

	vectorName := VectorName
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: CollectionName,
		Query:          qdrant.NewQuery(p.Vector...),
		Using:          &vectorName,
		Filter:         s.buildFilter(p.Source, p.Filters),
		Limit:          qdrant.PtrOf(uint64(limit)),
		ScoreThreshold: qdrant.PtrOf(float32(p.Threshold)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", p.Source, err)
	}

	candidates := make([]search.Candidate, 0, len(results))
	for _, result := range results {
		c := candidateFromPayload(result.Id.GetUuid(), result.Payload)
		c.Similarity = float64(result.Score)
		c.MatchType = search.MatchSemantic
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// keywordQuery is the full-text leg shared by keyword and hybrid search.
func (s *Store) keywordQuery(ctx context.Context, p search.SearchParams, limit int) ([]search.Candidate, error) {
	filter := s.buildFilter(p.Source, p.Filters)
	filter.Must = append(filter.Must, qdrant.NewMatchText("content", p.Query))

	// Over-scroll so local ranking has material to order.
	scrollLimit := limit * 4
	if scrollLimit > 256 {
		scrollLimit = 256
	}
	results, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: CollectionName,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint32(scrollLimit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to keyword search %s: %w", p.Source, err)
	}

	type scored struct {
		candidate search.Candidate
		score     float64
	}
	matches := make([]scored, 0, len(results))
	for _, result := range results {
		c := candidateFromPayload(result.Id.GetUuid(), result.Payload)
		score := keywordScore(p.Query, c.DisplayText())
		if score <= 0 {
			continue
		}
		matches = append(matches, scored{candidate: c, score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	candidates := make([]search.Candidate, len(matches))
	for i, m := range matches {
		c := m.candidate
		c.Similarity = m.score
		c.MatchType = search.MatchKeyword
		c.KeywordRank = i + 1
		candidates[i] = c
	}
	return candidates, nil
}

// buildFilter assembles the brand + source scope plus the request filters.
// Dimensions AND together; values within a dimension OR together.
func (s *Store) buildFilter(source search.SourceType, f search.Filters) *qdrant.Filter {
	must := []*qdrant.Condition{
		qdrant.NewMatch("brand_id", s.brandID),
		qdrant.NewMatch("source_type", string(source)),
	}
	if len(f.Categories) > 0 {
		must = append(must, qdrant.NewMatchKeywords("category", f.Categories...))
	}
	if len(f.Variants) > 0 {
		must = append(must, qdrant.NewMatchKeywords("variant", f.Variants...))
	}
	if len(f.DocumentIDs) > 0 {
		must = append(must, qdrant.NewMatchKeywords("document_id", f.DocumentIDs...))
	}
	if f.DateFrom != nil || f.DateTo != nil {
		r := &qdrant.Range{}
		if f.DateFrom != nil {
			r.Gte = qdrant.PtrOf(float64(f.DateFrom.Unix()))
		}
		if f.DateTo != nil {
			r.Lte = qdrant.PtrOf(float64(f.DateTo.Unix()))
		}
		must = append(must, qdrant.NewRange("created_at", r))
	}

	var mustNot []*qdrant.Condition
	if len(f.ExcludeIDs) > 0 {
		ids := make([]*qdrant.PointId, len(f.ExcludeIDs))
		for i, id := range f.ExcludeIDs {
			ids[i] = qdrant.NewIDUUID(id)
		}
		mustNot = append(mustNot, qdrant.NewHasID(ids...))
	}

	return &qdrant.Filter{Must: must, MustNot: mustNot}
}

// candidateFromPayload maps a stored point to a search candidate, switching
// on the source_type discriminator.
func candidateFromPayload(id string, payload map[string]*qdrant.Value) search.Candidate {
	c := search.Candidate{ID: id}
	switch payload["source_type"].GetStringValue() {
	case string(search.SourceChats):
		c.Source = search.SourceChats
		c.Chat = &search.ChatResult{
			Title:   payload["title"].GetStringValue(),
			Content: payload["content"].GetStringValue(),
		}
	case string(search.SourceAssets):
		c.Source = search.SourceAssets
		c.Asset = &search.AssetResult{
			Filename:    payload["filename"].GetStringValue(),
			Category:    payload["category"].GetStringValue(),
			Variant:     payload["variant"].GetStringValue(),
			Description: payload["description"].GetStringValue(),
		}
	default:
		var hierarchy []string
		if list := payload["heading_hierarchy"].GetListValue(); list != nil {
			for _, v := range list.Values {
				hierarchy = append(hierarchy, v.GetStringValue())
			}
		}
		c.Source = search.SourceDocuments
		c.Document = &search.DocumentResult{
			DocumentID:       payload["document_id"].GetStringValue(),
			HeadingHierarchy: hierarchy,
			Content:          payload["content"].GetStringValue(),
		}
	}
	return c
}

// documentFromPayload maps a stored parent point to a Document.
func documentFromPayload(id string, payload map[string]*qdrant.Value) *Document {
	indexedAt, err := time.Parse(time.RFC3339, payload["indexed_at"].GetStringValue())
	if err != nil {
		indexedAt = time.Time{}
	}

	var tags []string
	if list := payload["tags"].GetListValue(); list != nil {
		for _, v := range list.Values {
			tags = append(tags, v.GetStringValue())
		}
	}

	return &Document{
		ID:      id,
		Title:   payload["title"].GetStringValue(),
		Content: payload["content"].GetStringValue(),
		Metadata: DocumentMetadata{
			Path:      payload["path"].GetStringValue(),
			Category:  payload["category"].GetStringValue(),
			Summary:   payload["summary"].GetStringValue(),
			Tags:      tags,
			IndexedAt: indexedAt,
		},
	}
}
