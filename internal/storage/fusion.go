package storage

import (
	"sort"
	"strings"

	"github.com/brandkit/knowledge-server/internal/search"
)

// rrfK is the Reciprocal Rank Fusion smoothing constant.
const rrfK = 60.0

// fuseRRF combines the semantic and keyword result lists with weighted
// Reciprocal Rank Fusion: each candidate scores
// w/(k+semanticRank) + (1-w)/(k+keywordRank), with a missing rank
// contributing zero. The fused score is reported as both Similarity and
// RRFScore, so the caller's similarity sort yields the fused order.
func fuseRRF(semantic, keyword []search.Candidate, semanticWeight float64) []search.Candidate {
	type entry struct {
		candidate search.Candidate
		score     float64
		order     int
	}

	entries := make(map[string]*entry)
	ordered := make([]string, 0, len(semantic)+len(keyword))

	for i, c := range semantic {
		c.MatchType = search.MatchSemantic
		entries[c.ID] = &entry{
			candidate: c,
			score:     semanticWeight / (rrfK + float64(i+1)),
			order:     len(ordered),
		}
		ordered = append(ordered, c.ID)
	}

	for i, c := range keyword {
		rank := i + 1
		contribution := (1 - semanticWeight) / (rrfK + float64(rank))
		if e, ok := entries[c.ID]; ok {
			e.score += contribution
			e.candidate.MatchType = search.MatchBoth
			e.candidate.KeywordRank = rank
			continue
		}
		c.MatchType = search.MatchKeyword
		c.KeywordRank = rank
		entries[c.ID] = &entry{
			candidate: c,
			score:     contribution,
			order:     len(ordered),
		}
		ordered = append(ordered, c.ID)
	}

	fused := make([]*entry, 0, len(ordered))
	for _, id := range ordered {
		fused = append(fused, entries[id])
	}
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].score > fused[j].score
	})

	out := make([]search.Candidate, len(fused))
	for i, e := range fused {
		c := e.candidate
		c.Similarity = e.score
		c.RRFScore = e.score
		out[i] = c
	}
	return out
}

// keywordScore ranks a text against the query terms: coverage (fraction of
// query terms present) dominates, total occurrences break ties. Returns 0
// when no term matches.
func keywordScore(query, text string) float64 {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(text)

	matched := 0
	occurrences := 0
	for _, term := range terms {
		n := strings.Count(lower, term)
		if n > 0 {
			matched++
			occurrences += n
		}
	}
	if matched == 0 {
		return 0
	}

	coverage := float64(matched) / float64(len(terms))
	if occurrences > 20 {
		occurrences = 20
	}
	return coverage + float64(occurrences)/1000.0
}

func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()[]{}")
		if f != "" {
			terms = append(terms, f)
		}
	}
	return terms
}
