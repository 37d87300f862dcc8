package search

import (
	"sort"

	"mnemo/internal/db"
	"mnemo/internal/embeddings"
	"mnemo/internal/models"
)

// DefaultMinFTSResults is the result count below which tiered search falls
// back to embedding + vector search.
const DefaultMinFTSResults = 3

// Weights for merging keyword and vector scores.
const (
	ftsWeight = 0.3
	vecWeight = 0.7
)

// MergeResults merges FTS5 and vector search results with weighted scoring,
// deduplicating by memory ID.
func MergeResults(ftsResults []models.SearchResult, vecResults []models.SearchResult, limit int) []models.SearchResult {
	normalizeScores(ftsResults)
	normalizeScores(vecResults)

	scores := make(map[string]*models.SearchResult)

	for _, r := range ftsResults {
		result := r
		result.Score = ftsWeight * r.Score
		scores[r.ID] = &result
	}

	for _, r := range vecResults {
		if existing, ok := scores[r.ID]; ok {
			existing.Score += vecWeight * r.Score
		} else {
			result := r
			result.Score = vecWeight * r.Score
			scores[r.ID] = &result
		}
	}

	ranked := make([]models.SearchResult, 0, len(scores))
	for _, r := range scores {
		ranked = append(ranked, *r)
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	if len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

// TieredSearch performs FTS-first search that only calls embed when FTS
// results are sparse.
func TieredSearch(store db.Store, provider embeddings.Provider, query string, limit int, minFTSResults int, project *string, sector *string) ([]models.SearchResult, error) {
	ftsResults, err := store.FTSSearch(query, limit*2, project, sector)
	if err != nil {
		return nil, err
	}

	normalizeScores(ftsResults)

	// Enough keyword hits: skip the embedding round-trip entirely.
	if len(ftsResults) >= minFTSResults || provider == nil {
		return capResults(ftsResults, limit), nil
	}

	queryVec, err := provider.Embed(query)
	if err != nil {
		// On any embedding error, return whatever FTS found
		return capResults(ftsResults, limit), nil
	}

	vecResults, err := store.VectorSearch(queryVec, limit*2, project, sector)
	if err != nil {
		return capResults(ftsResults, limit), nil
	}

	return MergeResults(ftsResults, vecResults, limit), nil
}

// HybridSearch runs FTS5 and vector search unconditionally and merges the
// results.
func HybridSearch(store db.Store, provider embeddings.Provider, query string, limit int, project *string, sector *string) ([]models.SearchResult, error) {
	ftsResults, err := store.FTSSearch(query, limit*2, project, sector)
	if err != nil {
		return nil, err
	}

	normalizeScores(ftsResults)

	if provider == nil {
		return capResults(ftsResults, limit), nil
	}

	queryVec, err := provider.Embed(query)
	if err != nil {
		return capResults(ftsResults, limit), nil
	}

	vecResults, err := store.VectorSearch(queryVec, limit*2, project, sector)
	if err != nil {
		return capResults(ftsResults, limit), nil
	}

	return MergeResults(ftsResults, vecResults, limit), nil
}

// normalizeScores scales scores to 0-1 in place.
func normalizeScores(results []models.SearchResult) {
	if len(results) == 0 {
		return
	}

	maxScore := results[0].Score
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}

	if maxScore > 0 {
		for i := range results {
			results[i].Score = results[i].Score / maxScore
		}
	}
}

func capResults(results []models.SearchResult, limit int) []models.SearchResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}
