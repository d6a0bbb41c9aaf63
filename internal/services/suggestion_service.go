package services

import (
	"github.com/RenatoMoratti/finance-app/internal/database"
	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/logger"
	"github.com/RenatoMoratti/finance-app/internal/models"
	"github.com/RenatoMoratti/finance-app/internal/similarity"
	"github.com/RenatoMoratti/finance-app/internal/timefmt"
)

// DefaultSimilarityThreshold is the minimum fuzzy-match ratio for a verified
// description to count as a precedent.
const DefaultSimilarityThreshold = 0.88

// Suggestion resolution paths, in order of precedence.
const (
	SuggestionSourceDescription = "description"
	SuggestionSourceMapping     = "mapping"
)

// Suggestion proposes a user category for one unverified transaction.
type Suggestion struct {
	TransactionID string `json:"id"`
	Category      string `json:"suggested_category"`
	Subcategory   string `json:"suggested_subcategory,omitempty"`
	Source        string `json:"source"`
}

// SuggestionStats aggregates one suggestion run by resolution path.
type SuggestionStats struct {
	TotalCandidates int `json:"total_candidates"`
	ByDescription   int `json:"by_description"`
	ByMapping       int `json:"by_mapping"`
	NoMatch         int `json:"no_match"`
	Suggested       int `json:"suggested"`
	Persisted       int `json:"persisted"`
}

// SuggestionResult carries the stats plus the full suggestion list, so
// callers can preview before committing.
type SuggestionResult struct {
	Stats       SuggestionStats `json:"stats"`
	Suggestions []Suggestion    `json:"suggestions"`
}

// suggestionService proposes categories for unverified transactions based on
// the user's verified history, with a mapping-table fallback.
type suggestionService struct {
	src     database.Source
	matcher similarity.Matcher
}

// NewSuggestionService creates a new Suggester using the given matcher.
func NewSuggestionService(src database.Source, matcher similarity.Matcher) Suggester {
	return &suggestionService{src: src, matcher: matcher}
}

// trainEntry is one verified, user-categorized transaction description.
type trainEntry struct {
	norm        string
	category    string
	subcategory string
	modified    string
}

// catKey identifies one (category, subcategory) pair during aggregation.
type catKey struct {
	category    string
	subcategory string
}

// catScore accumulates the ranking signals for one candidate pair.
type catScore struct {
	count    int
	maxRatio float64
	latest   string
}

// Suggest runs the three-stage resolution for every unverified, non-ignored
// transaction: exact normalized-description match against verified history,
// then fuzzy match at or above threshold, then resolved mapping fallback.
//
// With persist set, suggestions are written only onto candidates that have
// no user category yet; an existing classification is never overwritten.
// Per-row persistence failures are logged and skipped, not fatal.
func (s *suggestionService) Suggest(threshold float64, persist bool) (*SuggestionResult, error) {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	db := s.src.DB()

	// Training set: verified transactions carrying a user category.
	var verified []models.Transaction
	err := db.
		Where("verified = ?", true).
		Where("user_category IS NOT NULL AND user_category != ''").
		Where("description IS NOT NULL AND description != ''").
		Find(&verified).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	exactIndex := make(map[string][]trainEntry)
	training := make([]trainEntry, 0, len(verified))
	for _, v := range verified {
		e := trainEntry{
			norm:        similarity.NormalizeDescription(v.Description),
			category:    v.UserCategory,
			subcategory: v.UserSubcategory,
			modified:    v.ModificationDate,
		}
		exactIndex[e.norm] = append(exactIndex[e.norm], e)
		training = append(training, e)
	}

	// Resolved mappings: (source category, type) and (source category, "").
	var mappings []models.CategoryMapping
	err = db.
		Where("needs_classification = ?", false).
		Where("mapped_user_category IS NOT NULL AND mapped_user_category != ''").
		Find(&mappings).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	mappingIndex := make(map[catKey]catKey, len(mappings))
	for _, m := range mappings {
		mappingIndex[catKey{category: m.SourceCategory, subcategory: m.TransactionType}] = catKey{
			category:    m.MappedUserCategory,
			subcategory: m.MappedUserSubcategory,
		}
	}

	// Candidates: unverified and not ignored.
	var candidates []models.Transaction
	err = db.
		Where("verified = ?", false).
		Where("ignored = ?", false).
		Find(&candidates).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &SuggestionResult{
		Stats:       SuggestionStats{TotalCandidates: len(candidates)},
		Suggestions: []Suggestion{},
	}

	for _, cand := range candidates {
		norm := similarity.NormalizeDescription(cand.Description)
		var pick *catKey
		source := ""

		if entries, ok := exactIndex[norm]; ok && norm != "" {
			pick = bestExact(entries)
			source = SuggestionSourceDescription
		} else if norm != "" {
			pick = s.bestFuzzy(norm, training, threshold)
			if pick != nil {
				source = SuggestionSourceDescription
			}
		}

		if pick == nil && cand.Category != "" {
			if mapped, ok := mappingIndex[catKey{category: cand.Category, subcategory: string(cand.Type)}]; ok {
				pick = &mapped
				source = SuggestionSourceMapping
			} else if mapped, ok := mappingIndex[catKey{category: cand.Category, subcategory: ""}]; ok {
				pick = &mapped
				source = SuggestionSourceMapping
			}
		}

		if pick == nil {
			result.Stats.NoMatch++
			continue
		}

		switch source {
		case SuggestionSourceDescription:
			result.Stats.ByDescription++
		case SuggestionSourceMapping:
			result.Stats.ByMapping++
		}
		result.Stats.Suggested++
		result.Suggestions = append(result.Suggestions, Suggestion{
			TransactionID: cand.ID,
			Category:      pick.category,
			Subcategory:   pick.subcategory,
			Source:        source,
		})

		if persist && cand.UserCategory == "" {
			err := db.Model(&models.Transaction{}).Where("id = ?", cand.ID).Updates(map[string]interface{}{
				"user_category":     pick.category,
				"user_subcategory":  pick.subcategory,
				"modification_date": timefmt.Now(),
			}).Error
			if err != nil {
				logger.Get().Warnw("could not persist suggestion", "transaction_id", cand.ID, "error", err)
				continue
			}
			result.Stats.Persisted++
		}
	}

	return result, nil
}

// bestExact ranks exact-match precedents by occurrence count, then by most
// recent modification.
func bestExact(entries []trainEntry) *catKey {
	scores := make(map[catKey]*catScore)
	for _, e := range entries {
		k := catKey{category: e.category, subcategory: e.subcategory}
		sc, ok := scores[k]
		if !ok {
			sc = &catScore{}
			scores[k] = sc
		}
		sc.count++
		if e.modified > sc.latest {
			sc.latest = e.modified
		}
	}
	return pickBest(scores)
}

// bestFuzzy ranks fuzzy precedents at or above threshold by count, then max
// similarity, then recency.
func (s *suggestionService) bestFuzzy(norm string, training []trainEntry, threshold float64) *catKey {
	scores := make(map[catKey]*catScore)
	for _, e := range training {
		if e.norm == "" {
			continue
		}
		ratio := s.matcher.Ratio(norm, e.norm)
		if ratio < threshold {
			continue
		}
		k := catKey{category: e.category, subcategory: e.subcategory}
		sc, ok := scores[k]
		if !ok {
			sc = &catScore{}
			scores[k] = sc
		}
		sc.count++
		if ratio > sc.maxRatio {
			sc.maxRatio = ratio
		}
		if e.modified > sc.latest {
			sc.latest = e.modified
		}
	}
	return pickBest(scores)
}

// pickBest selects the highest-ranked pair: count desc, similarity desc,
// recency desc. Canonical timestamps sort lexicographically.
func pickBest(scores map[catKey]*catScore) *catKey {
	var best *catKey
	var bestScore *catScore
	for k := range scores {
		k := k
		sc := scores[k]
		if best == nil ||
			sc.count > bestScore.count ||
			(sc.count == bestScore.count && sc.maxRatio > bestScore.maxRatio) ||
			(sc.count == bestScore.count && sc.maxRatio == bestScore.maxRatio && sc.latest > bestScore.latest) {
			best = &k
			bestScore = sc
		}
	}
	return best
}
