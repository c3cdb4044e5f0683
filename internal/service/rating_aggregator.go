package service

import (
	"fmt"
	"math"

	"github.com/noah-isme/perf-review-api/internal/models"
	appErrors "github.com/noah-isme/perf-review-api/pkg/errors"
)

// KRAScore is one KRA's contribution to the composite rating.
type KRAScore struct {
	KRAID          string  `json:"kra_id"`
	KRAName        string  `json:"kra_name"`
	Weightage      int     `json:"weightage"`
	WeightedRating float64 `json:"weighted_rating"`
}

// ScoreSummary is the result of aggregating one submission's ratings.
type ScoreSummary struct {
	FinalScore float64    `json:"final_score"`
	Breakdown  []KRAScore `json:"breakdown"`
}

// roundHalfEven rounds to two decimal places, ties to even.
func roundHalfEven(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// WeightedScore combines per-KRA ratings into one weighted composite score.
// Ratings for the same KRA (one per KPI) are averaged first; each KRA then
// contributes mean × weightage / 100, rounded half-to-even to two decimals.
// The final score is the plain sum of contributions. The breakdown follows
// the order of the weightage list. A rating against a KRA missing from the
// weightage set fails loudly: skipping it would silently under-weight the
// composite.
func WeightedScore(reviews []models.Review, weightages []models.KRAWeightage) (*ScoreSummary, error) {
	summary := &ScoreSummary{Breakdown: []KRAScore{}}
	if len(reviews) == 0 {
		return summary, nil
	}

	sums := make(map[string]int, len(reviews))
	counts := make(map[string]int, len(reviews))
	for _, review := range reviews {
		sums[review.KRAID] += review.Rating
		counts[review.KRAID]++
	}

	known := make(map[string]bool, len(weightages))
	for _, w := range weightages {
		known[w.KRAID] = true
	}
	for kraID := range counts {
		if !known[kraID] {
			return nil, appErrors.Clone(appErrors.ErrMissingWeightage,
				fmt.Sprintf("no weightage configured for KRA %s", kraID))
		}
	}

	for _, w := range weightages {
		count := counts[w.KRAID]
		if count == 0 {
			continue
		}
		mean := float64(sums[w.KRAID]) / float64(count)
		weighted := roundHalfEven(mean * float64(w.Weightage) / 100)
		summary.Breakdown = append(summary.Breakdown, KRAScore{
			KRAID:          w.KRAID,
			KRAName:        w.KRAName,
			Weightage:      w.Weightage,
			WeightedRating: weighted,
		})
		summary.FinalScore += weighted
	}

	return summary, nil
}
