// Package scoring computes playlist health from energy flow, genre variety
// and danceability engagement.
package scoring

import (
	"math"

	"github.com/okian/playlab/internal/domain/features"
	"github.com/okian/playlab/internal/domain/model"
)

// Health weights and thresholds.
const (
	flowWeight       = 0.4
	varietyWeight    = 0.3
	engagementWeight = 0.3

	// Energy spread below this is considered perfectly smooth.
	flowTolerance = 0.2
	flowPenalty   = 200
	// A playlist reaches full variety at one genre per five tracks.
	varietyFactor = 500
	maxScore      = 100

	minRating          = 1.0
	maxRating          = 5.0
	ratingDivisor      = 20.0
	smallPlaylistLimit = 10
	largePlaylistLimit = 500
	smallPenalty       = 0.90
	largePenalty       = 0.95
)

// Health is the composite score and its parts.
type Health struct {
	Score             int     `json:"health_score"`
	Status            string  `json:"health_status"`
	Rating            float64 `json:"overall_rating"`
	RatingDescription string  `json:"rating_description"`
	Flow              float64 `json:"flow_score"`
	Variety           float64 `json:"variety_score"`
	Engagement        float64 `json:"engagement_score"`
}

// Flow scores energy consistency: 100 when the population standard
// deviation of energy is under 0.2, falling linearly to 0 above it.
func Flow(vs []model.FeatureVector) float64 {
	sd := features.StdDev(vs, model.Energy)
	if sd < flowTolerance {
		return maxScore
	}
	return math.Max(0, maxScore-(sd-flowTolerance)*flowPenalty)
}

// Variety scores how many genres a playlist spans per track.
func Variety(genreCount, trackCount int) float64 {
	if trackCount <= 0 {
		return 0
	}
	return math.Min(maxScore, float64(genreCount)/float64(trackCount)*varietyFactor)
}

// Engagement is the mean danceability on a 0-100 scale.
func Engagement(vs []model.FeatureVector) float64 {
	return features.Mean(vs, model.Danceability) * maxScore
}

// ScoreHealth combines flow, variety and engagement into a Health value.
func ScoreHealth(vs []model.FeatureVector, genreCount, trackCount int) Health {
	flow := Flow(vs)
	variety := Variety(genreCount, trackCount)
	engagement := Engagement(vs)

	score := int(math.Round(flowWeight*flow + varietyWeight*variety + engagementWeight*engagement))
	rating := Rating(score, trackCount)

	return Health{
		Score:             score,
		Status:            Status(score),
		Rating:            rating,
		RatingDescription: RatingDescription(rating),
		Flow:              flow,
		Variety:           variety,
		Engagement:        engagement,
	}
}

// BattleScore is the per-playlist battle score. It drops the variety term.
func BattleScore(vs []model.FeatureVector) int {
	if len(vs) == 0 {
		return 0
	}
	return int(math.Round(0.5*Flow(vs) + 0.5*Engagement(vs)))
}

type tier struct {
	min   float64
	label string
}

var statusTiers = []tier{
	{90, "Exceptional"},
	{75, "Great"},
	{60, "Good"},
	{40, "Average"},
}

// Status maps a health score to its tier label. Lower bounds are inclusive.
func Status(score int) string {
	return lookup(statusTiers, float64(score), "Needs Work")
}

var ratingTiers = []tier{
	{4.8, "Masterpiece curation"},
	{4.5, "Exceptional taste"},
	{4.0, "Excellent selection"},
	{3.5, "Great vibes"},
	{3.0, "Good foundation"},
}

// RatingDescription maps an overall rating to its fixed description.
func RatingDescription(rating float64) string {
	return lookup(ratingTiers, rating, "Solid collection")
}

func lookup(tiers []tier, v float64, fallback string) string {
	for _, t := range tiers {
		if v >= t.min {
			return t.label
		}
	}
	return fallback
}

// Rating converts a health score to a 1.0-5.0 star rating with size
// penalties, rounded to one decimal.
func Rating(score, trackCount int) float64 {
	r := clamp(float64(score) / ratingDivisor)
	if trackCount < smallPlaylistLimit {
		r *= smallPenalty
	}
	if trackCount > largePlaylistLimit {
		r *= largePenalty
	}
	return clamp(math.Round(r*10) / 10)
}

func clamp(r float64) float64 {
	return math.Max(minRating, math.Min(maxRating, r))
}
