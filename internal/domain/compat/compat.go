// Package compat compares two playlists: a symmetric compatibility score from
// weighted cosine similarity, a winner, and shared-content diffs.
package compat

import (
	"math"
	"sort"

	"github.com/okian/playlab/internal/domain/features"
	"github.com/okian/playlab/internal/domain/model"
)

// weights is the fixed per-feature weighting of the similarity. It sums to 1.
var weights = []struct {
	feature model.Feature
	weight  float64
}{
	{model.Energy, 0.25},
	{model.Danceability, 0.20},
	{model.Valence, 0.20},
	{model.Acousticness, 0.15},
	{model.Instrumentalness, 0.20},
}

// Weight returns the similarity weight of f, or 0 for features that are not
// compared (tempo).
func Weight(f model.Feature) float64 {
	for _, w := range weights {
		if w.feature == f {
			return w.weight
		}
	}
	return 0
}

// Logistic squashing centred at similarity 0.5.
const (
	sigmoidSteepness = 5.0
	sigmoidCenter    = 0.5
	maxScore         = 100.0
)

// Winner names the battle outcome.
type Winner string

// Battle outcomes.
const (
	Playlist1 Winner = "playlist1"
	Playlist2 Winner = "playlist2"
	Tie       Winner = "tie"
)

// Similarity returns the weighted cosine similarity of two mean vectors. ok
// is false when either weighted magnitude is zero.
func Similarity(a, b model.FeatureVector) (sim float64, ok bool) {
	var dot, magA, magB float64
	for _, fw := range weights {
		w := fw.weight
		x, y := a.Value(fw.feature), b.Value(fw.feature)
		dot += w * (x * y) // x*y commutes exactly; keeps Score symmetric
		magA += w * x * x
		magB += w * y * y
	}
	if magA == 0 || magB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), true
}

// Squash maps a cosine similarity to a 0-100 score.
func Squash(sim float64) int {
	return int(math.Round(maxScore / (1 + math.Exp(-sigmoidSteepness*(sim-sigmoidCenter)))))
}

// Score returns the compatibility of two feature lists. It is 0 when either
// side has no vectors or an all-zero mean.
func Score(a, b []model.FeatureVector) int {
	sim, ok := Similarity(features.MeanVector(a), features.MeanVector(b))
	if !ok {
		return 0
	}
	return Squash(sim)
}

// Decide picks the side with the strictly higher score.
func Decide(score1, score2 int) Winner {
	switch {
	case score1 > score2:
		return Playlist1
	case score2 > score1:
		return Playlist2
	default:
		return Tie
	}
}

// Intersect returns the distinct values present in both a and b, sorted.
// Matching is exact.
func Intersect(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, v := range a {
		if v == "" {
			continue
		}
		if _, ok := inB[v]; !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
