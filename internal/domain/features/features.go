// Package features cleans raw catalog feature records into well-formed
// vectors and computes population statistics over them.
package features

import (
	"math"

	"github.com/okian/playlab/internal/domain/model"
)

// Vector converts a raw record into a well-formed vector. It reports false
// when r is nil or any field is absent or non-finite; no defaults are
// substituted.
func Vector(r *model.RawFeatures) (model.FeatureVector, bool) {
	if r == nil {
		return model.FeatureVector{}, false
	}
	fields := []*float64{r.Energy, r.Danceability, r.Valence, r.Acousticness, r.Instrumentalness, r.Tempo}
	for _, f := range fields {
		if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
			return model.FeatureVector{}, false
		}
	}
	return model.FeatureVector{
		Energy:           *r.Energy,
		Danceability:     *r.Danceability,
		Valence:          *r.Valence,
		Acousticness:     *r.Acousticness,
		Instrumentalness: *r.Instrumentalness,
		Tempo:            *r.Tempo,
	}, true
}

// Normalize drops absent and malformed records and returns the rest in input
// order. The result may be empty; callers decide whether that is fatal.
func Normalize(raw []*model.RawFeatures) []model.FeatureVector {
	out := make([]model.FeatureVector, 0, len(raw))
	for _, r := range raw {
		if v, ok := Vector(r); ok {
			out = append(out, v)
		}
	}
	return out
}

// FromTracks normalizes the feature records carried by tracks. The returned
// refs are parallel to the vectors: refs[i] is the track vectors[i] came from.
func FromTracks(tracks []model.Track) ([]model.FeatureVector, []model.TrackRef) {
	vectors := make([]model.FeatureVector, 0, len(tracks))
	refs := make([]model.TrackRef, 0, len(tracks))
	for _, t := range tracks {
		v, ok := Vector(t.Features)
		if !ok {
			continue
		}
		vectors = append(vectors, v)
		refs = append(refs, t.Ref())
	}
	return vectors, refs
}

// Mean returns the arithmetic mean of f over vs, or 0 for an empty list.
func Mean(vs []model.FeatureVector, f model.Feature) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v.Value(f)
	}
	return sum / float64(len(vs))
}

// MeanVector returns the per-feature mean over vs. Every track counts equally.
func MeanVector(vs []model.FeatureVector) model.FeatureVector {
	return model.FeatureVector{
		Energy:           Mean(vs, model.Energy),
		Danceability:     Mean(vs, model.Danceability),
		Valence:          Mean(vs, model.Valence),
		Acousticness:     Mean(vs, model.Acousticness),
		Instrumentalness: Mean(vs, model.Instrumentalness),
		Tempo:            Mean(vs, model.Tempo),
	}
}

// StdDev returns the population standard deviation of f over vs, or 0 for an
// empty list.
func StdDev(vs []model.FeatureVector, f model.Feature) float64 {
	if len(vs) == 0 {
		return 0
	}
	mean := Mean(vs, f)
	var sq float64
	for _, v := range vs {
		d := v.Value(f) - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(vs)))
}
