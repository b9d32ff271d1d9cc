// Package dna aggregates feature vectors into the display-scaled Audio DNA.
package dna

import (
	"fmt"
	"math"

	"github.com/okian/playlab/internal/domain/features"
	"github.com/okian/playlab/internal/domain/model"
)

// Playable tempo range mapped onto the 0-100 display scale.
const (
	minTempoBPM = 60.0
	maxTempoBPM = 200.0
	displayMax  = 100
)

// Aggregate computes the mean vector of vs and maps it onto the display scale.
func Aggregate(vs []model.FeatureVector) (model.AudioDNA, error) {
	if len(vs) == 0 {
		return model.AudioDNA{}, fmt.Errorf("dna: no feature vectors: %w", model.ErrDataInsufficient)
	}
	return FromMeans(features.MeanVector(vs)), nil
}

// FromMeans scales an already averaged vector. [0,1] features are multiplied
// by 100; tempo is remapped from the playable range.
func FromMeans(m model.FeatureVector) model.AudioDNA {
	return model.AudioDNA{
		Energy:           Scale(m.Energy),
		Danceability:     Scale(m.Danceability),
		Valence:          Scale(m.Valence),
		Acousticness:     Scale(m.Acousticness),
		Instrumentalness: Scale(m.Instrumentalness),
		Tempo:            ScaleTempo(m.Tempo),
	}
}

// Scale maps a [0,1] value to an integer in [0,100].
func Scale(v float64) int {
	return clamp(v * displayMax)
}

// ScaleTempo maps a BPM value to an integer in [0,100].
func ScaleTempo(bpm float64) int {
	return clamp((bpm - minTempoBPM) / (maxTempoBPM - minTempoBPM) * displayMax)
}

// clamp bounds v to [0,100] before converting, so huge means cannot
// overflow the int conversion.
func clamp(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(displayMax, v))))
}
