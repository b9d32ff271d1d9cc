package compat_test

import (
	"math/rand"
	"testing"

	"github.com/okian/playlab/internal/domain/compat"
	"github.com/okian/playlab/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func randomList(rng *rand.Rand, n int) []model.FeatureVector {
	vs := make([]model.FeatureVector, n)
	for i := range vs {
		vs[i] = model.FeatureVector{
			Energy:           rng.Float64(),
			Danceability:     rng.Float64(),
			Valence:          rng.Float64(),
			Acousticness:     rng.Float64(),
			Instrumentalness: rng.Float64(),
			Tempo:            60 + rng.Float64()*140,
		}
	}
	return vs
}

func TestScore(t *testing.T) {
	convey.Convey("Given two playlists with identical mean vectors", t, func() {
		a := []model.FeatureVector{
			{Energy: 0.4, Danceability: 0.6, Valence: 0.5, Acousticness: 0.2, Instrumentalness: 0.1},
			{Energy: 0.6, Danceability: 0.4, Valence: 0.5, Acousticness: 0.4, Instrumentalness: 0.3},
		}
		b := []model.FeatureVector{
			{Energy: 0.5, Danceability: 0.5, Valence: 0.5, Acousticness: 0.3, Instrumentalness: 0.2},
		}

		convey.Convey("Then the cosine is one and the score is 92", func() {
			convey.So(compat.Score(a, b), convey.ShouldEqual, 92)
		})
	})

	convey.Convey("Given playlists on disjoint features", t, func() {
		a := []model.FeatureVector{{Energy: 1}}
		b := []model.FeatureVector{{Danceability: 1}}

		convey.Convey("Then the cosine is zero and the sigmoid floor applies", func() {
			convey.So(compat.Score(a, b), convey.ShouldEqual, 8)
		})
	})

	convey.Convey("Given a side with no vectors", t, func() {
		a := []model.FeatureVector{{Energy: 0.5, Danceability: 0.5}}

		convey.Convey("Then the score degrades to zero", func() {
			convey.So(compat.Score(a, nil), convey.ShouldEqual, 0)
			convey.So(compat.Score(nil, a), convey.ShouldEqual, 0)
		})
	})

	convey.Convey("Given an all-zero vector", t, func() {
		_, ok := compat.Similarity(model.FeatureVector{}, model.FeatureVector{Energy: 1})

		convey.Convey("Then similarity reports the zero magnitude", func() {
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestScoreIsSymmetric(t *testing.T) {
	convey.Convey("Given random pairs of playlists", t, func() {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 300; i++ {
			a := randomList(rng, 1+rng.Intn(25))
			b := randomList(rng, 1+rng.Intn(25))
			convey.So(compat.Score(a, b), convey.ShouldEqual, compat.Score(b, a))
		}
	})
}

func TestWeights(t *testing.T) {
	convey.Convey("Given the similarity weights", t, func() {
		var sum float64
		for _, f := range []model.Feature{model.Energy, model.Danceability, model.Valence, model.Acousticness, model.Instrumentalness} {
			sum += compat.Weight(f)
		}
		convey.So(sum, convey.ShouldAlmostEqual, 1.0, 1e-12)
		convey.So(compat.Weight(model.Tempo), convey.ShouldEqual, 0)
	})
}

func TestDecide(t *testing.T) {
	convey.Convey("Given per-playlist scores", t, func() {
		convey.So(compat.Decide(80, 70), convey.ShouldEqual, compat.Playlist1)
		convey.So(compat.Decide(70, 80), convey.ShouldEqual, compat.Playlist2)
		convey.So(compat.Decide(75, 75), convey.ShouldEqual, compat.Tie)
	})
}

func TestIntersect(t *testing.T) {
	convey.Convey("Given overlapping lists with duplicates", t, func() {
		a := []string{"Muse", "Radiohead", "Muse", "Blur", ""}
		b := []string{"Blur", "Muse", "Oasis", ""}

		convey.So(compat.Intersect(a, b), convey.ShouldResemble, []string{"Blur", "Muse"})

		convey.Convey("Then matching is exact", func() {
			convey.So(compat.Intersect([]string{"muse"}, []string{"Muse"}), convey.ShouldBeEmpty)
		})
	})
}
