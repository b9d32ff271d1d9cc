package personality_test

import (
	"testing"

	"github.com/okian/playlab/internal/domain/model"
	"github.com/okian/playlab/internal/domain/personality"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		means model.FeatureVector
		want  personality.Label
	}{
		{
			name:  "instrumental playlist",
			means: model.FeatureVector{Energy: 0.9, Danceability: 0.2, Instrumentalness: 0.5, Valence: 0.5},
			want:  personality.Experimentalist,
		},
		{
			name:  "loud but undanceable",
			means: model.FeatureVector{Energy: 0.85, Danceability: 0.3, Valence: 0.5},
			want:  personality.Experimentalist,
		},
		{
			name:  "acoustic heavy",
			means: model.FeatureVector{Energy: 0.5, Danceability: 0.5, Acousticness: 0.6, Valence: 0.5},
			want:  personality.MoodDriven,
		},
		{
			name:  "very sad",
			means: model.FeatureVector{Energy: 0.5, Danceability: 0.5, Valence: 0.2},
			want:  personality.MoodDriven,
		},
		{
			name:  "very happy",
			means: model.FeatureVector{Energy: 0.5, Danceability: 0.5, Valence: 0.85},
			want:  personality.MoodDriven,
		},
		{
			name:  "energetic with organic texture",
			means: model.FeatureVector{Energy: 0.6, Danceability: 0.6, Acousticness: 0.4, Valence: 0.5},
			want:  personality.Eclectic,
		},
		{
			name:  "polished pop",
			means: model.FeatureVector{Energy: 0.6, Danceability: 0.7, Acousticness: 0.1, Valence: 0.6},
			want:  personality.TrendAware,
		},
		{
			name:  "thresholds are strict",
			means: model.FeatureVector{Energy: 0.4, Danceability: 0.4, Acousticness: 0.3, Instrumentalness: 0.3, Valence: 0.3},
			want:  personality.TrendAware,
		},
	}

	Convey("Given the default rule table", t, func() {
		for _, tc := range cases {
			tc := tc
			Convey("When classifying a "+tc.name, func() {
				So(personality.Classify(tc.means), ShouldResemble, tc.want)
			})
		}
	})
}

func TestRuleOrder(t *testing.T) {
	Convey("Given means that satisfy both the first and second rule", t, func() {
		means := model.FeatureVector{Instrumentalness: 0.6, Acousticness: 0.9, Valence: 0.1}

		Convey("Then the earlier rule wins", func() {
			So(personality.Classify(means).Name, ShouldEqual, "The Experimentalist")
		})

		Convey("And reversing the table changes the answer", func() {
			rules := personality.Rules()
			reversed := make([]personality.Rule, 0, len(rules))
			for i := len(rules) - 1; i >= 0; i-- {
				reversed = append(reversed, rules[i])
			}
			got := personality.ClassifyWith(reversed, personality.TrendAware, means)
			So(got.Name, ShouldEqual, "Mood-Driven")
		})
	})
}
