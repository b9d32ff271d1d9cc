// Package personality maps a mean feature vector to a listener personality.
//
// Rules overlap, so they are kept as an ordered table and the first match
// wins. Reordering the table changes results.
package personality

import "github.com/okian/playlab/internal/domain/model"

// Label is a personality with its fixed description.
type Label struct {
	Name        string `json:"label"`
	Description string `json:"description"`
}

// Known labels.
var (
	Experimentalist = Label{
		Name:        "The Experimentalist",
		Description: "You gravitate toward the unconventional: instrumental passages, odd energy, and sounds that refuse easy labels.",
	}
	MoodDriven = Label{
		Name:        "Mood-Driven",
		Description: "Your playlists follow feelings first, from acoustic calm to emotional highs and lows.",
	}
	Eclectic = Label{
		Name:        "The Eclectic",
		Description: "You blend energy with organic textures, moving comfortably between scenes and styles.",
	}
	TrendAware = Label{
		Name:        "Trend-Aware",
		Description: "You keep your finger on the pulse with polished, current, crowd-friendly sounds.",
	}
)

// Rule pairs a predicate over [0,1]-domain means with the label it assigns.
type Rule struct {
	Label Label
	Match func(m model.FeatureVector) bool
}

// rules is evaluated top to bottom. TrendAware is the default and has no rule.
var rules = []Rule{
	{
		Label: Experimentalist,
		Match: func(m model.FeatureVector) bool {
			return m.Instrumentalness > 0.3 || (m.Energy > 0.8 && m.Danceability < 0.4)
		},
	},
	{
		Label: MoodDriven,
		Match: func(m model.FeatureVector) bool {
			return m.Acousticness > 0.5 || m.Valence < 0.3 || m.Valence > 0.8
		},
	},
	{
		Label: Eclectic,
		Match: func(m model.FeatureVector) bool {
			return m.Energy > 0.4 && m.Acousticness > 0.3
		},
	},
}

// Rules returns a copy of the ordered rule table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify returns the label of the first matching rule, or TrendAware.
func Classify(means model.FeatureVector) Label {
	return ClassifyWith(rules, TrendAware, means)
}

// ClassifyWith evaluates an arbitrary ordered table.
func ClassifyWith(table []Rule, fallback Label, means model.FeatureVector) Label {
	for _, r := range table {
		if r.Match(means) {
			return r.Label
		}
	}
	return fallback
}
