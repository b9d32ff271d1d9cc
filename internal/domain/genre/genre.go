// Package genre builds a percentage genre distribution from artist genre tags.
package genre

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/okian/playlab/internal/domain/model"
)

const (
	maxShares    = 10
	maxSubgenres = 6
)

// Distribution is the result of Build.
type Distribution struct {
	Shares    []model.GenreShare
	Subgenres []string
	// Fallback is true when no tags were available and Shares came from the
	// feature heuristic.
	Fallback bool
}

// NormalizeTag title-cases each word and collapses whitespace so case and
// spacing variants of a tag count as one.
func NormalizeTag(raw string) string {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return ""
	}
	// cases.Caser is stateful, so each call gets its own.
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// Count tallies normalized tags. Duplicates are expected and counted; blank
// tags are ignored.
func Count(tags []string) map[string]int {
	counts := make(map[string]int, len(tags))
	for _, t := range tags {
		if n := NormalizeTag(t); n != "" {
			counts[n]++
		}
	}
	return counts
}

// Build computes the distribution over trackCount tracks. When tags carries
// no usable tag, the fallback heuristic over the [0,1]-domain means is used.
//
// Percentages are rounded per bucket and are not normalized to sum to 100.
func Build(tags []string, trackCount int, means model.FeatureVector) Distribution {
	counts := Count(tags)
	if len(counts) == 0 {
		return Distribution{Shares: Fallback(means), Fallback: true}
	}

	ranked := rank(counts)

	shares := make([]model.GenreShare, 0, min(len(ranked), maxShares))
	for _, c := range ranked {
		if len(shares) == maxShares {
			break
		}
		shares = append(shares, model.GenreShare{Name: c.name, Percent: percent(c.count, trackCount)})
	}

	return Distribution{Shares: shares, Subgenres: subgenres(ranked)}
}

type tagCount struct {
	name  string
	count int
}

// rank orders tags by count desc, then name asc.
func rank(counts map[string]int) []tagCount {
	out := make([]tagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, tagCount{name: name, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func percent(count, trackCount int) int {
	if trackCount <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(count) / float64(trackCount)))
}

// subgenres returns the long tail: tags counted strictly less than half the
// top count. ranked must already be sorted.
func subgenres(ranked []tagCount) []string {
	if len(ranked) == 0 {
		return nil
	}
	top := ranked[0].count
	out := make([]string, 0, maxSubgenres)
	for _, c := range ranked {
		if len(out) == maxSubgenres {
			break
		}
		if 2*c.count < top {
			out = append(out, c.name)
		}
	}
	return out
}

// fallbackRule emits a share when the feature means satisfy Match.
type fallbackRule struct {
	share model.GenreShare
	match func(m model.FeatureVector) bool
}

var fallbackRules = []fallbackRule{
	{
		share: model.GenreShare{Name: "Pop", Percent: 40},
		match: func(m model.FeatureVector) bool { return m.Danceability > 0.6 && m.Energy > 0.6 },
	},
	{
		share: model.GenreShare{Name: "Electronic", Percent: 30},
		match: func(m model.FeatureVector) bool { return m.Energy > 0.7 && m.Acousticness < 0.3 },
	},
	{
		share: model.GenreShare{Name: "Acoustic", Percent: 30},
		match: func(m model.FeatureVector) bool { return m.Acousticness > 0.5 },
	},
	{
		share: model.GenreShare{Name: "Rock", Percent: 30},
		match: func(m model.FeatureVector) bool {
			return m.Energy >= 0.4 && m.Energy <= 0.7 && m.Danceability < 0.5
		},
	},
}

// defaultFallback is used when no heuristic fires.
var defaultFallback = []model.GenreShare{
	{Name: "Pop", Percent: 30},
	{Name: "Rock", Percent: 25},
	{Name: "Electronic", Percent: 20},
}

// Fallback returns the heuristic distribution used when the catalog has no
// genre data for any artist.
func Fallback(means model.FeatureVector) []model.GenreShare {
	var out []model.GenreShare
	for _, r := range fallbackRules {
		if r.match(means) {
			out = append(out, r.share)
		}
	}
	if len(out) == 0 {
		out = make([]model.GenreShare, len(defaultFallback))
		copy(out, defaultFallback)
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percent > out[j].Percent })
	return out
}
