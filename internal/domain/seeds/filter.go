package seeds

// Candidate is a recommendation returned by the catalog, reduced to the
// fields post-filters look at.
type Candidate struct {
	ID         string `json:"id"`
	Popularity int    `json:"popularity"`
	DurationMs int    `json:"duration_ms"`
}

// PostFilter is applied to catalog results after the lookup. A nil bound is
// not checked. Popularity is an exclusive ceiling; durations are inclusive.
type PostFilter struct {
	MaxPopularity *int `json:"popularity_below,omitempty"`
	MinDurationMs *int `json:"min_duration_ms,omitempty"`
	MaxDurationMs *int `json:"max_duration_ms,omitempty"`
}

// Accept reports whether c passes every bound.
func (p *PostFilter) Accept(c Candidate) bool {
	if p == nil {
		return true
	}
	if p.MaxPopularity != nil && c.Popularity >= *p.MaxPopularity {
		return false
	}
	if p.MinDurationMs != nil && c.DurationMs < *p.MinDurationMs {
		return false
	}
	if p.MaxDurationMs != nil && c.DurationMs > *p.MaxDurationMs {
		return false
	}
	return true
}

// Apply keeps the accepted candidates in order.
func (p *PostFilter) Apply(cs []Candidate) []Candidate {
	out := make([]Candidate, 0, len(cs))
	for _, c := range cs {
		if p.Accept(c) {
			out = append(out, c)
		}
	}
	return out
}

func popularityBelow(n int) *PostFilter {
	return &PostFilter{MaxPopularity: &n}
}

func durationBetween(minMs, maxMs int) *PostFilter {
	return &PostFilter{MinDurationMs: &minMs, MaxDurationMs: &maxMs}
}
