package loadgen

import "fmt"

// VerifyLeaderboard checks that entries are ordered by health score, carry
// competition ranks, and agree with the scores the run observed. expected
// maps playlist id to health score; ids missing from it are not checked.
func VerifyLeaderboard(entries []Entry, expected map[string]int) []string {
	var problems []string
	for i, e := range entries {
		if want, ok := expected[e.PlaylistID]; ok && want != e.HealthScore {
			problems = append(problems, fmt.Sprintf("%s: health score %d, analyzed as %d", e.PlaylistID, e.HealthScore, want))
		}
		if i == 0 {
			if e.Rank != 1 {
				problems = append(problems, fmt.Sprintf("%s: first entry has rank %d", e.PlaylistID, e.Rank))
			}
			continue
		}
		prev := entries[i-1]
		switch {
		case e.HealthScore > prev.HealthScore:
			problems = append(problems, fmt.Sprintf("%s: score %d above %s with %d", e.PlaylistID, e.HealthScore, prev.PlaylistID, prev.HealthScore))
		case e.HealthScore == prev.HealthScore && e.Rank != prev.Rank:
			problems = append(problems, fmt.Sprintf("%s: tied with %s but ranked %d, not %d", e.PlaylistID, prev.PlaylistID, e.Rank, prev.Rank))
		case e.HealthScore < prev.HealthScore && e.Rank != i+1:
			problems = append(problems, fmt.Sprintf("%s: rank %d at position %d", e.PlaylistID, e.Rank, i+1))
		}
	}
	return problems
}

// expectedTop returns how many entries the leaderboard should hold given
// the number of ranked playlists.
func expectedTop(ranked, limit int) int {
	return min(ranked, limit)
}
