package models

// StatsDelta is the per-couple contribution of a single match result.
// Applying and later subtracting the same delta cancels out, except that
// cumulative counters never go below zero.
type StatsDelta struct {
	MatchesPlayed int
	MatchesWon    int
	MatchesLost   int
	MatchesDrawn  int
	GamesWon      int
	GamesLost     int
	TotalPoints   int
}

// IsZero reports whether the delta carries no contribution at all.
func (d StatsDelta) IsZero() bool {
	return d == StatsDelta{}
}
