package models

import "time"

// CoupleStats is the running aggregate for one couple in one scope. One row
// per (tournament, couple, group-or-null) triple. Always recomputable from
// the match log.
type CoupleStats struct {
	ID            int       `json:"id" db:"id"`
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	CoupleID      int       `json:"couple_id" db:"couple_id"`
	GroupID       *int      `json:"group_id,omitempty" db:"group_id"`
	MatchesPlayed int       `json:"matches_played" db:"matches_played"`
	MatchesWon    int       `json:"matches_won" db:"matches_won"`
	MatchesLost   int       `json:"matches_lost" db:"matches_lost"`
	MatchesDrawn  int       `json:"matches_drawn" db:"matches_drawn"`
	GamesWon      int       `json:"games_won" db:"games_won"`
	GamesLost     int       `json:"games_lost" db:"games_lost"`
	TotalPoints   int       `json:"total_points" db:"total_points"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	Couple *Couple `json:"couple,omitempty" db:"-"`
}

// StandingEntry is one ranked row of a standings table. GamesDiff is the
// games_won − games_lost tiebreak value.
type StandingEntry struct {
	Position  int `json:"position"`
	GamesDiff int `json:"games_diff"`
	CoupleStats
}
