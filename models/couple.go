package models

import "time"

// Couple is the competing unit: two distinct players inside one tournament.
// No two active couples in a tournament may pair the same players, in either
// order.
type Couple struct {
	ID             int          `json:"id" db:"id"`
	TournamentID   int          `json:"tournament_id" db:"tournament_id"`
	FirstPlayerID  int          `json:"first_player_id" db:"first_player_id"`
	SecondPlayerID int          `json:"second_player_id" db:"second_player_id"`
	Name           string       `json:"name" db:"name"`
	RecordStatus   RecordStatus `json:"record_status" db:"record_status"`
	DeletedAt      *time.Time   `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`

	FirstPlayer  *Player `json:"first_player,omitempty" db:"-"`
	SecondPlayer *Player `json:"second_player,omitempty" db:"-"`
}
