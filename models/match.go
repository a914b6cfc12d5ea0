package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MatchResultStatus mirrors the ENUM in the database.
type MatchResultStatus string

const (
	MatchResultPending     MatchResultStatus = "pending"
	MatchResultCompleted   MatchResultStatus = "completed"
	MatchResultTimeExpired MatchResultStatus = "time_expired"
	MatchResultForfeited   MatchResultStatus = "forfeited"
)

// GameScore is one set of a match.
type GameScore struct {
	Couple1Score int `json:"couple1_score"`
	Couple2Score int `json:"couple2_score"`
}

// GameScores is stored as a JSONB array on the match row.
type GameScores []GameScore

func (g GameScores) Value() (driver.Value, error) {
	if g == nil {
		return json.Marshal([]GameScore{})
	}
	return json.Marshal(g)
}

func (g *GameScores) Scan(src interface{}) error {
	if src == nil {
		*g = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("games: cannot scan %T", src)
	}
	if len(raw) == 0 {
		*g = nil
		return nil
	}
	return json.Unmarshal(raw, g)
}

// Match is the central entity. Group and bracket references are mutually
// exclusive; both may be nil for a detached match. Ordering fields are set by
// the ordering engine, scheduling fields by the scheduling engine.
type Match struct {
	ID             int               `json:"id" db:"id"`
	TournamentID   int               `json:"tournament_id" db:"tournament_id"`
	Couple1ID      int               `json:"couple1_id" db:"couple1_id"`
	Couple2ID      int               `json:"couple2_id" db:"couple2_id"`
	WinnerCoupleID *int              `json:"winner_couple_id,omitempty" db:"winner_couple_id"`
	Games          GameScores        `json:"games" db:"games"`
	ResultStatus   MatchResultStatus `json:"match_result_status" db:"match_result_status"`

	StageID   *int `json:"stage_id,omitempty" db:"stage_id"`
	GroupID   *int `json:"group_id,omitempty" db:"group_id"`
	BracketID *int `json:"bracket_id,omitempty" db:"bracket_id"`

	CourtID          *int       `json:"court_id,omitempty" db:"court_id"`
	ScheduledStart   *time.Time `json:"scheduled_start,omitempty" db:"scheduled_start"`
	ScheduledEnd     *time.Time `json:"scheduled_end,omitempty" db:"scheduled_end"`
	IsTimeLimited    bool       `json:"is_time_limited" db:"is_time_limited"`
	TimeLimitMinutes *int       `json:"time_limit_minutes,omitempty" db:"time_limit_minutes"`

	DisplayOrder    *int     `json:"display_order,omitempty" db:"display_order"`
	OrderInStage    *int     `json:"order_in_stage,omitempty" db:"order_in_stage"`
	OrderInGroup    *int     `json:"order_in_group,omitempty" db:"order_in_group"`
	BracketPosition *int     `json:"bracket_position,omitempty" db:"bracket_position"`
	RoundNumber     *int     `json:"round_number,omitempty" db:"round_number"`
	PriorityScore   *float64 `json:"priority_score,omitempty" db:"priority_score"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Couple1 *Couple `json:"couple1,omitempty" db:"-"`
	Couple2 *Couple `json:"couple2,omitempty" db:"-"`
	Court   *Court  `json:"court,omitempty" db:"-"`
}
