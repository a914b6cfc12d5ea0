package models

import "time"

// StageType mirrors the ENUM in the database.
type StageType string

const (
	StageTypeGroup       StageType = "group"
	StageTypeElimination StageType = "elimination"
)

// Stage is one phase of a tournament. Order is unique per tournament among
// active stages; tombstoning a stage cascades to its groups and brackets and
// detaches matches.
type Stage struct {
	ID           int          `json:"id" db:"id"`
	TournamentID int          `json:"tournament_id" db:"tournament_id"`
	Name         string       `json:"name" db:"name"`
	StageType    StageType    `json:"stage_type" db:"stage_type"`
	Order        int          `json:"order" db:"stage_order"`
	Config       StageConfig  `json:"config" db:"config"`
	RecordStatus RecordStatus `json:"record_status" db:"record_status"`
	DeletedAt    *time.Time   `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`

	Groups   []Group   `json:"groups,omitempty" db:"-"`
	Brackets []Bracket `json:"brackets,omitempty" db:"-"`
}
