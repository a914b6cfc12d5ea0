package models

import "time"

// Group is a round-robin pool inside a GROUP stage.
type Group struct {
	ID           int          `json:"id" db:"id"`
	StageID      int          `json:"stage_id" db:"stage_id"`
	Name         string       `json:"name" db:"name"`
	RecordStatus RecordStatus `json:"record_status" db:"record_status"`
	DeletedAt    *time.Time   `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`

	Couples []Couple `json:"couples,omitempty" db:"-"`
}

// GroupCouple is the roster join row. A couple sits in at most one active
// group per stage; re-adding a tombstoned row reactivates it instead of
// inserting a duplicate.
type GroupCouple struct {
	ID           int          `json:"id" db:"id"`
	GroupID      int          `json:"group_id" db:"group_id"`
	CoupleID     int          `json:"couple_id" db:"couple_id"`
	RecordStatus RecordStatus `json:"record_status" db:"record_status"`
	DeletedAt    *time.Time   `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// GroupAssignment reports where a couple landed after a bulk assignment.
type GroupAssignment struct {
	GroupID   int    `json:"group_id"`
	GroupName string `json:"group_name"`
	CoupleID  int    `json:"couple_id"`
}
