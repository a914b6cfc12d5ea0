package models

import "time"

// BracketType mirrors the ENUM in the database. One bracket per type per
// stage; MAIN always exists on elimination stages and cannot be deleted.
type BracketType string

const (
	BracketTypeMain   BracketType = "main"
	BracketTypeSilver BracketType = "silver"
	BracketTypeBronze BracketType = "bronze"
)

type Bracket struct {
	ID           int          `json:"id" db:"id"`
	StageID      int          `json:"stage_id" db:"stage_id"`
	BracketType  BracketType  `json:"bracket_type" db:"bracket_type"`
	RecordStatus RecordStatus `json:"record_status" db:"record_status"`
	DeletedAt    *time.Time   `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}
