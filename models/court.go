package models

import "time"

// Court is a physical court owned by a company.
type Court struct {
	ID        int       `json:"id" db:"id"`
	CompanyID int       `json:"company_id" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TournamentCourt links a court to a tournament with an optional availability
// window. Unique per (tournament, court) among active rows.
type TournamentCourt struct {
	ID                int          `json:"id" db:"id"`
	TournamentID      int          `json:"tournament_id" db:"tournament_id"`
	CourtID           int          `json:"court_id" db:"court_id"`
	AvailabilityStart *time.Time   `json:"availability_start,omitempty" db:"availability_start"`
	AvailabilityEnd   *time.Time   `json:"availability_end,omitempty" db:"availability_end"`
	RecordStatus      RecordStatus `json:"record_status" db:"record_status"`
	DeletedAt         *time.Time   `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`

	Court *Court `json:"court,omitempty" db:"-"`
}
