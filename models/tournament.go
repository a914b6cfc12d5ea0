package models

import "time"

// TournamentStatus mirrors the ENUM in the database.
type TournamentStatus string

const (
	StatusDraft        TournamentStatus = "draft"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

type Tournament struct {
	ID          int              `json:"id" db:"id"`
	CompanyID   int              `json:"company_id" db:"company_id"`
	Name        string           `json:"name" db:"name"`
	Description *string          `json:"description,omitempty" db:"description"`
	StartDate   time.Time        `json:"start_date" db:"start_date"`
	EndDate     time.Time        `json:"end_date" db:"end_date"`
	Status      TournamentStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	PosterKey   *string          `json:"-" db:"poster_key"`
	PosterURL   *string          `json:"poster_url,omitempty" db:"-"`

	// Optional linked entities, populated on detail reads.
	Stages  []Stage           `json:"stages,omitempty" db:"-"`
	Couples []Couple          `json:"couples,omitempty" db:"-"`
	Courts  []TournamentCourt `json:"courts,omitempty" db:"-"`
	Matches []Match           `json:"matches,omitempty" db:"-"`
}
