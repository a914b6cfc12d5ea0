package models

// RecordStatus is the explicit soft-delete state carried by staging entities.
// Repositories filter on it; tombstoned rows stay in place for history.
type RecordStatus string

const (
	RecordActive     RecordStatus = "active"
	RecordTombstoned RecordStatus = "tombstoned"
)
