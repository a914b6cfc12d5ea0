package brackets

import (
	"context"
	"math/rand"
)

// Pairing is one generated match slot. Couple IDs are nil for bye slots.
// An auto-completed pairing carries the advancing couple as winner.
type Pairing struct {
	Couple1ID      *int
	Couple2ID      *int
	WinnerCoupleID *int
	AutoCompleted  bool
	Round          int
	Slot           int
}

type GenerateParams struct {
	// Round-robin roster.
	CoupleIDs          []int
	MatchesPerOpponent int

	// Elimination seed slots in ranked order, nil entries are byes.
	Seeds []*int

	// Rand drives seed shuffling. Generation is deterministic for a fixed source.
	Rand *rand.Rand
}

type PairingGenerator interface {
	GeneratePairings(ctx context.Context, params GenerateParams) ([]*Pairing, error)

	GetName() string
}
