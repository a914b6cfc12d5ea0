package brackets

import (
	"context"
	"errors"
	"fmt"
)

var ErrInsufficientCouples = errors.New("not enough couples to generate matches")

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() PairingGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GeneratePairings emits every unordered pair of couples, repeated
// MatchesPerOpponent times, so N couples yield N*(N-1)/2 * m pairings.
func (g *RoundRobinGenerator) GeneratePairings(ctx context.Context, params GenerateParams) ([]*Pairing, error) {
	coupleIDs := params.CoupleIDs
	if len(coupleIDs) < 2 {
		return nil, fmt.Errorf("%w: found %d, min 2 required", ErrInsufficientCouples, len(coupleIDs))
	}

	matchesPerOpponent := params.MatchesPerOpponent
	if matchesPerOpponent < 1 {
		matchesPerOpponent = 1
	}

	pairings := make([]*Pairing, 0, len(coupleIDs)*(len(coupleIDs)-1)/2*matchesPerOpponent)
	slot := 0

	for i := 0; i < len(coupleIDs); i++ {
		for j := i + 1; j < len(coupleIDs); j++ {
			for leg := 0; leg < matchesPerOpponent; leg++ {
				c1 := coupleIDs[i]
				c2 := coupleIDs[j]
				slot++
				pairings = append(pairings, &Pairing{
					Couple1ID: &c1,
					Couple2ID: &c2,
					Round:     1,
					Slot:      slot,
				})
			}
		}
	}

	return pairings, nil
}
