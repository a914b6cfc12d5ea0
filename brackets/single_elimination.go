package brackets

import (
	"context"
	"fmt"
	"math"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() PairingGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GeneratePairings builds round 1 of a knockout ladder. Seeds are padded
// with byes up to the next power of two and shuffled, then adjacent slots
// are paired. A pairing against a bye auto-completes in favour of the
// present couple; a pairing of two byes is dropped. Later rounds are not
// pre-generated, they are created as winners become known.
func (g *SingleEliminationGenerator) GeneratePairings(ctx context.Context, params GenerateParams) ([]*Pairing, error) {
	realSeeds := 0
	for _, seed := range params.Seeds {
		if seed != nil {
			realSeeds++
		}
	}
	if realSeeds < 2 {
		return nil, fmt.Errorf("%w: found %d seeded couples, min 2 required", ErrInsufficientCouples, realSeeds)
	}
	if params.Rand == nil {
		return nil, fmt.Errorf("elimination generation requires a random source")
	}

	numRounds := int(math.Ceil(math.Log2(float64(realSeeds))))
	bracketSize := 1 << uint(numRounds)

	slots := make([]*int, 0, bracketSize)
	for _, seed := range params.Seeds {
		if seed != nil {
			id := *seed
			slots = append(slots, &id)
		}
	}
	for len(slots) < bracketSize {
		slots = append(slots, nil)
	}

	params.Rand.Shuffle(len(slots), func(i, j int) {
		slots[i], slots[j] = slots[j], slots[i]
	})

	pairings := make([]*Pairing, 0, bracketSize/2)
	position := 0

	for i := 0; i < len(slots); i += 2 {
		seed1 := slots[i]
		seed2 := slots[i+1]

		if seed1 == nil && seed2 == nil {
			continue
		}

		position++
		pairing := &Pairing{
			Round: 1,
			Slot:  position,
		}

		switch {
		case seed1 != nil && seed2 != nil:
			pairing.Couple1ID = seed1
			pairing.Couple2ID = seed2
		case seed1 != nil:
			pairing.Couple1ID = seed1
			pairing.WinnerCoupleID = seed1
			pairing.AutoCompleted = true
		default:
			pairing.Couple1ID = seed2
			pairing.WinnerCoupleID = seed2
			pairing.AutoCompleted = true
		}

		pairings = append(pairings, pairing)
	}

	return pairings, nil
}
