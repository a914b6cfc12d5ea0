package brackets

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPtrs(ids ...int) []*int {
	seeds := make([]*int, len(ids))
	for i := range ids {
		id := ids[i]
		seeds[i] = &id
	}
	return seeds
}

func TestSingleEliminationPowerOfTwo(t *testing.T) {
	gen := NewSingleEliminationGenerator()

	pairings, err := gen.GeneratePairings(context.Background(), GenerateParams{
		Seeds: seedPtrs(1, 2, 3, 4),
		Rand:  rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	require.Len(t, pairings, 2)

	seen := make(map[int]int)
	for i, p := range pairings {
		require.NotNil(t, p.Couple1ID)
		require.NotNil(t, p.Couple2ID)
		assert.False(t, p.AutoCompleted)
		assert.Equal(t, 1, p.Round)
		assert.Equal(t, i+1, p.Slot)
		seen[*p.Couple1ID]++
		seen[*p.Couple2ID]++
	}

	require.Len(t, seen, 4)
	for id, count := range seen {
		assert.Equal(t, 1, count, "couple %d placed more than once", id)
	}
}

func TestSingleEliminationPadsWithByes(t *testing.T) {
	gen := NewSingleEliminationGenerator()

	pairings, err := gen.GeneratePairings(context.Background(), GenerateParams{
		Seeds: seedPtrs(1, 2, 3, 4, 5),
		Rand:  rand.New(rand.NewSource(7)),
	})
	require.NoError(t, err)

	placed := make(map[int]int)
	playable := 0
	autoCompleted := 0
	for _, p := range pairings {
		require.NotNil(t, p.Couple1ID, "a pairing of two byes must be dropped")
		placed[*p.Couple1ID]++
		if p.AutoCompleted {
			autoCompleted++
			assert.Nil(t, p.Couple2ID)
			require.NotNil(t, p.WinnerCoupleID)
			assert.Equal(t, *p.Couple1ID, *p.WinnerCoupleID)
		} else {
			playable++
			require.NotNil(t, p.Couple2ID)
			placed[*p.Couple2ID]++
			assert.Nil(t, p.WinnerCoupleID)
		}
	}

	// 5 seeds in an 8-slot ladder: every couple lands exactly once and byes
	// cover the remaining 3 slots.
	require.Len(t, placed, 5)
	for id, count := range placed {
		assert.Equal(t, 1, count, "couple %d placed more than once", id)
	}
	assert.Equal(t, 5, playable*2+autoCompleted)
	assert.GreaterOrEqual(t, autoCompleted, 1)
}

func TestSingleEliminationTwoSeeds(t *testing.T) {
	gen := NewSingleEliminationGenerator()

	pairings, err := gen.GeneratePairings(context.Background(), GenerateParams{
		Seeds: seedPtrs(11, 22),
		Rand:  rand.New(rand.NewSource(3)),
	})
	require.NoError(t, err)
	require.Len(t, pairings, 1)
	assert.False(t, pairings[0].AutoCompleted)
	require.NotNil(t, pairings[0].Couple1ID)
	require.NotNil(t, pairings[0].Couple2ID)
}

func TestSingleEliminationDeterministicForFixedSeed(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	seeds := seedPtrs(1, 2, 3, 4, 5, 6)

	first, err := gen.GeneratePairings(context.Background(), GenerateParams{
		Seeds: seeds,
		Rand:  rand.New(rand.NewSource(42)),
	})
	require.NoError(t, err)

	second, err := gen.GeneratePairings(context.Background(), GenerateParams{
		Seeds: seeds,
		Rand:  rand.New(rand.NewSource(42)),
	})
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Couple1ID, second[i].Couple1ID)
		assert.Equal(t, first[i].Couple2ID, second[i].Couple2ID)
		assert.Equal(t, first[i].AutoCompleted, second[i].AutoCompleted)
	}
}

func TestSingleEliminationRejectsTooFewSeeds(t *testing.T) {
	gen := NewSingleEliminationGenerator()

	_, err := gen.GeneratePairings(context.Background(), GenerateParams{
		Seeds: seedPtrs(1),
		Rand:  rand.New(rand.NewSource(1)),
	})
	assert.ErrorIs(t, err, ErrInsufficientCouples)

	// nil entries do not count as seeds.
	_, err = gen.GeneratePairings(context.Background(), GenerateParams{
		Seeds: []*int{nil, nil, nil},
		Rand:  rand.New(rand.NewSource(1)),
	})
	assert.ErrorIs(t, err, ErrInsufficientCouples)
}

func TestSingleEliminationRequiresRandSource(t *testing.T) {
	gen := NewSingleEliminationGenerator()

	_, err := gen.GeneratePairings(context.Background(), GenerateParams{
		Seeds: seedPtrs(1, 2),
	})
	require.Error(t, err)
}
