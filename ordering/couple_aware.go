package ordering

import (
	"github.com/Dosada05/padel-system/models"
)

// neverPlayed marks couples with no placed match yet. The offset keeps their
// rest value far above any real one so fresh couples are always attractive.
const neverPlayed = -10

// coupleAwareOrder sequences matches so no couple plays twice in a row when
// avoidable. It greedily picks the remaining match with the highest rest
// score; the first match is taken from the head of the input. The heuristic
// guarantees no immediate repeats where possible, not a global optimum.
func (e *Engine) coupleAwareOrder(matches []*models.Match) []*models.Match {
	if len(matches) <= 1 {
		return matches
	}

	remaining := make([]*models.Match, len(matches))
	copy(remaining, matches)

	ordered := make([]*models.Match, 0, len(matches))
	lastPlayed := make(map[int]int)

	first := remaining[0]
	remaining = remaining[1:]
	ordered = append(ordered, first)
	lastPlayed[first.Couple1ID] = 0
	lastPlayed[first.Couple2ID] = 0

	for len(remaining) > 0 {
		position := len(ordered)
		bestIndex := -1
		bestScore := 0.0

		for i, candidate := range remaining {
			score := e.restScore(candidate, lastPlayed, position)
			if bestIndex == -1 || score > bestScore {
				bestIndex = i
				bestScore = score
			}
		}

		best := remaining[bestIndex]
		remaining = append(remaining[:bestIndex], remaining[bestIndex+1:]...)
		ordered = append(ordered, best)
		lastPlayed[best.Couple1ID] = position
		lastPlayed[best.Couple2ID] = position
	}

	return ordered
}

// restScore rates a candidate for the next slot. Rest counts the matches
// played since a couple last appeared, so a couple coming straight off the
// previous match has rest 0.
func (e *Engine) restScore(match *models.Match, lastPlayed map[int]int, position int) float64 {
	rest1 := restSince(lastPlayed, match.Couple1ID, position)
	rest2 := restSince(lastPlayed, match.Couple2ID, position)

	score := float64(rest1 + rest2)

	if _, played := lastPlayed[match.Couple1ID]; !played {
		score += 10
	}
	if _, played := lastPlayed[match.Couple2ID]; !played {
		score += 10
	}

	for _, rest := range [2]int{rest1, rest2} {
		switch {
		case rest == 0:
			score -= 50
		case rest == 1:
			score -= 10
		case rest >= 3:
			score += 5
		}
	}

	score += e.rand.Float64() * 0.1

	return score
}

func restSince(lastPlayed map[int]int, coupleID, position int) int {
	last, played := lastPlayed[coupleID]
	if !played {
		last = neverPlayed
	}
	return position - last - 1
}
