package scheduling

import (
	"sort"
	"time"

	"github.com/Dosada05/padel-system/models"
)

// DefaultMatchDuration applies when neither the match nor its stage carries
// a usable time limit.
const DefaultMatchDuration = 90 * time.Minute

// Plan is a proposed placement for one match. Order numbers scheduled
// matches from 1 in assignment sequence.
type Plan struct {
	Match   *models.Match
	CourtID int
	Start   time.Time
	End     time.Time
	Order   int
}

// PlanTimeBased walks matches in the given order and places each into the
// earliest-starting free slot across all courts that fits its duration. The
// used slot is split, keeping any remainder. Greedy earliest-fit: running
// out of slots is not an error, unplaced matches are simply absent from the
// returned plans.
func PlanTimeBased(matches []*models.Match, slots []TimeSlot, duration func(*models.Match) time.Duration) []Plan {
	free := make([]TimeSlot, len(slots))
	copy(free, slots)

	plans := make([]Plan, 0, len(matches))
	order := 1

	for _, match := range matches {
		need := duration(match)
		if need <= 0 {
			need = DefaultMatchDuration
		}

		bestIndex := -1
		for i, slot := range free {
			if slot.Duration() < need {
				continue
			}
			if bestIndex == -1 || slot.Start.Before(free[bestIndex].Start) {
				bestIndex = i
			}
		}
		if bestIndex == -1 {
			continue
		}

		slot := free[bestIndex]
		end := slot.Start.Add(need)

		plans = append(plans, Plan{
			Match:   match,
			CourtID: slot.CourtID,
			Start:   slot.Start,
			End:     end,
			Order:   order,
		})
		order++

		free = append(free[:bestIndex], free[bestIndex+1:]...)
		if end.Before(slot.End) {
			free = append(free, TimeSlot{CourtID: slot.CourtID, Start: end, End: slot.End})
		}
	}

	return plans
}

// OrderPlan assigns a court and a display order without timestamps.
type OrderPlan struct {
	Match   *models.Match
	CourtID int
	Order   int
}

// PlanOrderOnly deals matches across courts in rotation. Group matches go
// first keeping their group blocks together, then bracket matches sorted by
// bracket position, then anything unattached.
func PlanOrderOnly(matches []*models.Match, courtIDs []int) []OrderPlan {
	if len(courtIDs) == 0 {
		return []OrderPlan{}
	}

	sequence := make([]*models.Match, 0, len(matches))

	groupKeys := make([]int, 0)
	byGroup := make(map[int][]*models.Match)
	bracketKeys := make([]int, 0)
	byBracket := make(map[int][]*models.Match)
	other := make([]*models.Match, 0)

	for _, match := range matches {
		switch {
		case match.GroupID != nil:
			key := *match.GroupID
			if _, seen := byGroup[key]; !seen {
				groupKeys = append(groupKeys, key)
			}
			byGroup[key] = append(byGroup[key], match)
		case match.BracketID != nil:
			key := *match.BracketID
			if _, seen := byBracket[key]; !seen {
				bracketKeys = append(bracketKeys, key)
			}
			byBracket[key] = append(byBracket[key], match)
		default:
			other = append(other, match)
		}
	}

	for _, key := range groupKeys {
		sequence = append(sequence, byGroup[key]...)
	}
	for _, key := range bracketKeys {
		bracketMatches := byBracket[key]
		sort.SliceStable(bracketMatches, func(i, j int) bool {
			pi, pj := 0, 0
			if bracketMatches[i].BracketPosition != nil {
				pi = *bracketMatches[i].BracketPosition
			}
			if bracketMatches[j].BracketPosition != nil {
				pj = *bracketMatches[j].BracketPosition
			}
			return pi < pj
		})
		sequence = append(sequence, bracketMatches...)
	}
	sequence = append(sequence, other...)

	plans := make([]OrderPlan, 0, len(sequence))
	for i, match := range sequence {
		plans = append(plans, OrderPlan{
			Match:   match,
			CourtID: courtIDs[i%len(courtIDs)],
			Order:   i + 1,
		})
	}

	return plans
}
