package ordering

import (
	"math/rand"
	"sort"

	"github.com/Dosada05/padel-system/models"
)

// Engine assigns display_order, order_in_stage, order_in_group, round_number
// and priority_score to pending matches, stage by stage in ascending stage
// order. Courts are assigned in the same pass when a match has none yet.
type Engine struct {
	rand *rand.Rand
}

// NewEngine wires the random source used for tie-break jitter. Orderings are
// deterministic for a fixed source.
func NewEngine(r *rand.Rand) *Engine {
	return &Engine{rand: r}
}

// Order annotates and returns the matches in their final sequence. Matches
// whose stage is not in the stages slice are left untouched and omitted.
// With no courts there is nothing to distribute over, so the input is
// returned as is.
func (e *Engine) Order(stages []*models.Stage, matches []*models.Match, courts []*models.TournamentCourt) []*models.Match {
	if len(matches) == 0 {
		return []*models.Match{}
	}
	if len(courts) == 0 {
		return matches
	}

	sortedStages := make([]*models.Stage, len(stages))
	copy(sortedStages, stages)
	sort.SliceStable(sortedStages, func(i, j int) bool {
		return sortedStages[i].Order < sortedStages[j].Order
	})

	matchesByStage := make(map[int][]*models.Match)
	for _, match := range matches {
		if match.StageID == nil {
			continue
		}
		matchesByStage[*match.StageID] = append(matchesByStage[*match.StageID], match)
	}

	ordered := make([]*models.Match, 0, len(matches))
	globalOrder := 1

	for _, stage := range sortedStages {
		stageMatches := matchesByStage[stage.ID]
		if len(stageMatches) == 0 {
			continue
		}

		var stageOrdered []*models.Match
		if stage.StageType == models.StageTypeGroup {
			stageOrdered = e.orderGroupStage(stageMatches, courts, globalOrder)
		} else {
			stageOrdered = e.orderEliminationStage(stageMatches, courts, globalOrder)
		}

		ordered = append(ordered, stageOrdered...)
		globalOrder += len(stageOrdered)
	}

	return ordered
}

// orderGroupStage picks between two court strategies. When each group can
// have a court of its own the groups are pinned to courts; otherwise the
// whole pool is ordered globally and dealt across courts in rotation.
func (e *Engine) orderGroupStage(matches []*models.Match, courts []*models.TournamentCourt, startOrder int) []*models.Match {
	groupKeys, matchesByGroup := groupMatches(matches)

	if len(groupKeys) == len(courts) && len(groupKeys) > 1 {
		return e.orderWithDedicatedCourts(groupKeys, matchesByGroup, courts, startOrder)
	}
	return e.orderWithAlternatingCourts(groupKeys, matchesByGroup, courts, startOrder)
}

// orderWithDedicatedCourts pins group k to court k. Each group's queue is
// couple-aware ordered, then queues are interleaved position by position so
// every court's k-th match belongs to the same playing block.
func (e *Engine) orderWithDedicatedCourts(groupKeys []int, matchesByGroup map[int][]*models.Match, courts []*models.TournamentCourt, startOrder int) []*models.Match {
	courtQueues := make([][]*models.Match, 0, len(groupKeys))
	maxQueueLen := 0
	for _, key := range groupKeys {
		queue := e.coupleAwareOrder(matchesByGroup[key])
		courtQueues = append(courtQueues, queue)
		if len(queue) > maxQueueLen {
			maxQueueLen = len(queue)
		}
	}

	ordered := make([]*models.Match, 0, len(groupKeys)*maxQueueLen)
	currentOrder := startOrder

	for matchIndex := 0; matchIndex < maxQueueLen; matchIndex++ {
		for courtIndex, queue := range courtQueues {
			if matchIndex >= len(queue) {
				continue
			}
			match := queue[matchIndex]

			round := matchIndex + 1
			annotate(match, currentOrder, currentOrder-startOrder+1, round)
			setIntPtr(&match.OrderInGroup, matchIndex+1)
			match.PriorityScore = priorityScore(match, round, courtIndex)

			if match.CourtID == nil {
				setIntPtr(&match.CourtID, courts[courtIndex%len(courts)].CourtID)
			}

			ordered = append(ordered, match)
			currentOrder++
		}
	}

	return ordered
}

// orderWithAlternatingCourts orders the whole pool with the couple-aware
// heuristic, deals matches to courts in rotation, then interleaves the court
// lanes round by round.
func (e *Engine) orderWithAlternatingCourts(groupKeys []int, matchesByGroup map[int][]*models.Match, courts []*models.TournamentCourt, startOrder int) []*models.Match {
	pooled := make([]*models.Match, 0)
	for _, key := range groupKeys {
		pooled = append(pooled, matchesByGroup[key]...)
	}

	globallyOrdered := e.coupleAwareOrder(pooled)

	numCourts := len(courts)
	courtLanes := make([][]*models.Match, numCourts)
	for i, match := range globallyOrdered {
		lane := i % numCourts
		courtLanes[lane] = append(courtLanes[lane], match)
	}

	maxLaneLen := 0
	for _, lane := range courtLanes {
		if len(lane) > maxLaneLen {
			maxLaneLen = len(lane)
		}
	}

	ordered := make([]*models.Match, 0, len(globallyOrdered))
	currentOrder := startOrder

	for roundIndex := 0; roundIndex < maxLaneLen; roundIndex++ {
		for courtIndex := 0; courtIndex < numCourts; courtIndex++ {
			if roundIndex >= len(courtLanes[courtIndex]) {
				continue
			}
			match := courtLanes[courtIndex][roundIndex]

			round := roundIndex + 1
			annotate(match, currentOrder, currentOrder-startOrder+1, round)
			setIntPtr(&match.OrderInGroup, positionInGroup(match, matchesByGroup))
			match.PriorityScore = priorityScore(match, round, courtIndex)

			if match.CourtID == nil {
				setIntPtr(&match.CourtID, courts[courtIndex].CourtID)
			}

			ordered = append(ordered, match)
			currentOrder++
		}
	}

	return ordered
}

// orderEliminationStage processes rounds in ascending order; within a round
// matches are sorted by bracket and bracket position, then courts rotate.
func (e *Engine) orderEliminationStage(matches []*models.Match, courts []*models.TournamentCourt, startOrder int) []*models.Match {
	matchesByRound := make(map[int][]*models.Match)
	maxRound := 0
	for _, match := range matches {
		round := 1
		if match.RoundNumber != nil {
			round = *match.RoundNumber
		}
		matchesByRound[round] = append(matchesByRound[round], match)
		if round > maxRound {
			maxRound = round
		}
	}

	ordered := make([]*models.Match, 0, len(matches))
	currentOrder := startOrder
	courtIndex := 0

	for round := 1; round <= maxRound; round++ {
		roundMatches := matchesByRound[round]
		if len(roundMatches) == 0 {
			continue
		}

		sort.SliceStable(roundMatches, func(i, j int) bool {
			bi, bj := intOrZero(roundMatches[i].BracketID), intOrZero(roundMatches[j].BracketID)
			if bi != bj {
				return bi < bj
			}
			return intOrZero(roundMatches[i].BracketPosition) < intOrZero(roundMatches[j].BracketPosition)
		})

		for _, match := range roundMatches {
			annotate(match, currentOrder, currentOrder-startOrder+1, round)
			match.PriorityScore = priorityScore(match, round, courtIndex)

			if match.CourtID == nil {
				setIntPtr(&match.CourtID, courts[courtIndex%len(courts)].CourtID)
				courtIndex++
			}

			ordered = append(ordered, match)
			currentOrder++
		}
	}

	return ordered
}

// priorityScore derives a stable fine-grained sort value, lower is earlier.
// It carries no meaning beyond ordering.
func priorityScore(match *models.Match, round, courtIndex int) *float64 {
	score := float64(round)*100 +
		float64(courtIndex)*0.1 +
		float64(intOrZero(match.GroupID))*0.01 +
		float64(intOrZero(match.BracketID))*0.01
	return &score
}

func annotate(match *models.Match, displayOrder, orderInStage, roundNumber int) {
	setIntPtr(&match.DisplayOrder, displayOrder)
	setIntPtr(&match.OrderInStage, orderInStage)
	setIntPtr(&match.RoundNumber, roundNumber)
}

// groupMatches buckets matches by group id keeping first-seen key order, so
// court pinning is stable for a given input sequence.
func groupMatches(matches []*models.Match) ([]int, map[int][]*models.Match) {
	keys := make([]int, 0)
	byGroup := make(map[int][]*models.Match)
	for _, match := range matches {
		key := intOrZero(match.GroupID)
		if _, seen := byGroup[key]; !seen {
			keys = append(keys, key)
		}
		byGroup[key] = append(byGroup[key], match)
	}
	return keys, byGroup
}

func positionInGroup(match *models.Match, matchesByGroup map[int][]*models.Match) int {
	groupMatches := matchesByGroup[intOrZero(match.GroupID)]
	for i, m := range groupMatches {
		if m == match {
			return i + 1
		}
	}
	return len(groupMatches)
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func setIntPtr(dst **int, value int) {
	v := value
	*dst = &v
}
