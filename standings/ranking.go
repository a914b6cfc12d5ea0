package standings

import (
	"sort"

	"github.com/Dosada05/padel-system/models"
)

// Rank turns raw stat rows into positioned standings. Rows are ordered by
// total points; runs of equal points are reordered by the configured
// tiebreaker list, applied in priority order. Head-to-head only applies
// when exactly two entries are tied, per the advancement rules; with a
// larger tie it is skipped and the next tiebreaker decides. Matches won
// and couple id close out any remaining tie so the result is stable.
//
// The matches slice provides head-to-head evidence and must cover the
// same scope as the stats rows (one group, or the whole tournament).
func Rank(statsList []*models.CoupleStats, matches []*models.Match, tiebreakers []models.TiebreakerOption) []models.StandingEntry {
	ranked := make([]*models.CoupleStats, len(statsList))
	copy(ranked, statsList)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalPoints != ranked[j].TotalPoints {
			return ranked[i].TotalPoints > ranked[j].TotalPoints
		}
		return ranked[i].CoupleID < ranked[j].CoupleID
	})

	if len(tiebreakers) == 0 {
		tiebreakers = models.DefaultStageConfig().AdvancementRule.Tiebreakers
	}

	// Walk runs of equal total points and resolve each run independently.
	i := 0
	for i < len(ranked) {
		j := i + 1
		for j < len(ranked) && ranked[j].TotalPoints == ranked[i].TotalPoints {
			j++
		}
		if j-i > 1 {
			resolveTiedRun(ranked[i:j], matches, tiebreakers)
		}
		i = j
	}

	entries := make([]models.StandingEntry, len(ranked))
	for idx, stats := range ranked {
		entries[idx] = models.StandingEntry{
			Position:    idx + 1,
			GamesDiff:   stats.GamesWon - stats.GamesLost,
			CoupleStats: *stats,
		}
	}
	return entries
}

func resolveTiedRun(run []*models.CoupleStats, matches []*models.Match, tiebreakers []models.TiebreakerOption) {
	headToHeadUsable := len(run) == 2

	sort.SliceStable(run, func(i, j int) bool {
		a, b := run[i], run[j]
		for _, tiebreaker := range tiebreakers {
			switch tiebreaker {
			case models.TiebreakerPoints:
				if a.TotalPoints != b.TotalPoints {
					return a.TotalPoints > b.TotalPoints
				}
			case models.TiebreakerHeadToHead:
				if !headToHeadUsable {
					continue
				}
				aWins, bWins := headToHeadWins(matches, a.CoupleID, b.CoupleID)
				if aWins != bWins {
					return aWins > bWins
				}
			case models.TiebreakerGamesDiff:
				aDiff := a.GamesWon - a.GamesLost
				bDiff := b.GamesWon - b.GamesLost
				if aDiff != bDiff {
					return aDiff > bDiff
				}
			case models.TiebreakerGamesWon:
				if a.GamesWon != b.GamesWon {
					return a.GamesWon > b.GamesWon
				}
			case models.TiebreakerMatchesWon:
				if a.MatchesWon != b.MatchesWon {
					return a.MatchesWon > b.MatchesWon
				}
			}
		}
		if a.MatchesWon != b.MatchesWon {
			return a.MatchesWon > b.MatchesWon
		}
		return a.CoupleID < b.CoupleID
	})
}

// headToHeadWins counts decided wins in direct meetings of the two couples.
// Draws and undecided results count for neither side.
func headToHeadWins(matches []*models.Match, coupleA, coupleB int) (int, int) {
	winsA, winsB := 0, 0
	for _, match := range matches {
		samePair := (match.Couple1ID == coupleA && match.Couple2ID == coupleB) ||
			(match.Couple1ID == coupleB && match.Couple2ID == coupleA)
		if !samePair {
			continue
		}
		outcome, winnerID := ResolveOutcome(match)
		if outcome != OutcomeWinner {
			continue
		}
		switch winnerID {
		case coupleA:
			winsA++
		case coupleB:
			winsB++
		}
	}
	return winsA, winsB
}
