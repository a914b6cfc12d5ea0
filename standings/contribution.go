package standings

import (
	"github.com/Dosada05/padel-system/models"
)

type Outcome int

const (
	// OutcomeUndecided means the match carries no standings contribution.
	OutcomeUndecided Outcome = iota
	OutcomeDraw
	OutcomeWinner
)

// HasReportedScore reports whether a match result is complete enough to
// count: at least one set with a non-zero score on either side.
func HasReportedScore(games models.GameScores) bool {
	for _, game := range games {
		if game.Couple1Score != 0 || game.Couple2Score != 0 {
			return true
		}
	}
	return false
}

// ResolveOutcome classifies a reported result. Draw detection runs in strict
// precedence order before the winner reference is consulted:
//  1. a single set with equal scores is a draw
//  2. a multi-set match with equal set wins per side is a draw
//  3. a winner reference matching neither couple is a draw
//  4. otherwise the winner reference decides
//
// A match with no usable winner and no draw condition stays undecided.
func ResolveOutcome(match *models.Match) (Outcome, int) {
	games := match.Games

	if len(games) == 1 && games[0].Couple1Score == games[0].Couple2Score {
		return OutcomeDraw, 0
	}

	if len(games) > 1 {
		setWins1, setWins2 := 0, 0
		for _, game := range games {
			switch {
			case game.Couple1Score > game.Couple2Score:
				setWins1++
			case game.Couple2Score > game.Couple1Score:
				setWins2++
			}
		}
		if setWins1 == setWins2 {
			return OutcomeDraw, 0
		}
	}

	if match.WinnerCoupleID != nil {
		winner := *match.WinnerCoupleID
		if winner != match.Couple1ID && winner != match.Couple2ID {
			return OutcomeDraw, 0
		}
		return OutcomeWinner, winner
	}

	return OutcomeUndecided, 0
}

// Contribution computes the stat deltas a match result adds for each couple.
// The returned flag is false when the match does not contribute, either
// because no score has been reported or because the outcome is undecided.
// Incremental maintenance and full recalculation both go through this
// function, which is what keeps them in agreement.
func Contribution(match *models.Match, scoring models.ScoringSystem) (couple1, couple2 models.StatsDelta, counts bool) {
	if !HasReportedScore(match.Games) {
		return models.StatsDelta{}, models.StatsDelta{}, false
	}

	outcome, winnerID := ResolveOutcome(match)
	if outcome == OutcomeUndecided {
		return models.StatsDelta{}, models.StatsDelta{}, false
	}

	couple1.MatchesPlayed = 1
	couple2.MatchesPlayed = 1

	// Games tally raw per-set scores, not set wins.
	for _, game := range match.Games {
		couple1.GamesWon += game.Couple1Score
		couple1.GamesLost += game.Couple2Score
		couple2.GamesWon += game.Couple2Score
		couple2.GamesLost += game.Couple1Score
	}

	switch {
	case outcome == OutcomeDraw:
		couple1.MatchesDrawn = 1
		couple2.MatchesDrawn = 1
		couple1.TotalPoints = scoring.Draw
		couple2.TotalPoints = scoring.Draw
	case winnerID == match.Couple1ID:
		couple1.MatchesWon = 1
		couple2.MatchesLost = 1
		couple1.TotalPoints = scoring.Win
		couple2.TotalPoints = scoring.Loss
	default:
		couple2.MatchesWon = 1
		couple1.MatchesLost = 1
		couple2.TotalPoints = scoring.Win
		couple1.TotalPoints = scoring.Loss
	}

	if scoring.GameWin > 0 {
		couple1.TotalPoints += couple1.GamesWon * scoring.GameWin
		couple2.TotalPoints += couple2.GamesWon * scoring.GameWin
	}
	if scoring.GameLoss > 0 {
		couple1.TotalPoints += couple1.GamesLost * scoring.GameLoss
		couple2.TotalPoints += couple2.GamesLost * scoring.GameLoss
	}

	return couple1, couple2, true
}
