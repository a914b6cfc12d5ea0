package standings

import (
	"testing"

	"github.com/Dosada05/padel-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pointsOnly = models.ScoringSystem{Type: models.ScoringPoints, Win: 3, Draw: 1, Loss: 0}

func decidedMatch(couple1, couple2 int, winner *int, games ...models.GameScore) *models.Match {
	return &models.Match{
		Couple1ID:      couple1,
		Couple2ID:      couple2,
		WinnerCoupleID: winner,
		Games:          games,
	}
}

func TestHasReportedScore(t *testing.T) {
	assert.False(t, HasReportedScore(nil))
	assert.False(t, HasReportedScore(models.GameScores{}))
	assert.False(t, HasReportedScore(models.GameScores{{Couple1Score: 0, Couple2Score: 0}}))
	assert.True(t, HasReportedScore(models.GameScores{{Couple1Score: 0, Couple2Score: 1}}))
	assert.True(t, HasReportedScore(models.GameScores{{}, {Couple1Score: 6}}))
}

func TestResolveOutcomeSingleSetDraw(t *testing.T) {
	winner := 1
	match := decidedMatch(1, 2, &winner, models.GameScore{Couple1Score: 6, Couple2Score: 6})

	// An equal single set is a draw even when a winner reference is present.
	outcome, winnerID := ResolveOutcome(match)
	assert.Equal(t, OutcomeDraw, outcome)
	assert.Zero(t, winnerID)
}

func TestResolveOutcomeEqualSetWinsDraw(t *testing.T) {
	match := decidedMatch(1, 2, nil,
		models.GameScore{Couple1Score: 6, Couple2Score: 2},
		models.GameScore{Couple1Score: 3, Couple2Score: 6},
	)

	outcome, _ := ResolveOutcome(match)
	assert.Equal(t, OutcomeDraw, outcome)
}

func TestResolveOutcomeForeignWinnerIsDraw(t *testing.T) {
	winner := 99
	match := decidedMatch(1, 2, &winner,
		models.GameScore{Couple1Score: 6, Couple2Score: 2},
		models.GameScore{Couple1Score: 6, Couple2Score: 3},
	)

	outcome, winnerID := ResolveOutcome(match)
	assert.Equal(t, OutcomeDraw, outcome)
	assert.Zero(t, winnerID)
}

func TestResolveOutcomeWinnerReference(t *testing.T) {
	winner := 2
	match := decidedMatch(1, 2, &winner,
		models.GameScore{Couple1Score: 2, Couple2Score: 6},
		models.GameScore{Couple1Score: 3, Couple2Score: 6},
	)

	outcome, winnerID := ResolveOutcome(match)
	assert.Equal(t, OutcomeWinner, outcome)
	assert.Equal(t, 2, winnerID)
}

func TestResolveOutcomeUndecidedWithoutWinner(t *testing.T) {
	match := decidedMatch(1, 2, nil, models.GameScore{Couple1Score: 6, Couple2Score: 2})

	outcome, _ := ResolveOutcome(match)
	assert.Equal(t, OutcomeUndecided, outcome)
}

func TestContributionSkipsUnreportedAndUndecided(t *testing.T) {
	_, _, counts := Contribution(decidedMatch(1, 2, nil), pointsOnly)
	assert.False(t, counts)

	// Reported but undecided: score present, no winner, no draw condition.
	_, _, counts = Contribution(decidedMatch(1, 2, nil, models.GameScore{Couple1Score: 6, Couple2Score: 2}), pointsOnly)
	assert.False(t, counts)
}

func TestContributionWin(t *testing.T) {
	winner := 1
	match := decidedMatch(1, 2, &winner,
		models.GameScore{Couple1Score: 6, Couple2Score: 2},
		models.GameScore{Couple1Score: 6, Couple2Score: 3},
	)

	couple1, couple2, counts := Contribution(match, pointsOnly)
	require.True(t, counts)

	assert.Equal(t, models.StatsDelta{
		MatchesPlayed: 1,
		MatchesWon:    1,
		GamesWon:      12,
		GamesLost:     5,
		TotalPoints:   3,
	}, couple1)
	assert.Equal(t, models.StatsDelta{
		MatchesPlayed: 1,
		MatchesLost:   1,
		GamesWon:      5,
		GamesLost:     12,
		TotalPoints:   0,
	}, couple2)
}

func TestContributionDraw(t *testing.T) {
	match := decidedMatch(1, 2, nil, models.GameScore{Couple1Score: 6, Couple2Score: 6})

	couple1, couple2, counts := Contribution(match, pointsOnly)
	require.True(t, counts)

	assert.Equal(t, 1, couple1.MatchesDrawn)
	assert.Equal(t, 1, couple2.MatchesDrawn)
	assert.Equal(t, 1, couple1.TotalPoints)
	assert.Equal(t, 1, couple2.TotalPoints)
	assert.Equal(t, 6, couple1.GamesWon)
	assert.Equal(t, 6, couple1.GamesLost)
}

func TestContributionGameBonus(t *testing.T) {
	winner := 1
	match := decidedMatch(1, 2, &winner,
		models.GameScore{Couple1Score: 6, Couple2Score: 2},
		models.GameScore{Couple1Score: 6, Couple2Score: 3},
	)

	scoring := models.DefaultStageConfig().ScoringSystem // win 3, game_win 1
	couple1, couple2, counts := Contribution(match, scoring)
	require.True(t, counts)

	assert.Equal(t, 3+12, couple1.TotalPoints)
	assert.Equal(t, 0+5, couple2.TotalPoints)
}

func TestContributionWinnerCouple2(t *testing.T) {
	winner := 2
	match := decidedMatch(1, 2, &winner,
		models.GameScore{Couple1Score: 1, Couple2Score: 6},
		models.GameScore{Couple1Score: 2, Couple2Score: 6},
	)

	couple1, couple2, counts := Contribution(match, pointsOnly)
	require.True(t, counts)
	assert.Equal(t, 1, couple2.MatchesWon)
	assert.Equal(t, 1, couple1.MatchesLost)
	assert.Equal(t, 3, couple2.TotalPoints)
	assert.Zero(t, couple1.TotalPoints)
}
