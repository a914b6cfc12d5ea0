package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type ScoringType string

const (
	ScoringPoints ScoringType = "points"
	ScoringGames  ScoringType = "games"
	ScoringBoth   ScoringType = "both"
)

type MatchFormat string

const (
	FormatRoundRobin  MatchFormat = "round_robin"
	FormatSwissSystem MatchFormat = "swiss_system"
)

type WinCriteria string

const (
	WinCriteriaBestOf    WinCriteria = "best_of"
	WinCriteriaAllGames  WinCriteria = "all_games"
	WinCriteriaTimeBased WinCriteria = "time_based"
)

type TiebreakerOption string

const (
	TiebreakerPoints     TiebreakerOption = "points"
	TiebreakerHeadToHead TiebreakerOption = "head_to_head"
	TiebreakerGamesDiff  TiebreakerOption = "games_diff"
	TiebreakerGamesWon   TiebreakerOption = "games_won"
	TiebreakerMatchesWon TiebreakerOption = "matches_won"
)

type SchedulingPriority string

const (
	PriorityCourtEfficiency SchedulingPriority = "court_efficiency"
	PriorityPlayerRest      SchedulingPriority = "player_rest"
)

// ScoringSystem describes how completed matches convert into table points.
type ScoringSystem struct {
	Type     ScoringType `json:"type"`
	Win      int         `json:"win"`
	Draw     int         `json:"draw"`
	Loss     int         `json:"loss"`
	GameWin  int         `json:"game_win"`
	GameLoss int         `json:"game_loss"`
}

// MatchRules describes how matches are generated and played within a stage.
type MatchRules struct {
	Format              MatchFormat `json:"format"`
	MatchesPerOpponent  int         `json:"matches_per_opponent"`
	GamesPerMatch       int         `json:"games_per_match"`
	WinCriteria         WinCriteria `json:"win_criteria"`
	TimeLimited         bool        `json:"time_limited"`
	TimeLimitMinutes    int         `json:"time_limit_minutes"`
	BreakBetweenMatches int         `json:"break_between_matches"`
}

// AdvancementRule describes who leaves a group stage and for which bracket.
type AdvancementRule struct {
	TopN        int                `json:"top_n"`
	ToBracket   BracketType        `json:"to_bracket"`
	Tiebreakers []TiebreakerOption `json:"tiebreakers"`
}

type SchedulingPrefs struct {
	AutoSchedule   bool               `json:"auto_schedule"`
	OverlapAllowed bool               `json:"overlap_allowed"`
	Priority       SchedulingPriority `json:"priority"`
}

// StageConfig is the typed form of the stage "config" JSONB column. Missing
// fields fall back to defaults when the row is scanned, so stored documents
// may be partial.
type StageConfig struct {
	ScoringSystem   ScoringSystem   `json:"scoring_system"`
	MatchRules      MatchRules      `json:"match_rules"`
	AdvancementRule AdvancementRule `json:"advancement_rule"`
	Scheduling      SchedulingPrefs `json:"scheduling"`
}

func DefaultStageConfig() StageConfig {
	return StageConfig{
		ScoringSystem: ScoringSystem{
			Type:     ScoringPoints,
			Win:      3,
			Draw:     1,
			Loss:     0,
			GameWin:  1,
			GameLoss: 0,
		},
		MatchRules: MatchRules{
			Format:              FormatRoundRobin,
			MatchesPerOpponent:  1,
			GamesPerMatch:       3,
			WinCriteria:         WinCriteriaBestOf,
			TimeLimited:         false,
			TimeLimitMinutes:    90,
			BreakBetweenMatches: 30,
		},
		AdvancementRule: AdvancementRule{
			TopN:      2,
			ToBracket: BracketTypeMain,
			Tiebreakers: []TiebreakerOption{
				TiebreakerPoints,
				TiebreakerHeadToHead,
				TiebreakerGamesDiff,
				TiebreakerGamesWon,
			},
		},
		Scheduling: SchedulingPrefs{
			AutoSchedule:   true,
			OverlapAllowed: false,
			Priority:       PriorityCourtEfficiency,
		},
	}
}

// UnmarshalJSON decodes over the defaults, so absent fields keep them.
func (c *StageConfig) UnmarshalJSON(data []byte) error {
	cfg := DefaultStageConfig()
	type plain StageConfig
	if err := json.Unmarshal(data, (*plain)(&cfg)); err != nil {
		return err
	}
	cfg.normalize()
	*c = cfg
	return nil
}

// normalize pulls out-of-range numeric values back to their defaults. Enum
// values are checked separately by Validate at stage creation.
func (c *StageConfig) normalize() {
	if c.MatchRules.MatchesPerOpponent < 1 {
		c.MatchRules.MatchesPerOpponent = 1
	}
	if c.MatchRules.GamesPerMatch < 1 {
		c.MatchRules.GamesPerMatch = 3
	}
	if c.MatchRules.TimeLimitMinutes <= 0 {
		c.MatchRules.TimeLimitMinutes = 90
	}
	if c.MatchRules.BreakBetweenMatches < 0 {
		c.MatchRules.BreakBetweenMatches = 30
	}
	if c.AdvancementRule.TopN < 1 {
		c.AdvancementRule.TopN = 2
	}
	if len(c.AdvancementRule.Tiebreakers) == 0 {
		c.AdvancementRule.Tiebreakers = DefaultStageConfig().AdvancementRule.Tiebreakers
	}
	if c.ScoringSystem.Win < 0 {
		c.ScoringSystem.Win = 3
	}
}

// Validate rejects unknown enum values. Called once at stage creation;
// reads trust the stored document.
func (c StageConfig) Validate() error {
	switch c.ScoringSystem.Type {
	case ScoringPoints, ScoringGames, ScoringBoth:
	default:
		return fmt.Errorf("unknown scoring type %q", c.ScoringSystem.Type)
	}
	switch c.MatchRules.Format {
	case FormatRoundRobin, FormatSwissSystem:
	default:
		return fmt.Errorf("unknown match format %q", c.MatchRules.Format)
	}
	switch c.MatchRules.WinCriteria {
	case WinCriteriaBestOf, WinCriteriaAllGames, WinCriteriaTimeBased:
	default:
		return fmt.Errorf("unknown win criteria %q", c.MatchRules.WinCriteria)
	}
	switch c.AdvancementRule.ToBracket {
	case BracketTypeMain, BracketTypeSilver, BracketTypeBronze:
	default:
		return fmt.Errorf("unknown advancement bracket %q", c.AdvancementRule.ToBracket)
	}
	for _, tb := range c.AdvancementRule.Tiebreakers {
		switch tb {
		case TiebreakerPoints, TiebreakerHeadToHead, TiebreakerGamesDiff, TiebreakerGamesWon, TiebreakerMatchesWon:
		default:
			return fmt.Errorf("unknown tiebreaker %q", tb)
		}
	}
	switch c.Scheduling.Priority {
	case PriorityCourtEfficiency, PriorityPlayerRest:
	default:
		return fmt.Errorf("unknown scheduling priority %q", c.Scheduling.Priority)
	}
	return nil
}

func (c StageConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *StageConfig) Scan(src interface{}) error {
	if src == nil {
		*c = DefaultStageConfig()
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("stage config: cannot scan %T", src)
	}
	if len(raw) == 0 {
		*c = DefaultStageConfig()
		return nil
	}
	return json.Unmarshal(raw, c)
}
