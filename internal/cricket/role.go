package cricket

import "strings"

// ClassifierConfig holds the thresholds behind the unknown-role heuristic.
// A player with material batting AND bowling history becomes an all-rounder;
// anything else defaults to batsman.
type ClassifierConfig struct {
	MinBattingRuns    int
	MinBowlingWickets int
}

func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		MinBattingRuns:    150,
		MinBowlingWickets: 8,
	}
}

var roleAliases = map[string]Role{
	"bat":          RoleBatsman,
	"batsman":      RoleBatsman,
	"batter":       RoleBatsman,
	"opening bat":  RoleBatsman,
	"bwl":          RoleBowler,
	"bowl":         RoleBowler,
	"bowler":       RoleBowler,
	"fast bowler":  RoleBowler,
	"spin bowler":  RoleBowler,
	"spinner":      RoleBowler,
	"ar":           RoleAllRounder,
	"all rounder":  RoleAllRounder,
	"all-rounder":  RoleAllRounder,
	"allrounder":   RoleAllRounder,
	"wk":           RoleWicketKeeper,
	"keeper":       RoleWicketKeeper,
	"wicketkeeper": RoleWicketKeeper,
	"wicket keeper": RoleWicketKeeper,
	"wicket-keeper": RoleWicketKeeper,
	"wk-batsman":    RoleWicketKeeper,
	"wk batsman":    RoleWicketKeeper,
}

// ClassifyRole canonicalizes a source-provided role label. The second return
// reports whether the label itself was recognized; callers fall back to
// InferRole when it is false.
func ClassifyRole(raw string) (Role, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if role, ok := roleAliases[normalized]; ok {
		return role, true
	}
	if r := Role(strings.ToUpper(normalized)); r.Valid() {
		return r, true
	}
	return RoleBatsman, false
}

// InferRole resolves an unrecognized role label from the stat profile.
func InferRole(batting BattingAggregates, bowling BowlingAggregates, cfg ClassifierConfig) Role {
	if batting.Runs >= cfg.MinBattingRuns && bowling.Wickets >= cfg.MinBowlingWickets {
		return RoleAllRounder
	}
	if bowling.Wickets >= cfg.MinBowlingWickets && batting.Runs < cfg.MinBattingRuns {
		return RoleBowler
	}
	return RoleBatsman
}

// ResolveRole combines label classification with the stat heuristic.
func ResolveRole(raw string, batting BattingAggregates, bowling BowlingAggregates, cfg ClassifierConfig) Role {
	if role, ok := ClassifyRole(raw); ok {
		return role
	}
	return InferRole(batting, bowling, cfg)
}
