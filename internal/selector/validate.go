package selector

import (
	"fmt"

	"github.com/crickwise/dream11-optimizer/internal/cricket"
)

// ValidateLineup re-checks every lineup invariant against a config. The
// selector only emits valid lineups; this is the independent check callers
// and tests use to hold it to that.
func ValidateLineup(lineup *cricket.Lineup, cfg Config, ctx cricket.MatchContext) error {
	cfg.ApplyDefaults()

	if len(lineup.Players) != cfg.TeamSize {
		return fmt.Errorf("lineup has %d players, want %d", len(lineup.Players), cfg.TeamSize)
	}

	seen := make(map[string]bool, len(lineup.Players))
	roleCount := map[cricket.Role]int{}
	teamCount := map[string]int{}
	var cost float64
	for _, slot := range lineup.Players {
		member := slot.Player
		if seen[member.ID] {
			return fmt.Errorf("duplicate player %s in lineup", member.ID)
		}
		seen[member.ID] = true
		roleCount[member.Role]++
		teamCount[member.Team]++
		cost += member.Cost
	}

	if cost > cfg.Budget {
		return fmt.Errorf("lineup cost %.1f exceeds budget %.1f", cost, cfg.Budget)
	}
	for _, role := range cricket.Roles {
		bounds := cfg.RoleBounds[role]
		if roleCount[role] < bounds.Min || roleCount[role] > bounds.Max {
			return fmt.Errorf("role %s count %d outside bounds %d-%d", role, roleCount[role], bounds.Min, bounds.Max)
		}
	}
	for _, team := range []string{ctx.Team1, ctx.Team2} {
		if teamCount[team] < 1 {
			return fmt.Errorf("team %s not represented", team)
		}
		if teamCount[team] > cfg.MaxPerTeam {
			return fmt.Errorf("team %s has %d players, cap is %d", team, teamCount[team], cfg.MaxPerTeam)
		}
	}

	if lineup.CaptainID == "" || lineup.ViceCaptainID == "" || lineup.CaptainID == lineup.ViceCaptainID {
		return fmt.Errorf("captain and vice-captain must be distinct lineup members")
	}
	if !seen[lineup.CaptainID] || !seen[lineup.ViceCaptainID] {
		return fmt.Errorf("captaincy assigned outside the lineup")
	}
	return nil
}
