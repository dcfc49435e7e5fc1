package scoring

import "github.com/crickwise/dream11-optimizer/internal/cricket"

// Career aggregates carry totals, not per-match event lines, so the baseline
// estimate reconstructs a typical match from per-match averages. The share
// constants below encode observed T20 distributions (what fraction of runs
// come from boundaries, how often economical bowlers bowl a maiden, how many
// catches each role takes per match).
const (
	boundaryRunShare = 0.15
	sixRunShare      = 0.05
	lbwBowledShare   = 0.6
	maidenChanceEcon = 4.0
	maidenChance     = 0.2
	oversPerMatch    = 4.0

	catchesPerMatchKeeper = 1.2
	catchesPerMatchBowler = 0.5
	catchesPerMatchOther  = 0.8
	threeCatchChance      = 0.05
	stumpingsPerMatch     = 0.3
	runOutDirectPerMatch  = 0.1
	runOutAssistPerMatch  = 0.15
)

// EstimateCareerPoints forecasts per-match fantasy points from career
// aggregates alone. It is the baseline blended with recent form; a player with
// no career record at all scores zero here and the caller applies the
// neutral-score policy.
func EstimateCareerPoints(rec cricket.PlayerRecord, table PointsTable) float64 {
	hasBatting := rec.Batting.Matches > 0
	hasBowling := rec.Bowling.Matches > 0
	if !hasBatting && !hasBowling {
		return 0
	}

	points := table.LineupBonus

	if hasBatting {
		points += estimateBattingPoints(rec.Batting, table)
	}
	if hasBowling {
		points += estimateBowlingPoints(rec.Bowling, table)
	}
	points += estimateFieldingPoints(rec.Role, table)

	return points
}

func estimateBattingPoints(b cricket.BattingAggregates, table PointsTable) float64 {
	runsPerMatch := float64(b.Runs) / float64(b.Matches)

	points := runsPerMatch * table.RunPoints

	// Boundary estimate only for players who bat enough to accumulate them.
	if runsPerMatch >= 20 {
		points += runsPerMatch * boundaryRunShare * table.FourBonus
		points += runsPerMatch * sixRunShare * table.SixBonus
	}

	switch {
	case runsPerMatch >= 100:
		points += table.CenturyBonus
	case runsPerMatch >= 75:
		points += table.SeventyFiveBonus
	case runsPerMatch >= 50:
		points += table.HalfCenturyBonus
	case runsPerMatch >= 25:
		points += table.TwentyFiveBonus
	}

	// Strike-rate penalty bands only apply to players who actually bat.
	if b.StrikeRate > 0 && (b.StrikeRate >= 100 || runsPerMatch >= 10) {
		points += bandPoints(table.StrikeRateBands, b.StrikeRate)
	}

	return points
}

func estimateBowlingPoints(b cricket.BowlingAggregates, table PointsTable) float64 {
	wicketsPerMatch := float64(b.Wickets) / float64(b.Matches)

	points := wicketsPerMatch * table.WicketPoints
	points += wicketsPerMatch * lbwBowledShare * table.LBWBowledBonus

	switch {
	case wicketsPerMatch >= 5:
		points += table.FiveWicketBonus
	case wicketsPerMatch >= 4:
		points += table.FourWicketBonus
	case wicketsPerMatch >= 3:
		points += table.ThreeWicketBonus
	}

	if b.Economy > 0 {
		// Dot-ball expectation from economy: six deliveries an over minus the
		// run rate, discounted when the bowler leaks more than a run a ball.
		dotsPerOver := 6 - b.Economy
		if dotsPerOver < 0 {
			dotsPerOver = 0
		}
		points += dotsPerOver * oversPerMatch * table.RunPoints

		if b.Economy < maidenChanceEcon {
			points += table.MaidenOverPoints * maidenChance
		}

		points += bandPoints(table.EconomyBands, b.Economy)
	}

	return points
}

func estimateFieldingPoints(role cricket.Role, table PointsTable) float64 {
	catchesPerMatch := catchesPerMatchOther
	switch role {
	case cricket.RoleWicketKeeper:
		catchesPerMatch = catchesPerMatchKeeper
	case cricket.RoleBowler:
		catchesPerMatch = catchesPerMatchBowler
	}

	points := catchesPerMatch*table.CatchPoints + threeCatchChance*table.ThreeCatchBonus
	points += runOutDirectPerMatch * table.RunOutDirectPoints
	points += runOutAssistPerMatch * table.RunOutIndirectPoints

	if role == cricket.RoleWicketKeeper {
		points += stumpingsPerMatch * table.StumpingPoints
	}

	return points
}
