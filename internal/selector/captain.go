package selector

import "github.com/crickwise/dream11-optimizer/internal/cricket"

const (
	captainMultiplier     = 2.0
	viceCaptainMultiplier = 1.5
)

// AssignCaptaincy marks the highest expected scorer as captain and the next
// as vice-captain, applying the fantasy multipliers to their slot points and
// recomputing the lineup total. Tie-breaks follow the selection ordering:
// higher points, then lower cost, then lexical id.
func AssignCaptaincy(lineup *cricket.Lineup) {
	if len(lineup.Players) == 0 {
		return
	}

	captain, vice := -1, -1
	for i := range lineup.Players {
		member := lineup.Players[i].Player
		if captain == -1 || rankLess(member.ExpectedPoints, lineup.Players[captain].Player.ExpectedPoints, member, lineup.Players[captain].Player) {
			vice = captain
			captain = i
			continue
		}
		if vice == -1 || rankLess(member.ExpectedPoints, lineup.Players[vice].Player.ExpectedPoints, member, lineup.Players[vice].Player) {
			vice = i
		}
	}

	var total float64
	for i := range lineup.Players {
		slot := &lineup.Players[i]
		slot.IsCaptain = i == captain
		slot.IsViceCaptain = i == vice
		slot.ExpectedPoints = slot.Player.ExpectedPoints
		switch {
		case slot.IsCaptain:
			slot.ExpectedPoints *= captainMultiplier
			lineup.CaptainID = slot.Player.ID
		case slot.IsViceCaptain:
			slot.ExpectedPoints *= viceCaptainMultiplier
			lineup.ViceCaptainID = slot.Player.ID
		}
		total += slot.ExpectedPoints
	}
	lineup.ExpectedPoints = total
}
