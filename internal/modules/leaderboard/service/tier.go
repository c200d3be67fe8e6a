package service

import "math"

// TierStatus describes where an all-time score sits on the tier ladder.
type TierStatus struct {
	Name          string
	NextTier      string
	CurrentPoints int
	TargetPoints  int
	Progress      float64
}

const MaxTier = "Max Level"

// Tier thresholds (all-time points).
const (
	PointsLegend      = 1000
	PointsStar        = 300
	PointsChampion    = 100
	PointsContributor = 25
	PointsNewcomer    = 0
)

// Weekly activity thresholds (points earned in the last 7 days).
const (
	WeeklyOnFire   = 50
	WeeklyTrending = 25
	WeeklyActive   = 10
)

var tiers = []struct {
	name   string
	points int
}{
	{"Newcomer", PointsNewcomer},
	{"Contributor", PointsContributor},
	{"Champion", PointsChampion},
	{"Star", PointsStar},
	{"Legend", PointsLegend},
}

// Tier places score on the ladder. Progress is the percentage of the way
// from the current tier's threshold to the next one.
func Tier(score int) TierStatus {
	score = max(score, 0)

	i := len(tiers) - 1
	for i > 0 && score < tiers[i].points {
		i--
	}

	status := TierStatus{Name: tiers[i].name, CurrentPoints: score}
	if i == len(tiers)-1 {
		status.NextTier = MaxTier
		status.TargetPoints = tiers[i].points
		status.Progress = 100
		return status
	}

	next := tiers[i+1]
	status.NextTier = next.name
	status.TargetPoints = next.points
	progress := float64(score-tiers[i].points) / float64(next.points-tiers[i].points) * 100
	status.Progress = math.Round(progress*100) / 100
	return status
}

// WeeklyLabel tags recent activity, or returns "" for a quiet week.
func WeeklyLabel(weeklyPoints int) string {
	switch {
	case weeklyPoints >= WeeklyOnFire:
		return "🔥 On Fire!"
	case weeklyPoints >= WeeklyTrending:
		return "⚡ Trending"
	case weeklyPoints >= WeeklyActive:
		return "📈 Active"
	default:
		return ""
	}
}
