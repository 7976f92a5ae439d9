// Package level maps cumulative points to a level using a staircase schedule: advancing from level L costs
// 100 + 50*floor((L-1)/10) points, so the cost goes up by 50 every 10 levels.
package level

const (
	baseCost      = 100
	costStep      = 50
	levelsPerStep = 10
)

// PointsToNextLevel returns the points needed to advance from level l to l+1.
func PointsToNextLevel(l int) int {
	if l < 1 {
		l = 1
	}
	return baseCost + costStep*((l-1)/levelsPerStep)
}

// Info is the level reached with a point total.
type Info struct {
	Level int
	// CurrentLevelProgress is the number of points earned within the current level.
	CurrentLevelProgress int
	// NextLevelPoints is the cost of the next level up.
	NextLevelPoints int
}

// FromTotalPoints returns the level reached with total points. Negative totals count as zero.
func FromTotalPoints(total int) Info {
	remaining := max(total, 0)
	l := 1
	for remaining >= PointsToNextLevel(l) {
		remaining -= PointsToNextLevel(l)
		l++
	}
	return Info{
		Level:                l,
		CurrentLevelProgress: remaining,
		NextLevelPoints:      PointsToNextLevel(l),
	}
}

// PointsRemaining returns how many points are missing to reach the next level.
func (i Info) PointsRemaining() int {
	return i.NextLevelPoints - i.CurrentLevelProgress
}

// Percent returns the progress within the current level in the range [0, 100].
func (i Info) Percent() int {
	if i.NextLevelPoints <= 0 {
		return 0
	}
	return min(100, i.CurrentLevelProgress*100/i.NextLevelPoints)
}

// Stats is the points bookkeeping stored under "stats" in the profile document.
type Stats struct {
	TotalPoints    int    `json:"totalPoints"`
	PointsThisWeek int    `json:"pointsThisWeek"`
	LastWeekID     string `json:"lastWeekId,omitempty"`
	Level          int    `json:"level,omitempty"`
}
