package report

import (
	"sort"
	"time"

	"fintrack/internal/core"
)

// DashboardGoalLimit is how many goals the dashboard widget lists.
const DashboardGoalLimit = 3

// Contribute adds delta to the goal's current amount without passing the target.
func Contribute(g core.Goal, delta core.Money) core.Goal {
	g.CurrentAmount = g.CurrentAmount.Add(delta).Min(g.TargetAmount)
	return g
}

func goalStatus(progress float64) core.GoalStatus {
	switch {
	case progress >= 100:
		return core.GoalCompleted
	case progress > 75:
		return core.GoalOnTrack
	case progress > 25:
		return core.GoalBehind
	default:
		return core.GoalAtRisk
	}
}

// GoalProgressFor computes progress without clamping; a goal is overdue when
// its deadline is before today and it is not complete.
func GoalProgressFor(g core.Goal, now time.Time) core.GoalProgress {
	progress := g.CurrentAmount.Percent(g.TargetAmount)
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.Cents < 0 {
		remaining = core.Money{}
	}
	today := core.DateOf(now)
	return core.GoalProgress{
		Goal:      g,
		Progress:  progress,
		Remaining: remaining,
		Completed: progress >= 100,
		Overdue:   !g.Deadline.IsZero() && g.Deadline.Before(today.Time) && progress < 100,
		Status:    goalStatus(progress),
	}
}

// RankGoals returns progress for every goal, highest progress first.
func RankGoals(goals []core.Goal, now time.Time) []core.GoalProgress {
	out := make([]core.GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, GoalProgressFor(g, now))
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Progress > out[b].Progress })
	return out
}

// TopGoals returns at most n goals by descending progress.
func TopGoals(goals []core.Goal, now time.Time, n int) []core.GoalProgress {
	ranked := RankGoals(goals, now)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// GroupByPriority buckets ranked goals by priority, each bucket ordered by
// descending progress.
func GroupByPriority(goals []core.Goal, now time.Time) core.GoalsByPriority {
	out := core.GoalsByPriority{
		High:   []core.GoalProgress{},
		Medium: []core.GoalProgress{},
		Low:    []core.GoalProgress{},
	}
	for _, p := range RankGoals(goals, now) {
		switch p.Goal.Priority {
		case core.PriorityHigh:
			out.High = append(out.High, p)
		case core.PriorityMedium:
			out.Medium = append(out.Medium, p)
		default:
			out.Low = append(out.Low, p)
		}
	}
	return out
}
