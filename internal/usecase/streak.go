package usecase

import (
	"sort"
	"time"

	"github.com/andriansah/cf-dashboard/internal/domain/submission"
)

// StreakInfo summarizes consecutive-day activity. Current is 0 when the most
// recent activity is older than yesterday, even if Longest is positive.
type StreakInfo struct {
	Current      int
	Longest      int
	LastActivity time.Time
}

// CalculateStreak derives streaks from the distinct UTC calendar days that
// contain at least one submission. now anchors the today/yesterday recency
// check for the current streak.
func CalculateStreak(subs []submission.Submission, now time.Time) StreakInfo {
	if len(subs) == 0 {
		return StreakInfo{}
	}

	daySet := make(map[time.Time]struct{}, len(subs))
	var lastActivity time.Time
	for _, sub := range subs {
		daySet[dayOf(sub.CreatedAt)] = struct{}{}
		if sub.CreatedAt.After(lastActivity) {
			lastActivity = sub.CreatedAt
		}
	}

	days := make([]time.Time, 0, len(daySet))
	for day := range daySet {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	info := StreakInfo{LastActivity: lastActivity}

	today := dayOf(now)
	gapFromToday := int(today.Sub(days[0]) / (24 * time.Hour))
	if gapFromToday <= 1 {
		info.Current = 1
		for i := 1; i < len(days); i++ {
			if int(days[i-1].Sub(days[i])/(24*time.Hour)) != 1 {
				break
			}
			info.Current++
		}
	}

	run := 1
	info.Longest = 1
	for i := 1; i < len(days); i++ {
		if int(days[i-1].Sub(days[i])/(24*time.Hour)) == 1 {
			run++
		} else {
			run = 1
		}
		if run > info.Longest {
			info.Longest = run
		}
	}

	return info
}
