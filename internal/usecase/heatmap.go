package usecase

import (
	"time"

	"github.com/andriansah/cf-dashboard/internal/domain/submission"
)

// HeatmapCell is one calendar day of submission activity. Level discretizes
// the count into buckets 0 through 4 for rendering.
type HeatmapCell struct {
	Date  time.Time
	Count int
	Level int
}

// GenerateHeatmap produces one cell per calendar day in the inclusive
// [start, end] range. Days are bucketed in UTC. Zero-activity days still get
// a cell with level 0. An inverted range returns no cells.
func GenerateHeatmap(subs []submission.Submission, start, end time.Time) []HeatmapCell {
	startDay := dayOf(start)
	endDay := dayOf(end)
	if endDay.Before(startDay) {
		return nil
	}

	countByDay := make(map[time.Time]int, len(subs))
	for _, sub := range subs {
		countByDay[dayOf(sub.CreatedAt)]++
	}

	days := int(endDay.Sub(startDay)/(24*time.Hour)) + 1
	cells := make([]HeatmapCell, 0, days)
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		count := countByDay[day]
		cells = append(cells, HeatmapCell{
			Date:  day,
			Count: count,
			Level: activityLevel(count),
		})
	}
	return cells
}

// activityLevel maps a daily submission count to the highest bucket whose
// floor it meets: 0, 1-2, 3-5, 6-9, 10+.
func activityLevel(count int) int {
	switch {
	case count >= 10:
		return 4
	case count >= 6:
		return 3
	case count >= 3:
		return 2
	case count >= 1:
		return 1
	default:
		return 0
	}
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
