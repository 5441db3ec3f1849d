package usecase

import (
	"math"

	"github.com/andriansah/cf-dashboard/internal/domain/profile"
)

const (
	predictionMinContests = 3
	predictionWindow      = 5
)

// PredictRating extrapolates the next rating from recent contest deltas: the
// mean of the last five deltas (or fewer, down to three) added to the most
// recent rating. The second return is false when fewer than three rated
// contests exist and no prediction is possible.
func PredictRating(history []profile.RatingChange) (int, bool) {
	if len(history) < predictionMinContests {
		return 0, false
	}

	window := history
	if len(window) > predictionWindow {
		window = window[len(window)-predictionWindow:]
	}

	sum := 0
	for _, change := range window {
		sum += change.Delta()
	}
	mean := float64(sum) / float64(len(window))

	latest := history[len(history)-1].NewRating
	return latest + int(math.Round(mean)), true
}
