package profile

import "time"

// UserProfile is the public snapshot of one Codeforces account. It is fetched
// once per dashboard session and refreshed only by explicit reload.
type UserProfile struct {
	Handle        string
	Rating        int
	MaxRating     int
	Rank          string
	MaxRank       string
	Contribution  int
	FriendOfCount int
	Organization  string
	Country       string
	AvatarURL     string
	RegisteredAt  time.Time
	LastOnlineAt  time.Time
}

// RatingChange records one contest's effect on a user's rating. The source
// returns rating changes in ascending chronological order and the analytics
// layer relies on that ordering.
type RatingChange struct {
	ContestID   int
	ContestName string
	Rank        int
	UpdatedAt   time.Time
	OldRating   int
	NewRating   int
}

// Delta is the rating movement produced by the contest.
func (c RatingChange) Delta() int {
	return c.NewRating - c.OldRating
}
