package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/andriansah/cf-dashboard/internal/domain/contest"
	"github.com/andriansah/cf-dashboard/internal/infrastructure/settings"
	"github.com/andriansah/cf-dashboard/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

// decodeAndValidate reads the JSON request body into payload and runs the
// struct validators. It writes the error response itself and reports whether
// the handler should continue.
func (h *Handler) decodeAndValidate(ctx context.Context, w http.ResponseWriter, r *http.Request, payload any) bool {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		writeError(ctx, w, crerr.Mark(crerr.Wrap(err, "read request body"), usecase.ErrInvalidInput))
		return false
	}
	if len(raw) == 0 {
		writeError(ctx, w, crerr.Mark(crerr.New("request body is required"), usecase.ErrInvalidInput))
		return false
	}
	if err := sonic.Unmarshal(raw, payload); err != nil {
		writeError(ctx, w, crerr.Mark(crerr.Wrap(err, "decode request body"), usecase.ErrInvalidInput))
		return false
	}
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		writeError(ctx, w, crerr.Mark(crerr.Wrap(err, "validate request body"), usecase.ErrInvalidInput))
		return false
	}
	return true
}

type profileDTO struct {
	Handle        string `json:"handle"`
	Rating        int    `json:"rating"`
	MaxRating     int    `json:"max_rating"`
	Rank          string `json:"rank"`
	MaxRank       string `json:"max_rank"`
	Contribution  int    `json:"contribution"`
	FriendOfCount int    `json:"friend_of_count"`
	Organization  string `json:"organization,omitempty"`
	Country       string `json:"country,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	RegisteredAt  string `json:"registered_at,omitempty"`
	LastOnlineAt  string `json:"last_online_at,omitempty"`
}

type ratingChangeDTO struct {
	ContestID   int    `json:"contest_id"`
	ContestName string `json:"contest_name"`
	Rank        int    `json:"rank"`
	UpdatedAt   string `json:"updated_at"`
	OldRating   int    `json:"old_rating"`
	NewRating   int    `json:"new_rating"`
	Delta       int    `json:"delta"`
}

type tagStatsDTO struct {
	Solved   int     `json:"solved"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

type problemStatsDTO struct {
	Total        int                    `json:"total"`
	Solved       int                    `json:"solved"`
	Attempted    int                    `json:"attempted"`
	ByDifficulty map[int]int            `json:"by_difficulty"`
	ByTag        map[string]tagStatsDTO `json:"by_tag"`
}

type streakDTO struct {
	Current      int    `json:"current"`
	Longest      int    `json:"longest"`
	LastActivity string `json:"last_activity,omitempty"`
}

type dashboardDTO struct {
	Profile         profileDTO        `json:"profile"`
	RatingHistory   []ratingChangeDTO `json:"rating_history"`
	SubmissionCount int               `json:"submission_count"`
	Stats           problemStatsDTO   `json:"stats"`
	Streak          streakDTO         `json:"streak"`
	PredictedRating *int              `json:"predicted_rating,omitempty"`
}

type heatmapCellDTO struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

type contestPerformanceDTO struct {
	ContestID      int     `json:"contest_id"`
	ContestName    string  `json:"contest_name"`
	Rank           int     `json:"rank"`
	OldRating      int     `json:"old_rating"`
	NewRating      int     `json:"new_rating"`
	Delta          int     `json:"delta"`
	Points         float64 `json:"points"`
	SolvedCount    int     `json:"solved_count"`
	StandingsError string  `json:"standings_error,omitempty"`
	ParticipatedAt string  `json:"participated_at"`
}

type performanceDTO struct {
	Handle         string                  `json:"handle"`
	Rows           []contestPerformanceDTO `json:"rows"`
	FailedContests int                     `json:"failed_contests"`
}

type contestDTO struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Phase    string `json:"phase"`
	Frozen   bool   `json:"frozen"`
	Duration int64  `json:"duration_seconds"`
	StartsAt string `json:"starts_at,omitempty"`
	Attended bool   `json:"attended"`
}

type settingsDTO struct {
	Handle           string       `json:"handle"`
	Theme            string       `json:"theme"`
	AttendedContests map[int]bool `json:"attended_contests"`
}

type cacheStatsDTO struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

func dashboardToDTO(dashboard usecase.Dashboard) dashboardDTO {
	history := make([]ratingChangeDTO, 0, len(dashboard.RatingHistory))
	for _, change := range dashboard.RatingHistory {
		history = append(history, ratingChangeDTO{
			ContestID:   change.ContestID,
			ContestName: change.ContestName,
			Rank:        change.Rank,
			UpdatedAt:   formatTime(change.UpdatedAt),
			OldRating:   change.OldRating,
			NewRating:   change.NewRating,
			Delta:       change.Delta(),
		})
	}

	byTag := make(map[string]tagStatsDTO, len(dashboard.Stats.ByTag))
	for tag, entry := range dashboard.Stats.ByTag {
		byTag[tag] = tagStatsDTO{
			Solved:   entry.Solved,
			Total:    entry.Total,
			Accuracy: entry.Accuracy,
		}
	}

	return dashboardDTO{
		Profile: profileDTO{
			Handle:        dashboard.Profile.Handle,
			Rating:        dashboard.Profile.Rating,
			MaxRating:     dashboard.Profile.MaxRating,
			Rank:          dashboard.Profile.Rank,
			MaxRank:       dashboard.Profile.MaxRank,
			Contribution:  dashboard.Profile.Contribution,
			FriendOfCount: dashboard.Profile.FriendOfCount,
			Organization:  dashboard.Profile.Organization,
			Country:       dashboard.Profile.Country,
			AvatarURL:     dashboard.Profile.AvatarURL,
			RegisteredAt:  formatTime(dashboard.Profile.RegisteredAt),
			LastOnlineAt:  formatTime(dashboard.Profile.LastOnlineAt),
		},
		RatingHistory:   history,
		SubmissionCount: dashboard.SubmissionCount,
		Stats: problemStatsDTO{
			Total:        dashboard.Stats.Total,
			Solved:       dashboard.Stats.Solved,
			Attempted:    dashboard.Stats.Attempted,
			ByDifficulty: dashboard.Stats.ByDifficulty,
			ByTag:        byTag,
		},
		Streak: streakDTO{
			Current:      dashboard.Streak.Current,
			Longest:      dashboard.Streak.Longest,
			LastActivity: formatTime(dashboard.Streak.LastActivity),
		},
		PredictedRating: dashboard.PredictedRating,
	}
}

func performanceToDTO(report usecase.PerformanceReport) performanceDTO {
	rows := make([]contestPerformanceDTO, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, contestPerformanceDTO{
			ContestID:      row.ContestID,
			ContestName:    row.ContestName,
			Rank:           row.Rank,
			OldRating:      row.OldRating,
			NewRating:      row.NewRating,
			Delta:          row.Delta,
			Points:         row.Points,
			SolvedCount:    row.SolvedCount,
			StandingsError: row.StandingsError,
			ParticipatedAt: formatTime(row.ParticipatedAt),
		})
	}
	return performanceDTO{
		Handle:         report.Handle,
		Rows:           rows,
		FailedContests: report.FailedContests,
	}
}

func contestToDTO(item contest.Contest, attended bool) contestDTO {
	return contestDTO{
		ID:       item.ID,
		Name:     item.Name,
		Type:     item.Type,
		Phase:    item.Phase,
		Frozen:   item.Frozen,
		Duration: int64(item.Duration / time.Second),
		StartsAt: formatTime(item.StartsAt),
		Attended: attended,
	}
}

func settingsToDTO(item settings.Settings) settingsDTO {
	return settingsDTO{
		Handle:           item.Handle,
		Theme:            item.Theme,
		AttendedContests: item.AttendedContests,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
