package codeforces

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/andriansah/cf-dashboard/internal/domain/contest"
	"github.com/andriansah/cf-dashboard/internal/domain/profile"
	"github.com/andriansah/cf-dashboard/internal/domain/submission"
)

// envelope is the uniform wrapper around every Codeforces API response.
// status is "OK" or "FAILED"; comment carries the failure reason. The result
// field is kept raw so callers decode it into the method-specific shape.
type envelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

const statusOK = "OK"

type userDTO struct {
	Handle                  string `json:"handle"`
	Rating                  int    `json:"rating"`
	MaxRating               int    `json:"maxRating"`
	Rank                    string `json:"rank"`
	MaxRank                 string `json:"maxRank"`
	Contribution            int    `json:"contribution"`
	FriendOfCount           int    `json:"friendOfCount"`
	Organization            string `json:"organization"`
	Country                 string `json:"country"`
	Avatar                  string `json:"avatar"`
	RegistrationTimeSeconds int64  `json:"registrationTimeSeconds"`
	LastOnlineTimeSeconds   int64  `json:"lastOnlineTimeSeconds"`
}

func (d userDTO) toDomain() profile.UserProfile {
	return profile.UserProfile{
		Handle:        strings.TrimSpace(d.Handle),
		Rating:        d.Rating,
		MaxRating:     d.MaxRating,
		Rank:          strings.TrimSpace(d.Rank),
		MaxRank:       strings.TrimSpace(d.MaxRank),
		Contribution:  d.Contribution,
		FriendOfCount: d.FriendOfCount,
		Organization:  strings.TrimSpace(d.Organization),
		Country:       strings.TrimSpace(d.Country),
		AvatarURL:     strings.TrimSpace(d.Avatar),
		RegisteredAt:  unixTime(d.RegistrationTimeSeconds),
		LastOnlineAt:  unixTime(d.LastOnlineTimeSeconds),
	}
}

type ratingChangeDTO struct {
	ContestID               int    `json:"contestId"`
	ContestName             string `json:"contestName"`
	Rank                    int    `json:"rank"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
	OldRating               int    `json:"oldRating"`
	NewRating               int    `json:"newRating"`
}

func (d ratingChangeDTO) toDomain() profile.RatingChange {
	return profile.RatingChange{
		ContestID:   d.ContestID,
		ContestName: strings.TrimSpace(d.ContestName),
		Rank:        d.Rank,
		UpdatedAt:   unixTime(d.RatingUpdateTimeSeconds),
		OldRating:   d.OldRating,
		NewRating:   d.NewRating,
	}
}

type problemDTO struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    int      `json:"rating"`
	Tags      []string `json:"tags"`
}

func (d problemDTO) toDomain() submission.Problem {
	tags := make([]string, 0, len(d.Tags))
	for _, tag := range d.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return submission.Problem{
		ContestID: d.ContestID,
		Index:     strings.TrimSpace(d.Index),
		Name:      strings.TrimSpace(d.Name),
		Rating:    d.Rating,
		Tags:      tags,
	}
}

type submissionDTO struct {
	ID                  int64      `json:"id"`
	CreationTimeSeconds int64      `json:"creationTimeSeconds"`
	Verdict             string     `json:"verdict"`
	ProgrammingLanguage string     `json:"programmingLanguage"`
	Problem             problemDTO `json:"problem"`
}

func (d submissionDTO) toDomain() submission.Submission {
	return submission.Submission{
		ID:        d.ID,
		CreatedAt: unixTime(d.CreationTimeSeconds),
		Verdict:   submission.Verdict(strings.TrimSpace(d.Verdict)),
		Language:  strings.TrimSpace(d.ProgrammingLanguage),
		Problem:   d.Problem.toDomain(),
	}
}

type contestDTO struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	Type                string `json:"type"`
	Phase               string `json:"phase"`
	Frozen              bool   `json:"frozen"`
	DurationSeconds     int64  `json:"durationSeconds"`
	StartTimeSeconds    int64  `json:"startTimeSeconds"`
	RelativeTimeSeconds int64  `json:"relativeTimeSeconds"`
}

func (d contestDTO) toDomain() contest.Contest {
	return contest.Contest{
		ID:       d.ID,
		Name:     strings.TrimSpace(d.Name),
		Type:     strings.TrimSpace(d.Type),
		Phase:    strings.TrimSpace(d.Phase),
		Frozen:   d.Frozen,
		Duration: time.Duration(d.DurationSeconds) * time.Second,
		StartsAt: unixTime(d.StartTimeSeconds),
	}
}

type standingsDTO struct {
	Contest contestDTO        `json:"contest"`
	Rows    []standingsRowDTO `json:"rows"`
}

type standingsRowDTO struct {
	Party struct {
		Members []struct {
			Handle string `json:"handle"`
		} `json:"members"`
	} `json:"party"`
	Rank           int                `json:"rank"`
	Points         float64            `json:"points"`
	Penalty        int                `json:"penalty"`
	ProblemResults []problemResultDTO `json:"problemResults"`
}

type problemResultDTO struct {
	Points                    float64 `json:"points"`
	RejectedAttemptCount      int     `json:"rejectedAttemptCount"`
	BestSubmissionTimeSeconds int64   `json:"bestSubmissionTimeSeconds"`
}

func (d standingsDTO) toDomain() contest.Standings {
	rows := make([]contest.StandingsRow, 0, len(d.Rows))
	for _, row := range d.Rows {
		handle := ""
		if len(row.Party.Members) > 0 {
			handle = strings.TrimSpace(row.Party.Members[0].Handle)
		}
		results := make([]contest.ProblemResult, 0, len(row.ProblemResults))
		for _, result := range row.ProblemResults {
			results = append(results, contest.ProblemResult{
				Points:           result.Points,
				RejectedAttempts: result.RejectedAttemptCount,
			})
		}
		rows = append(rows, contest.StandingsRow{
			Rank:    row.Rank,
			Handle:  handle,
			Points:  row.Points,
			Penalty: row.Penalty,
			Results: results,
		})
	}
	return contest.Standings{
		Contest: d.Contest.toDomain(),
		Rows:    rows,
	}
}

func unixTime(seconds int64) time.Time {
	if seconds <= 0 {
		return time.Time{}
	}
	return time.Unix(seconds, 0).UTC()
}
