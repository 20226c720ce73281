package fetcher

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gautamkshah/wise-academy/internal/domain/model"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"

	"github.com/gosimple/slug"
)

const (
	leetCodeStatsQuery = `query userStats($username: String!) {
  matchedUser(username: $username) {
    submitStatsGlobal { acSubmissionNum { difficulty count } }
  }
  userContestRanking(username: $username) { rating }
}`

	leetCodeRecentQuery = `query recentAc($username: String!, $limit: Int!) {
  recentAcSubmissionList(username: $username, limit: $limit) { titleSlug }
}`

	leetCodeContestsQuery = `query upcoming {
  topTwoContests { title titleSlug startTime duration }
}`
)

var errShape = errors.New("unexpected response shape")

type LeetCode struct {
	base
	endpoint    string
	recentLimit int
}

func NewLeetCode(endpoint string, recentLimit int, client *http.Client, log *logger.Logger) *LeetCode {
	if recentLimit <= 0 {
		recentLimit = 20
	}
	return &LeetCode{
		base:        newBase(model.PlatformLeetCode, client, log),
		endpoint:    endpoint,
		recentLimit: recentLimit,
	}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type leetCodeStatsResponse struct {
	Data *struct {
		MatchedUser *struct {
			SubmitStatsGlobal struct {
				AcSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStatsGlobal"`
		} `json:"matchedUser"`
		UserContestRanking *struct {
			Rating float64 `json:"rating"`
		} `json:"userContestRanking"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

func (l *LeetCode) query(ctx context.Context, q string, vars map[string]interface{}, dst interface{}) error {
	headers := map[string]string{"Referer": "https://leetcode.com"}
	return l.postJSON(ctx, l.endpoint, graphQLRequest{Query: q, Variables: vars}, dst, headers)
}

// FetchStats reads the "All" accepted count and the contest rating, rounded.
// A user without a contest history has rating 0.
func (l *LeetCode) FetchStats(ctx context.Context, handle string) (model.PlatformStats, bool) {
	var resp leetCodeStatsResponse
	if err := l.query(ctx, leetCodeStatsQuery, map[string]interface{}{"username": handle}, &resp); err != nil {
		l.unavailable("stats", handle, err)
		return model.PlatformStats{}, false
	}
	if resp.Data == nil || resp.Data.MatchedUser == nil {
		l.unavailable("stats", handle, graphQLErr(resp.Errors))
		return model.PlatformStats{}, false
	}

	solved, found := 0, false
	for _, n := range resp.Data.MatchedUser.SubmitStatsGlobal.AcSubmissionNum {
		if n.Difficulty == "All" {
			solved, found = n.Count, true
			break
		}
	}
	if !found {
		l.unavailable("stats", handle, errShape)
		return model.PlatformStats{}, false
	}

	rating := 0
	if r := resp.Data.UserContestRanking; r != nil {
		rating = int(math.Round(r.Rating))
	}

	l.ok("stats")
	return model.PlatformStats{Solved: solved, Rating: rating}, true
}

// FetchSolvedProblems returns the slugs of the handle's most recent accepted
// submissions. LeetCode only exposes a bounded window, so this is a subset of
// everything the handle has solved.
func (l *LeetCode) FetchSolvedProblems(ctx context.Context, handle string) (SolvedSet, bool) {
	var resp struct {
		Data *struct {
			RecentAcSubmissionList []struct {
				TitleSlug string `json:"titleSlug"`
			} `json:"recentAcSubmissionList"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}
	vars := map[string]interface{}{"username": handle, "limit": l.recentLimit}
	if err := l.query(ctx, leetCodeRecentQuery, vars, &resp); err != nil {
		l.unavailable("solved", handle, err)
		return nil, false
	}
	if resp.Data == nil || resp.Data.RecentAcSubmissionList == nil {
		l.unavailable("solved", handle, graphQLErr(resp.Errors))
		return nil, false
	}

	set := make(SolvedSet, len(resp.Data.RecentAcSubmissionList))
	for _, s := range resp.Data.RecentAcSubmissionList {
		if s.TitleSlug != "" {
			set.Add(s.TitleSlug)
		}
	}
	l.ok("solved")
	return set, true
}

func (l *LeetCode) UpcomingContests(ctx context.Context) []model.Contest {
	var resp struct {
		Data *struct {
			TopTwoContests []struct {
				Title     string `json:"title"`
				TitleSlug string `json:"titleSlug"`
				StartTime int64  `json:"startTime"`
				Duration  int64  `json:"duration"`
			} `json:"topTwoContests"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}
	if err := l.query(ctx, leetCodeContestsQuery, nil, &resp); err != nil {
		l.unavailable("contests", "", err)
		return []model.Contest{}
	}
	if resp.Data == nil {
		l.unavailable("contests", "", graphQLErr(resp.Errors))
		return []model.Contest{}
	}

	out := make([]model.Contest, 0, len(resp.Data.TopTwoContests))
	for _, c := range resp.Data.TopTwoContests {
		out = append(out, model.Contest{
			Name:      c.Title,
			Platform:  model.PlatformLeetCode,
			StartTime: time.Unix(c.StartTime, 0).UTC(),
			Duration:  formatMinutes(c.Duration / 60),
			URL:       "https://leetcode.com/contest/" + c.TitleSlug,
		})
	}
	l.ok("contests")
	return out
}

// LeetCodeSlug derives the identifier used to match a catalog problem against
// the recent-accepted list: the path segment after /problems/ in its link, or
// the slugified title when the link is missing or malformed.
func LeetCodeSlug(p *model.Problem) string {
	if link := p.Link(); link != "" {
		if u, err := url.Parse(link); err == nil {
			parts := strings.Split(strings.Trim(u.Path, "/"), "/")
			for i := 0; i+1 < len(parts); i++ {
				if parts[i] == "problems" && parts[i+1] != "" {
					return parts[i+1]
				}
			}
		}
	}
	return slug.Make(p.Title)
}

func graphQLErr(errs []graphQLError) error {
	if len(errs) == 0 {
		return errShape
	}
	return errors.New(errs[0].Message)
}
