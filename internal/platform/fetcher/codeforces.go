package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gautamkshah/wise-academy/internal/domain/model"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

type CodeForces struct {
	base
	apiURL string
}

func NewCodeForces(apiURL string, client *http.Client, log *logger.Logger) *CodeForces {
	return &CodeForces{
		base:   newBase(model.PlatformCodeForces, client, log),
		apiURL: strings.TrimRight(apiURL, "/"),
	}
}

type cfEnvelope[T any] struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  T      `json:"result"`
}

type cfUser struct {
	Handle string `json:"handle"`
	Rating int    `json:"rating"`
}

type cfSubmission struct {
	Verdict string `json:"verdict"`
	Problem struct {
		ContestID int    `json:"contestId"`
		Index     string `json:"index"`
	} `json:"problem"`
}

type cfContest struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Phase            string `json:"phase"`
	DurationSeconds  int64  `json:"durationSeconds"`
	StartTimeSeconds int64  `json:"startTimeSeconds"`
}

func (c *CodeForces) rating(ctx context.Context, handle string) (int, error) {
	var env cfEnvelope[[]cfUser]
	if err := c.getJSON(ctx, c.apiURL+"/user.info?handles="+url.QueryEscape(handle), &env); err != nil {
		return 0, err
	}
	if env.Status != "OK" || len(env.Result) == 0 {
		return 0, fmt.Errorf("user.info: status %q: %s", env.Status, env.Comment)
	}
	return env.Result[0].Rating, nil
}

// submissions returns ok=false with a nil error when the API answers with a
// non-OK status, so a handle with a readable rating still counts as available.
func (c *CodeForces) submissions(ctx context.Context, handle string) ([]cfSubmission, bool, error) {
	var env cfEnvelope[[]cfSubmission]
	if err := c.getJSON(ctx, c.apiURL+"/user.status?handle="+url.QueryEscape(handle), &env); err != nil {
		return nil, false, err
	}
	if env.Status != "OK" {
		return nil, false, nil
	}
	return env.Result, true, nil
}

// FetchStats runs user.info and user.status concurrently. The solved count is
// the number of distinct problems with at least one OK verdict.
func (c *CodeForces) FetchStats(ctx context.Context, handle string) (model.PlatformStats, bool) {
	var (
		rating int
		subs   []cfSubmission
		subsOK bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rating, err = c.rating(gctx, handle)
		return err
	})
	g.Go(func() error {
		var err error
		subs, subsOK, err = c.submissions(gctx, handle)
		return err
	})
	if err := g.Wait(); err != nil {
		c.unavailable("stats", handle, err)
		return model.PlatformStats{}, false
	}

	solved := 0
	if subsOK {
		solved = solvedFromSubmissions(subs).Len()
	}
	c.ok("stats")
	return model.PlatformStats{Solved: solved, Rating: rating}, true
}

func (c *CodeForces) FetchSolvedProblems(ctx context.Context, handle string) (SolvedSet, bool) {
	subs, ok, err := c.submissions(ctx, handle)
	if err != nil || !ok {
		if err == nil {
			err = errShape
		}
		c.unavailable("solved", handle, err)
		return nil, false
	}
	c.ok("solved")
	return solvedFromSubmissions(subs), true
}

func (c *CodeForces) UpcomingContests(ctx context.Context) []model.Contest {
	var env cfEnvelope[[]cfContest]
	if err := c.getJSON(ctx, c.apiURL+"/contest.list", &env); err != nil {
		c.unavailable("contests", "", err)
		return []model.Contest{}
	}
	if env.Status != "OK" {
		c.unavailable("contests", "", fmt.Errorf("contest.list: status %q", env.Status))
		return []model.Contest{}
	}

	out := make([]model.Contest, 0)
	for _, ct := range env.Result {
		if ct.Phase != "BEFORE" {
			continue
		}
		out = append(out, model.Contest{
			Name:      ct.Name,
			Platform:  model.PlatformCodeForces,
			StartTime: time.Unix(ct.StartTimeSeconds, 0).UTC(),
			Duration:  formatMinutes(ct.DurationSeconds / 60),
			URL:       "https://codeforces.com/contest/" + strconv.Itoa(ct.ID),
		})
	}
	c.ok("contests")
	return out
}

// solvedFromSubmissions collapses submissions to the distinct set of
// contestId+index identifiers with an OK verdict. Problems without a contest
// id cannot be matched against a catalog link and are skipped.
func solvedFromSubmissions(subs []cfSubmission) SolvedSet {
	set := make(SolvedSet)
	for _, s := range subs {
		if s.Verdict != "OK" || s.Problem.ContestID == 0 || s.Problem.Index == "" {
			continue
		}
		set.Add(strconv.Itoa(s.Problem.ContestID) + s.Problem.Index)
	}
	return set
}

var cfProblemPath = regexp.MustCompile(`(?:contest|gym)/(\d+)/problem/([A-Za-z0-9]+)|problemset/problem/(\d+)/([A-Za-z0-9]+)`)

// CodeForcesID extracts the contestId+index identifier from a catalog link
// such as https://codeforces.com/contest/1846/problem/C. It returns false
// when the link does not encode a problem.
func CodeForcesID(link string) (string, bool) {
	m := cfProblemPath.FindStringSubmatch(link)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1] + strings.ToUpper(m[2]), true
	}
	return m[3] + strings.ToUpper(m[4]), true
}
