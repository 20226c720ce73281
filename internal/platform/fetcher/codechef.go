package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gautamkshah/wise-academy/internal/domain/model"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"

	"github.com/PuerkitoBio/goquery"
)

const totalSolvedHeading = `h3:contains("Total Problems Solved")`

var errNoProfile = errors.New("profile markers not found")

// CodeChef has no public stats API; profile data comes from the rendered
// HTML page. The selectors track the current site markup and may need
// adjusting when it changes.
type CodeChef struct {
	base
	baseURL     string
	contestsURL string
}

func NewCodeChef(baseURL, contestsURL string, client *http.Client, log *logger.Logger) *CodeChef {
	return &CodeChef{
		base:        newBase(model.PlatformCodeChef, client, log),
		baseURL:     strings.TrimRight(baseURL, "/"),
		contestsURL: contestsURL,
	}
}

func (c *CodeChef) FetchStats(ctx context.Context, handle string) (model.PlatformStats, bool) {
	body, err := c.get(ctx, c.baseURL+"/users/"+url.PathEscape(handle))
	if err != nil {
		c.unavailable("stats", handle, err)
		return model.PlatformStats{}, false
	}
	stats, err := parseCodeChefProfile(body)
	if err != nil {
		c.unavailable("stats", handle, err)
		return model.PlatformStats{}, false
	}
	c.ok("stats")
	return stats, true
}

// parseCodeChefProfile reads the first .rating-number and the number inside
// the "Total Problems Solved" heading, preferring the one in the
// problems-solved section. A page with neither marker is not a profile.
func parseCodeChefProfile(body []byte) (model.PlatformStats, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return model.PlatformStats{}, err
	}

	var stats model.PlatformStats
	ratingSel := doc.Find(".rating-number").First()
	if r, ok := leadingInt(ratingSel.Text()); ok {
		stats.Rating = r
	}

	primary := doc.Find("section.problems-solved " + totalSolvedHeading)
	solvedFound := false
	if n, ok := firstInt(primary.Text()); ok {
		stats.Solved, solvedFound = n, true
	} else {
		fallback := doc.Find(totalSolvedHeading).First()
		if n, ok := firstInt(fallback.Text()); ok {
			stats.Solved, solvedFound = n, true
		}
	}

	if ratingSel.Length() == 0 && !solvedFound {
		return model.PlatformStats{}, errNoProfile
	}
	return stats, nil
}

type codeChefContest struct {
	Code     string `json:"contest_code"`
	Name     string `json:"contest_name"`
	StartISO string `json:"contest_start_date_iso"`
	Duration string `json:"contest_duration"`
}

// UpcomingContests reads present and future contests from the JSON listing
// and falls back to scraping the contests page when the API fails.
func (c *CodeChef) UpcomingContests(ctx context.Context) []model.Contest {
	contests, err := c.contestsFromAPI(ctx)
	if err == nil {
		c.ok("contests")
		return contests
	}
	c.log.Warn("CodeChef contest API failed, attempting scrape fallback", "error", err)

	contests, err = c.contestsFromPage(ctx)
	if err != nil {
		c.unavailable("contests", "", err)
		return []model.Contest{}
	}
	c.ok("contests")
	return contests
}

func (c *CodeChef) contestsFromAPI(ctx context.Context) ([]model.Contest, error) {
	var resp struct {
		Present []codeChefContest `json:"present_contests"`
		Future  []codeChefContest `json:"future_contests"`
	}
	body, err := c.get(ctx, c.contestsURL)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	out := make([]model.Contest, 0, len(resp.Present)+len(resp.Future))
	for _, cc := range append(resp.Present, resp.Future...) {
		start, err := time.Parse(time.RFC3339, cc.StartISO)
		if err != nil {
			continue
		}
		out = append(out, c.contest(cc.Code, cc.Name, start, cc.Duration))
	}
	return out, nil
}

// contestsFromPage expects rows of code, name, ISO start, and minutes.
func (c *CodeChef) contestsFromPage(ctx context.Context) ([]model.Contest, error) {
	body, err := c.get(ctx, c.baseURL+"/contests")
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := make([]model.Contest, 0)
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		cell := func(i int) string { return strings.TrimSpace(cells.Eq(i).Text()) }
		startRaw, ok := cells.Eq(2).Attr("data-starttime")
		if !ok {
			startRaw = cell(2)
		}
		start, err := time.Parse(time.RFC3339, startRaw)
		if err != nil || !start.After(time.Now()) {
			return
		}
		minutes, _ := leadingInt(cell(3))
		out = append(out, c.contest(cell(0), cell(1), start, formatMinutes(int64(minutes))))
	})
	return out, nil
}

func (c *CodeChef) contest(code, name string, start time.Time, duration string) model.Contest {
	if !strings.HasSuffix(duration, "minutes") {
		duration = strings.TrimSpace(duration) + " minutes"
	}
	return model.Contest{
		Name:      name,
		Platform:  model.PlatformCodeChef,
		StartTime: start.UTC(),
		Duration:  duration,
		URL:       c.baseURL + "/" + code,
	}
}
