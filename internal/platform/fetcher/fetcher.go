// Package fetcher talks to the external competitive-programming platforms.
//
// Every exported fetch method is fail-soft: transport errors, non-2xx replies
// and unexpected payload shapes are logged and reported through a false ok
// value. Callers never see an error from this package.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gautamkshah/wise-academy/internal/domain/model"
	"github.com/gautamkshah/wise-academy/internal/platform/logger"
	"github.com/gautamkshah/wise-academy/internal/platform/metrics"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// StatsFetcher turns a handle into a normalized {solved, rating} pair.
type StatsFetcher interface {
	Platform() model.Platform
	FetchStats(ctx context.Context, handle string) (model.PlatformStats, bool)
}

// SolvedSetFetcher returns the identifiers of problems the handle has an accepted verdict for.
type SolvedSetFetcher interface {
	Platform() model.Platform
	FetchSolvedProblems(ctx context.Context, handle string) (SolvedSet, bool)
}

// ContestLister returns upcoming contests. Failures yield an empty list.
type ContestLister interface {
	Platform() model.Platform
	UpcomingContests(ctx context.Context) []model.Contest
}

type SolvedSet map[string]struct{}

func NewSolvedSet(ids ...string) SolvedSet {
	s := make(SolvedSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s SolvedSet) Add(id string)      { s[id] = struct{}{} }
func (s SolvedSet) Has(id string) bool { _, ok := s[id]; return ok }
func (s SolvedSet) Len() int           { return len(s) }

func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// base holds what every platform client shares.
type base struct {
	platform model.Platform
	client   *http.Client
	log      *logger.Logger
}

func newBase(p model.Platform, client *http.Client, log *logger.Logger) base {
	if client == nil {
		client = NewHTTPClient(15 * time.Second)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return base{platform: p, client: client, log: log.With("platform", string(p))}
}

func (b base) Platform() model.Platform { return b.platform }

func (b base) ok(kind string) {
	metrics.FetchResults.WithLabelValues(string(b.platform), kind, "ok").Inc()
}

func (b base) unavailable(kind, handle string, err error) {
	metrics.FetchResults.WithLabelValues(string(b.platform), kind, "unavailable").Inc()
	b.log.Warn("Platform data unavailable", "kind", kind, "handle", handle, "error", err)
}

type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.url, e.code)
}

func (b base) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", browserUserAgent)
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.URL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{url: req.URL.String(), code: resp.StatusCode}
	}
	return body, nil
}

func (b base) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return b.do(req)
}

func (b base) getJSON(ctx context.Context, url string, dst interface{}) error {
	body, err := b.get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (b base) postJSON(ctx context.Context, url string, payload, dst interface{}, headers map[string]string) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	body, err := b.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// leadingInt parses the leading run of digits in s, ignoring surrounding
// whitespace. "1845?" gives 1845 and "abc" gives 0, false.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
	}
	return n, digits > 0
}

// firstInt finds the first run of digits anywhere in s.
func firstInt(s string) (int, bool) {
	i := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return 0, false
	}
	return leadingInt(s[i:])
}

func formatMinutes(m int64) string {
	return fmt.Sprintf("%d minutes", m)
}
