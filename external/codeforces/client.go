package codeforces

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/andriansah/cf-dashboard/internal/domain/contest"
	"github.com/andriansah/cf-dashboard/internal/domain/profile"
	"github.com/andriansah/cf-dashboard/internal/domain/submission"
	"github.com/andriansah/cf-dashboard/internal/platform/cache"
	"github.com/andriansah/cf-dashboard/internal/platform/logging"
	"github.com/andriansah/cf-dashboard/internal/platform/ratelimit"
	"github.com/andriansah/cf-dashboard/internal/platform/resilience"
	"github.com/andriansah/cf-dashboard/internal/usecase"
)

const (
	defaultBaseURL            = "https://codeforces.com/api"
	defaultTimeout            = 20 * time.Second
	defaultCacheTTL           = 5 * time.Minute
	defaultMinRequestInterval = 2 * time.Second

	// DefaultSubmissionPageSize covers the full history of almost every
	// account in a single user.status call.
	DefaultSubmissionPageSize = 10000

	maxResponseBytes = 32 << 20
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	CacheTTL   time.Duration
	// MinRequestInterval is the minimum spacing between upstream calls.
	// Zero means the default; a negative value disables spacing.
	MinRequestInterval time.Duration
	Logger             *logging.Logger
	CircuitBreaker     resilience.CircuitBreakerConfig
}

// Client wraps the Codeforces REST API with a response cache, a minimum
// spacing between upstream calls, in-flight request coalescing, and a circuit
// breaker. Successful payloads are cached as raw bytes, so repeat calls
// within the TTL return byte-identical results without touching the network.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	logger         *logging.Logger
	cache          *cache.Store
	limiter        *ratelimit.Limiter
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	minInterval := cfg.MinRequestInterval
	if minInterval == 0 {
		minInterval = defaultMinRequestInterval
	}
	if minInterval < 0 {
		minInterval = 0
	}

	breakerCfg := cfg.CircuitBreaker.WithDefaults()

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		logger:         logger,
		cache:          cache.NewStore(cacheTTL),
		limiter:        ratelimit.New(minInterval),
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) FetchUserProfile(ctx context.Context, handle string) (profile.UserProfile, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return profile.UserProfile{}, crerr.Mark(crerr.New("handle must not be empty"), usecase.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("handles", handle)

	var users []userDTO
	if err := c.getJSON(ctx, "user.info", query, true, &users); err != nil {
		return profile.UserProfile{}, err
	}
	if len(users) == 0 {
		return profile.UserProfile{}, crerr.Mark(crerr.Newf("no user data for handle %q", handle), usecase.ErrNotFound)
	}
	return users[0].toDomain(), nil
}

func (c *Client) FetchRatingHistory(ctx context.Context, handle string) ([]profile.RatingChange, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, crerr.Mark(crerr.New("handle must not be empty"), usecase.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("handle", handle)

	var changes []ratingChangeDTO
	if err := c.getJSON(ctx, "user.rating", query, true, &changes); err != nil {
		return nil, err
	}

	out := make([]profile.RatingChange, 0, len(changes))
	for _, change := range changes {
		out = append(out, change.toDomain())
	}
	return out, nil
}

// FetchSubmissions pages through user.status. from is 1-based; count <= 0
// falls back to DefaultSubmissionPageSize.
func (c *Client) FetchSubmissions(ctx context.Context, handle string, from, count int) ([]submission.Submission, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, crerr.Mark(crerr.New("handle must not be empty"), usecase.ErrInvalidInput)
	}
	if from < 1 {
		from = 1
	}
	if count <= 0 {
		count = DefaultSubmissionPageSize
	}

	query := url.Values{}
	query.Set("handle", handle)
	query.Set("from", strconv.Itoa(from))
	query.Set("count", strconv.Itoa(count))

	var rows []submissionDTO
	if err := c.getJSON(ctx, "user.status", query, true, &rows); err != nil {
		return nil, err
	}

	out := make([]submission.Submission, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (c *Client) FetchContestList(ctx context.Context, includeGym bool) ([]contest.Contest, error) {
	query := url.Values{}
	query.Set("gym", strconv.FormatBool(includeGym))

	var rows []contestDTO
	if err := c.getJSON(ctx, "contest.list", query, true, &rows); err != nil {
		return nil, err
	}

	out := make([]contest.Contest, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// FetchContestStandings is never cached: standings move while a contest is
// running and the payloads are large enough that caching them per handle set
// would crowd out everything else.
func (c *Client) FetchContestStandings(ctx context.Context, contestID int, handles []string) (contest.Standings, error) {
	if contestID <= 0 {
		return contest.Standings{}, crerr.Mark(crerr.New("contest id must be greater than zero"), usecase.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("contestId", strconv.Itoa(contestID))
	query.Set("showUnofficial", "false")
	if len(handles) > 0 {
		query.Set("handles", strings.Join(handles, ";"))
	}

	var standings standingsDTO
	if err := c.getJSON(ctx, "contest.standings", query, false, &standings); err != nil {
		return contest.Standings{}, err
	}
	return standings.toDomain(), nil
}

// ClearCache drops every cached payload. The request spacing window is left
// alone so a flush cannot be used to sidestep the upstream rate limit.
func (c *Client) ClearCache(ctx context.Context) {
	c.cache.Flush(ctx)
}

func (c *Client) CacheStats(ctx context.Context) cache.Stats {
	return c.cache.Stats(ctx)
}

func (c *Client) getJSON(ctx context.Context, method string, query url.Values, cacheable bool, target any) error {
	key := method + "?" + query.Encode()

	if cacheable {
		if raw, ok := c.cache.Get(ctx, key); ok {
			return decodeResult(raw.([]byte), target)
		}
	}

	out, err, _ := c.flight.Do(key, func() (any, error) {
		if cacheable {
			if raw, ok := c.cache.Get(ctx, key); ok {
				return raw.([]byte), nil
			}
		}

		if c.circuitEnabled {
			if err := c.breaker.Allow(); err != nil {
				c.logger.WarnContext(ctx, "codeforces circuit breaker rejected request", "method", method, "state", c.breaker.State())
				return nil, crerr.Mark(crerr.Newf("codeforces api is temporarily unavailable"), usecase.ErrDependencyUnavailable)
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		raw, reqErr := c.fetchResult(ctx, method, query)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, usecase.ErrTransport) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		if reqErr != nil {
			return nil, reqErr
		}

		if cacheable {
			c.cache.Set(ctx, key, raw)
		}
		return raw, nil
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return crerr.Newf("unexpected response payload type %T", out)
	}
	return decodeResult(raw, target)
}

// fetchResult performs one upstream call and returns the raw result bytes
// from the envelope. The envelope is decoded before the HTTP status is
// judged: Codeforces reports application failures as a FAILED envelope on
// both 200 and 400 responses.
func (c *Client) fetchResult(ctx context.Context, method string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + "/" + method
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Mark(crerr.Wrapf(err, "codeforces %s", method), usecase.ErrTransport)
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, crerr.Mark(crerr.Wrapf(readErr, "codeforces %s: read response body", method), usecase.ErrTransport)
	}

	var env envelope
	if decodeErr := sonic.Unmarshal(raw, &env); decodeErr == nil && env.Status != "" {
		if env.Status != statusOK {
			return nil, classifyAPIError(method, env.Comment)
		}
		return env.Result, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, crerr.Mark(
			crerr.Newf("codeforces %s: status=%d body=%s", method, resp.StatusCode, abbreviateBody(raw)),
			usecase.ErrTransport,
		)
	}
	return nil, crerr.Mark(crerr.Newf("codeforces %s: malformed envelope", method), usecase.ErrTransport)
}

func decodeResult(raw []byte, target any) error {
	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode codeforces result")
	}
	return nil
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}
