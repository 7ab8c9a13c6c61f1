package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"
	"wls-leaderboard/internal/config"
	"wls-leaderboard/internal/constants"
	"wls-leaderboard/internal/domain"

	"github.com/valyala/fasthttp"
)

// v7 query flags: bit 0 requests per-team flags/stats, bit 1 per-session metrics.
const v7QueryFlags = 0b11

type WLSClient struct {
	baseURL     string
	apiKey      string
	client      *fasthttp.Client
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Bucket    string `json:"bucket"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewWLSClient(cfg *config.Config) *WLSClient {
	return &WLSClient{
		baseURL: cfg.WLSBaseURL,
		apiKey:  cfg.WLSAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		rateLimit: RateLimitInfo{
			Limit:     120,
			Remaining: 120,
			Reset:     60,
			UpdatedAt: time.Now(),
		},
	}
}

func (c *WLSClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *WLSClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if bucket := string(resp.Header.Peek("X-Ratelimit-Bucket")); bucket != "" {
		c.rateLimit.Bucket = bucket
	}
	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// GetLeaderboardPage fetches one page of the primary leaderboard.
func (c *WLSClient) GetLeaderboardPage(ctx context.Context, leaderboardID string, page int) (*PageResponse, error) {
	url := fmt.Sprintf("%s/v5/leaderboards/%s?page=%d", c.baseURL, leaderboardID, page)
	return doRequest[PageResponse](ctx, c, fasthttp.MethodGet, url, nil)
}

// QueryV7 issues the auxiliary high-resolution query covering the full rank
// range in a single request.
func (c *WLSClient) QueryV7(ctx context.Context, leaderboardID string) (*V7QueryResponse, error) {
	url := fmt.Sprintf("%s/v5/leaderboards/%s/v7/query", c.baseURL, leaderboardID)
	body, err := json.Marshal(V7QueryRequest{
		Queries: []V7Query{{
			Range: V7Range{From: constants.V7RangeFrom, To: constants.V7RangeTo},
			Flags: v7QueryFlags,
		}},
		Flags: v7QueryFlags,
	})
	if err != nil {
		return nil, err
	}
	return doRequest[V7QueryResponse](ctx, c, fasthttp.MethodPost, url, body)
}

func doRequest[T any](ctx context.Context, client *WLSClient, method, url string, body []byte) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	if client.apiKey != "" {
		req.Header.Set("Authorization", client.apiKey)
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	client.updateRateLimit(resp)

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PageResponse is one page of GET /v5/leaderboards/{id}. Teams and sessions
// arrive as string-keyed maps; ordering is restored by explicit key sort,
// never by map enumeration order.
type PageResponse struct {
	TotalPages int                 `json:"total_pages"`
	Teams      map[string]PageTeam `json:"teams"`
}

type PageTeam struct {
	Place    domain.Number            `json:"place"`
	Points   domain.Number            `json:"points"`
	Members  map[string]domain.Member `json:"members"`
	Sessions map[string]PageSession   `json:"sessions"`
}

type PageSession struct {
	ID     string         `json:"id"`
	Kills  domain.Number  `json:"kills"`
	Place  domain.Number  `json:"place"`
	Points *domain.Number `json:"points"`
}

type V7QueryRequest struct {
	Queries []V7Query `json:"queries"`
	Flags   int       `json:"flags"`
}

type V7Query struct {
	Range V7Range `json:"range"`
	Flags int     `json:"flags"`
}

type V7Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type V7QueryResponse struct {
	Queries []V7QueryResult `json:"queries"`
}

type V7QueryResult struct {
	Entries []V7Entry `json:"entries"`
}

type V7Entry struct {
	Members  []domain.Member          `json:"members"`
	Sessions []V7Session              `json:"sessions"`
	Flags    int                      `json:"flags"`
	Stats    map[string]domain.Number `json:"stats"`
}

// Alive reports the per-team liveness bit (bit 2) of the entry flags.
func (e V7Entry) Alive() bool {
	return e.Flags&(1<<2) != 0
}

type V7Session struct {
	ID      string                   `json:"id"`
	Metrics map[string]domain.Number `json:"metrics"`
}

// Points returns the authoritative per-session point value from the metrics
// map: key "1", falling back to "-1000". The second value reports whether
// either key was present.
func (s V7Session) Points() (float64, bool) {
	if v, ok := s.Metrics["1"]; ok {
		return v.Float(), true
	}
	if v, ok := s.Metrics["-1000"]; ok {
		return v.Float(), true
	}
	return 0, false
}
