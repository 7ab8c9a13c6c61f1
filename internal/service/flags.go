package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"wls-leaderboard/internal/config"
	"wls-leaderboard/internal/constants"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// FlagsService loads the newline-delimited "epicId: countryName" mapping used
// for country-flag enrichment and caches it for a TTL. Loading is always
// best-effort: a failed fetch keeps serving the stale mapping, or nothing.
type FlagsService struct {
	url    string
	client *fasthttp.Client
	logger zerolog.Logger

	mu        sync.Mutex
	mapping   map[string]string
	fetchedAt time.Time
}

func NewFlagsService(cfg *config.Config, logger zerolog.Logger) *FlagsService {
	return &FlagsService{
		url: cfg.FlagsURL,
		client: &fasthttp.Client{
			ReadTimeout:  constants.ExternalAPITimeout,
			WriteTimeout: constants.ExternalAPITimeout,
		},
		logger: logger,
	}
}

// Mapping returns the epic-id to country mapping, refetching at most once per
// TTL. Returns nil when no flags URL is configured.
func (f *FlagsService) Mapping(ctx context.Context) map[string]string {
	if f.url == "" {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mapping != nil && time.Since(f.fetchedAt) < constants.FlagsCacheTTL {
		return f.mapping
	}

	body, err := f.fetch(ctx)
	if err != nil {
		f.logger.Warn().Err(err).Str("url", f.url).Msg("failed to fetch country mapping, using cached")
		return f.mapping
	}

	f.mapping = ParseCountryMapping(body)
	f.fetchedAt = time.Now()
	f.logger.Debug().Int("entries", len(f.mapping)).Msg("country mapping refreshed")
	return f.mapping
}

func (f *FlagsService) fetch(ctx context.Context) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(f.url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if deadline, ok := ctx.Deadline(); ok {
		if err := f.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := f.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("flags fetch error: %d", resp.StatusCode())
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

// ParseCountryMapping parses "epicId: countryName" lines. Malformed lines are
// skipped, keys and values trimmed, values kept case-preserving.
func ParseCountryMapping(data []byte) map[string]string {
	out := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, country, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		id = strings.TrimSpace(id)
		country = strings.TrimSpace(country)
		if id == "" || country == "" {
			continue
		}
		out[id] = country
	}
	return out
}
