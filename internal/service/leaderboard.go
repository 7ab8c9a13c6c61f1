package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"wls-leaderboard/internal/aggregator"
	"wls-leaderboard/internal/api"
	"wls-leaderboard/internal/constants"
	"wls-leaderboard/internal/domain"
	"wls-leaderboard/internal/identity"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type LeaderboardService struct {
	wls    *api.WLSClient
	flags  *FlagsService
	logger zerolog.Logger
}

func NewLeaderboardService(wls *api.WLSClient, flags *FlagsService, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{wls: wls, flags: flags, logger: logger}
}

// UnifiedOptions configure one unified fetch.
type UnifiedOptions struct {
	LeaderboardID             string
	ExcludedSessionIDs        []string
	ShowFlags                 bool
	ForceRankByPoints         bool
	IncludeV7                 bool
	IndicatorsOnlyWhenAllDead bool
}

// GetUnifiedLeaderboard fetches every primary page plus the auxiliary v7
// query and runs the full reconciliation pipeline. A primary page failure is
// fatal to the cycle; a v7 failure degrades to alive=false and primary points
// only.
func (s *LeaderboardService) GetUnifiedLeaderboard(ctx context.Context, opts UnifiedOptions) (*domain.Unified, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().
		Str("leaderboard_id", opts.LeaderboardID).
		Bool("include_v7", opts.IncludeV7).
		Bool("force_rank_by_points", opts.ForceRankByPoints).
		Int("excluded_session_ids", len(opts.ExcludedSessionIDs)).
		Msg("fetching unified leaderboard")

	pages, totalPages, v7, err := s.fetchAll(ctx, opts)
	if err != nil {
		s.logger.Error().Err(err).Str("leaderboard_id", opts.LeaderboardID).Msg("failed to fetch leaderboard")
		return nil, err
	}

	var countries map[string]string
	if opts.ShowFlags {
		countries = s.flags.Mapping(ctx)
	}

	teams := buildTeamInputs(pages, v7, countries)

	unified := aggregator.BuildUnified(teams, totalPages, aggregator.Options{
		ExcludedSessionIDs:        opts.ExcludedSessionIDs,
		ForceRankByPoints:         opts.ForceRankByPoints,
		IndicatorsOnlyWhenAllDead: opts.IndicatorsOnlyWhenAllDead,
	})

	s.logger.Info().
		Str("leaderboard_id", opts.LeaderboardID).
		Int("teams", len(unified.Leaderboard)).
		Int("total_pages", unified.TotalPages).
		Bool("all_dead", unified.AllDead).
		Msg("unified leaderboard built")

	return &unified, nil
}

// fetchAll fetches page 0 to learn the page count, fans out the remaining
// pages concurrently, and issues the v7 query as a best-effort member of the
// same cohort. All fetches settle before assembly resumes.
func (s *LeaderboardService) fetchAll(ctx context.Context, opts UnifiedOptions) ([]*api.PageResponse, int, *api.V7QueryResponse, error) {
	first, err := s.wls.GetLeaderboardPage(ctx, opts.LeaderboardID, 0)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to fetch leaderboard page 0: %w", err)
	}

	totalPages := first.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}

	pages := make([]*api.PageResponse, totalPages)
	pages[0] = first

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(constants.PageFetchConcurrency)

	for page := 1; page < totalPages; page++ {
		g.Go(func() error {
			resp, err := s.wls.GetLeaderboardPage(gCtx, opts.LeaderboardID, page)
			if err != nil {
				return fmt.Errorf("failed to fetch leaderboard page %d: %w", page, err)
			}
			pages[page] = resp
			return nil
		})
	}

	var v7 *api.V7QueryResponse
	if opts.IncludeV7 {
		g.Go(func() error {
			resp, err := s.wls.QueryV7(gCtx, opts.LeaderboardID)
			if err != nil {
				s.logger.Warn().Err(err).Str("leaderboard_id", opts.LeaderboardID).Msg("v7 query failed, continuing without auxiliary data")
				return nil
			}
			v7 = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, nil, err
	}
	return pages, totalPages, v7, nil
}

// buildTeamInputs restores ordered team inputs from the fetched pages: page
// team maps are walked in sorted key order, session maps in numeric key
// order, and v7 entries are matched to teams by canonical team key.
func buildTeamInputs(pages []*api.PageResponse, v7 *api.V7QueryResponse, countries map[string]string) []aggregator.TeamInput {
	v7ByKey := indexV7(v7)

	var teams []aggregator.TeamInput
	seen := make(map[string]struct{})
	for _, page := range pages {
		if page == nil {
			continue
		}
		for _, teamKey := range sortedMapKeys(page.Teams) {
			t := page.Teams[teamKey]
			members := memberList(t.Members, countries)
			name := identity.BuildTeamName(members)
			if name == "" {
				continue
			}
			key := identity.TeamKey(members)
			if key == "" {
				key = name
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			teams = append(teams, aggregator.TeamInput{
				TeamKey:   key,
				TeamName:  name,
				APIPlace:  t.Place.Int(),
				APIPoints: t.Points.Float(),
				Members:   members,
				Sessions:  orderedSessions(t.Sessions),
				V7:        v7ByKey[key],
			})
		}
	}
	return teams
}

func indexV7(v7 *api.V7QueryResponse) map[string]*aggregator.V7TeamData {
	out := make(map[string]*aggregator.V7TeamData)
	if v7 == nil {
		return out
	}
	for _, q := range v7.Queries {
		for _, entry := range q.Entries {
			key := identity.TeamKey(entry.Members)
			if key == "" {
				key = identity.BuildTeamName(entry.Members)
			}
			if key == "" {
				continue
			}

			data := &aggregator.V7TeamData{
				Alive:    entry.Alive(),
				Sessions: make([]aggregator.V7SessionData, 0, len(entry.Sessions)),
			}
			for _, sess := range entry.Sessions {
				v7Sess := aggregator.V7SessionData{ID: sess.ID}
				if points, ok := sess.Points(); ok {
					p := points
					v7Sess.Points = &p
				}
				data.Sessions = append(data.Sessions, v7Sess)
			}
			out[key] = data
		}
	}
	return out
}

func memberList(members map[string]domain.Member, countries map[string]string) []domain.Member {
	out := make([]domain.Member, 0, len(members))
	for id, m := range members {
		if m.ID == "" {
			m.ID = id
		}
		if countries != nil {
			if country, ok := countries[m.IngameID]; ok {
				m.Country = country
			} else if country, ok := countries[m.ID]; ok {
				m.Country = country
			}
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// orderedSessions restores chronological session order from the string-keyed
// payload map: numeric keys sort numerically, anything else after them
// lexicographically.
func orderedSessions(sessions map[string]api.PageSession) []aggregator.PrimarySession {
	keys := sortedMapKeysSessions(sessions)
	out := make([]aggregator.PrimarySession, 0, len(sessions))
	for _, k := range keys {
		s := sessions[k]
		ps := aggregator.PrimarySession{
			ID:    s.ID,
			Kills: s.Kills.Int(),
			Place: s.Place.Int(),
		}
		if s.Points != nil {
			p := s.Points.Float()
			ps.Points = &p
		}
		out = append(out, ps)
	}
	return out
}

func sortedMapKeys(m map[string]api.PageTeam) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return keys
}

func sortedMapKeysSessions(m map[string]api.PageSession) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return keys
}

func keyLess(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}
