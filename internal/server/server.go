package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"wls-leaderboard/internal/constants"
	"wls-leaderboard/internal/poller"
	"wls-leaderboard/internal/repository"
	"wls-leaderboard/internal/service"

	"github.com/rs/zerolog"
)

type Server struct {
	svc    *service.LeaderboardService
	poller *poller.Poller
	repo   *repository.SnapshotRepository
	logger zerolog.Logger
}

func NewServer(svc *service.LeaderboardService, p *poller.Poller, repo *repository.SnapshotRepository, logger zerolog.Logger) *Server {
	return &Server{svc: svc, poller: p, repo: repo, logger: logger}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/leaderboards/{id}", s.handleUnified)
	mux.HandleFunc("GET /v1/leaderboards/{id}/live", s.handleLive)
	mux.HandleFunc("GET /v1/leaderboards/{id}/history", s.handleHistory)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUnified runs one unified fetch on demand with options from the query
// string. A primary fetch failure surfaces as an error so the caller keeps
// its last good view.
func (s *Server) handleUnified(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := service.UnifiedOptions{
		LeaderboardID:             r.PathValue("id"),
		ExcludedSessionIDs:        excludedSessionIDs(q),
		ShowFlags:                 q.Get("flags") == "true",
		ForceRankByPoints:         q.Get("force_rank_by_points") == "true",
		IncludeV7:                 q.Get("include_v7") != "false",
		IndicatorsOnlyWhenAllDead: q.Get("indicators_only_when_all_dead") != "false",
	}

	unified, err := s.svc.GetUnifiedLeaderboard(r.Context(), opts)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "failed to fetch leaderboard")
		return
	}
	s.writeJSON(w, http.StatusOK, unified)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, ok := s.poller.Latest(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "no applied cycle for leaderboard")
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > constants.SnapshotRetention {
		limit = constants.SnapshotRetention
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
	defer cancel()

	snapshots, err := s.repo.ListRecent(ctx, id, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("leaderboard_id", id).Msg("failed to list snapshots")
		s.writeError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"snapshots": snapshots})
}

// excludedSessionIDs collects exclusion ids from both accepted query keys;
// each value may itself be comma-separated.
func excludedSessionIDs(q map[string][]string) []string {
	var out []string
	for _, key := range []string{"exclude_session_id", "exclude_session_ids"} {
		for _, value := range q[key] {
			for _, part := range strings.Split(value, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
