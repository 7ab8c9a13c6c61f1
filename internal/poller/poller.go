package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
	"wls-leaderboard/internal/aggregator"
	"wls-leaderboard/internal/config"
	"wls-leaderboard/internal/constants"
	"wls-leaderboard/internal/domain"
	"wls-leaderboard/internal/metrics"
	"wls-leaderboard/internal/repository"
	"wls-leaderboard/internal/service"

	"github.com/rs/zerolog"
)

// CycleResult is one applied poll cycle.
type CycleResult struct {
	domain.Unified
	ChangedRows int       `json:"changed_rows"`
	CycleSeq    uint64    `json:"cycle_seq"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Poller runs one poll loop per configured leaderboard. Overlapping cycles
// are permitted; each completion carries a monotonic sequence number and a
// completion older than the last applied one is discarded, so out-of-order
// completions can never roll displayed state backwards.
type Poller struct {
	svc      *service.LeaderboardService
	repo     *repository.SnapshotRepository
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	interval time.Duration
	cfg      *config.Config

	states map[string]*state

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type state struct {
	seq atomic.Uint64

	mu          sync.RWMutex
	lastApplied uint64
	current     *CycleResult
	previous    []domain.Row
}

func New(svc *service.LeaderboardService, repo *repository.SnapshotRepository, m *metrics.Metrics, cfg *config.Config, logger zerolog.Logger) *Poller {
	states := make(map[string]*state, len(cfg.PollLeaderboards))
	for _, id := range cfg.PollLeaderboards {
		states[id] = &state{}
	}
	return &Poller{
		svc:      svc,
		repo:     repo,
		metrics:  m,
		logger:   logger,
		interval: cfg.PollInterval,
		cfg:      cfg,
		states:   states,
	}
}

func (p *Poller) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	for id, st := range p.states {
		p.logger.Info().Str("leaderboard_id", id).Dur("interval", p.interval).Msg("starting poll loop")
		p.wg.Add(1)
		go p.run(ctx, id, st)
	}
}

func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

// Latest returns the last applied cycle for a polled leaderboard.
func (p *Poller) Latest(leaderboardID string) (*CycleResult, bool) {
	st, ok := p.states[leaderboardID]
	if !ok {
		return nil, false
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.current == nil {
		return nil, false
	}
	return st.current, true
}

func (p *Poller) run(ctx context.Context, id string, st *state) {
	defer p.wg.Done()

	p.seed(ctx, id, st)
	p.launchCycle(ctx, id, st)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.launchCycle(ctx, id, st)
		}
	}
}

// seed restores the previous-leaderboard state from the last persisted
// snapshot so the first cycle after a restart diffs against real history.
func (p *Poller) seed(ctx context.Context, id string, st *state) {
	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	snap, err := p.repo.GetLatest(dbCtx, id)
	if err != nil {
		p.logger.Warn().Err(err).Str("leaderboard_id", id).Msg("failed to load previous snapshot")
		return
	}
	if snap == nil {
		return
	}

	st.mu.Lock()
	st.previous = snap.Leaderboard
	st.mu.Unlock()
	p.logger.Info().Str("leaderboard_id", id).Uint64("cycle_seq", snap.CycleSeq).Msg("seeded previous leaderboard from snapshot")
}

func (p *Poller) launchCycle(ctx context.Context, id string, st *state) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runCycle(ctx, id, st)
	}()
}

func (p *Poller) runCycle(ctx context.Context, id string, st *state) {
	seq := st.seq.Add(1)
	start := time.Now()

	unified, err := p.svc.GetUnifiedLeaderboard(ctx, service.UnifiedOptions{
		LeaderboardID:             id,
		ExcludedSessionIDs:        p.cfg.ExcludedSessionIDs,
		ShowFlags:                 p.cfg.FlagsURL != "",
		IncludeV7:                 true,
		IndicatorsOnlyWhenAllDead: true,
	})
	p.metrics.CycleDuration.WithLabelValues(id).Observe(time.Since(start).Seconds())
	if err != nil {
		// Last good state stays untouched.
		p.metrics.CyclesTotal.WithLabelValues(id, metrics.StatusError).Inc()
		p.logger.Error().Err(err).Str("leaderboard_id", id).Uint64("cycle_seq", seq).Msg("poll cycle failed")
		return
	}

	applied, changed := p.apply(st, seq, unified, start)
	if !applied {
		p.metrics.CyclesTotal.WithLabelValues(id, metrics.StatusStale).Inc()
		p.logger.Debug().Str("leaderboard_id", id).Uint64("cycle_seq", seq).Msg("discarding stale cycle completion")
		return
	}

	p.metrics.CyclesTotal.WithLabelValues(id, metrics.StatusApplied).Inc()
	p.metrics.ChangedRows.WithLabelValues(id).Set(float64(changed))
	p.logger.Info().
		Str("leaderboard_id", id).
		Uint64("cycle_seq", seq).
		Int("changed_rows", changed).
		Msg("poll cycle applied")

	p.persist(id, seq, unified, changed, start)
}

// apply diffs the cycle against the previous leaderboard and installs it,
// unless a newer completion already did.
func (p *Poller) apply(st *state, seq uint64, unified *domain.Unified, fetchedAt time.Time) (bool, int) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if seq < st.lastApplied {
		return false, 0
	}

	enriched, changed := aggregator.EnrichWithPrevious(unified.Leaderboard, st.previous)
	unified.Leaderboard = enriched

	st.current = &CycleResult{
		Unified:     *unified,
		ChangedRows: changed,
		CycleSeq:    seq,
		FetchedAt:   fetchedAt,
	}
	st.previous = enriched
	st.lastApplied = seq
	return true, changed
}

func (p *Poller) persist(id string, seq uint64, unified *domain.Unified, changed int, fetchedAt time.Time) {
	// Background context: a shutdown mid-cycle should not lose the last write.
	dbCtx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	_, err := p.repo.Insert(dbCtx, &domain.Snapshot{
		LeaderboardID: id,
		CycleSeq:      seq,
		ChangedRows:   changed,
		Leaderboard:   unified.Leaderboard,
		FetchedAt:     fetchedAt,
	})
	if err != nil {
		p.logger.Warn().Err(err).Str("leaderboard_id", id).Msg("failed to persist snapshot")
		return
	}

	if err := p.repo.Prune(dbCtx, id, constants.SnapshotRetention); err != nil {
		p.logger.Warn().Err(err).Str("leaderboard_id", id).Msg("failed to prune snapshots")
	}
}
