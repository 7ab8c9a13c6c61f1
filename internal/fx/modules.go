package fx

import (
	"wls-leaderboard/internal/api"
	"wls-leaderboard/internal/config"
	"wls-leaderboard/internal/database"
	"wls-leaderboard/internal/logger"
	"wls-leaderboard/internal/metrics"
	"wls-leaderboard/internal/poller"
	"wls-leaderboard/internal/repository"
	"wls-leaderboard/internal/server"
	"wls-leaderboard/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(metrics.New),
	// repos
	fx.Provide(repository.NewSnapshotRepository),
	// api client
	fx.Provide(api.NewWLSClient),
	// svc
	fx.Provide(service.NewFlagsService),
	fx.Provide(service.NewLeaderboardService),
	// poller
	fx.Provide(poller.New),
	// server
	fx.Provide(server.NewServer),
)
