package payout

import (
	"github.com/fiadolabs/fiado/internal/config"
	"github.com/fiadolabs/fiado/internal/payout/repository"
	"github.com/fiadolabs/fiado/internal/payout/service"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("payout.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(NewQueue),
)

// WorkerModule adds the pool and its redis fence; only the worker process
// loads it.
var WorkerModule = fx.Module("payout.worker",
	fx.Provide(
		newRedisClient,
		NewLocker,
		NewWorker,
		fx.Annotate(
			func(cfg config.Config) int { return cfg.PayoutConcurrency },
			fx.ResultTags(`name:"payout_concurrency"`),
		),
	),
)

func newRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}
