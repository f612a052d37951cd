package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/fiadolabs/fiado/internal/clock"
	"github.com/fiadolabs/fiado/internal/config"
	"github.com/fiadolabs/fiado/internal/debt"
	"github.com/fiadolabs/fiado/internal/gateway"
	"github.com/fiadolabs/fiado/internal/ledger"
	"github.com/fiadolabs/fiado/internal/merchant"
	"github.com/fiadolabs/fiado/internal/migration"
	"github.com/fiadolabs/fiado/internal/observability"
	"github.com/fiadolabs/fiado/internal/payout"
	"github.com/fiadolabs/fiado/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,

		gateway.Module,
		merchant.Module,
		debt.Module,
		ledger.Module,
		payout.Module,
		payout.WorkerModule,

		// No HTTP server; the worker only drains the queue.
		fx.Invoke(StartWorker),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
	return node
}

func StartWorker(lc fx.Lifecycle, w *payout.Worker) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				w.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
