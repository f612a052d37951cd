package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/fiadolabs/fiado/internal/charge"
	"github.com/fiadolabs/fiado/internal/clock"
	"github.com/fiadolabs/fiado/internal/config"
	"github.com/fiadolabs/fiado/internal/debt"
	"github.com/fiadolabs/fiado/internal/gateway"
	"github.com/fiadolabs/fiado/internal/ledger"
	"github.com/fiadolabs/fiado/internal/merchant"
	"github.com/fiadolabs/fiado/internal/migration"
	"github.com/fiadolabs/fiado/internal/observability"
	"github.com/fiadolabs/fiado/internal/payout"
	"github.com/fiadolabs/fiado/internal/server"
	"github.com/fiadolabs/fiado/internal/webhook"
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
		charge.Module,
		payout.Module,
		webhook.Module,

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server) {
			s.RegisterRoutes()
		}),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
