package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/observability"
	"github.com/smallbiznis/bizledger/internal/scheduler"
	"github.com/smallbiznis/bizledger/internal/server"
	"github.com/smallbiznis/bizledger/pkg/db"
	"go.uber.org/fx"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
