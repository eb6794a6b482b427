package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/platefee/internal/clock"
	"github.com/smallbiznis/platefee/internal/config"
	"github.com/smallbiznis/platefee/internal/logger"
	"github.com/smallbiznis/platefee/internal/migration"
	"github.com/smallbiznis/platefee/internal/server"
	"github.com/smallbiznis/platefee/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
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
