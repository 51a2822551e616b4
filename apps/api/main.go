package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/acentera/acentera/internal/clock"
	"github.com/acentera/acentera/internal/config"
	"github.com/acentera/acentera/internal/logger"
	"github.com/acentera/acentera/internal/migration"
	"github.com/acentera/acentera/internal/observability"
	"github.com/acentera/acentera/internal/server"
	"github.com/acentera/acentera/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
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
