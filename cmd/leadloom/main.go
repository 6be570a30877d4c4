package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/leadloom/leadloom/internal/config"
	"github.com/leadloom/leadloom/internal/migration"
	"github.com/leadloom/leadloom/internal/observability"
	"github.com/leadloom/leadloom/internal/server"
	"github.com/leadloom/leadloom/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
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
