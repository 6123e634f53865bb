package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/retailops/quantclass/internal/config"
	"github.com/retailops/quantclass/internal/observability"
	"github.com/retailops/quantclass/internal/server"
	"github.com/retailops/quantclass/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
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
