package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/retailops/quantclass/internal/config"
	"github.com/retailops/quantclass/internal/dataset"
	"github.com/retailops/quantclass/internal/observability"
	"github.com/retailops/quantclass/internal/training"
	"github.com/retailops/quantclass/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		dataset.Module,
		training.Module,
		fx.Invoke(runTraining),
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

// runTraining executes one training run and shuts the process down with a
// non-zero exit code on failure.
func runTraining(lc fx.Lifecycle, driver *training.Driver, shutdowner fx.Shutdowner, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if _, err := driver.Run(context.Background()); err != nil {
					log.Error("training run failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
	})
}
