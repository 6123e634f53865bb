package training

import (
	"github.com/retailops/quantclass/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("training",
	fx.Provide(config.LoadTrainingConfig),
	fx.Provide(NewDriver),
)
