package predict

import (
	"github.com/retailops/quantclass/internal/predict/repository"
	"github.com/retailops/quantclass/internal/predict/service"
	"go.uber.org/fx"
)

var Module = fx.Module("predict.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
