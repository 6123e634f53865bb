package dataset

import (
	"github.com/retailops/quantclass/internal/dataset/domain"
	"github.com/retailops/quantclass/internal/dataset/repository"
	"github.com/retailops/quantclass/internal/dataset/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dataset.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(func(s *service.Service) domain.Loader { return s }),
	fx.Provide(func(s *service.Service) domain.Importer { return s }),
)
