package classifier

import (
	predictdomain "github.com/retailops/quantclass/internal/predict/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("classifier",
	fx.Provide(NewLoader),
	fx.Provide(func(l *Loader) predictdomain.Model { return l }),
)
