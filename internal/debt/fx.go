package debt

import (
	"github.com/fiadolabs/fiado/internal/debt/repository"
	"github.com/fiadolabs/fiado/internal/debt/service"
	"go.uber.org/fx"
)

var Module = fx.Module("debt.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
