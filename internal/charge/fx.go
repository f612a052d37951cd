package charge

import (
	"github.com/fiadolabs/fiado/internal/charge/repository"
	"github.com/fiadolabs/fiado/internal/charge/service"
	"go.uber.org/fx"
)

var Module = fx.Module("charge.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
