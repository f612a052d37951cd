package merchant

import (
	"github.com/fiadolabs/fiado/internal/merchant/repository"
	"github.com/fiadolabs/fiado/internal/merchant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("merchant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
