package ledger

import (
	"github.com/fiadolabs/fiado/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(service.New),
)
