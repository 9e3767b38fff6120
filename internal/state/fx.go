package state

import (
	"github.com/smallbiznis/bizledger/internal/state/service"
	"go.uber.org/fx"
)

var Module = fx.Module("state.service",
	fx.Provide(service.New),
)
