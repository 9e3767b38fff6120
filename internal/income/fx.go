package income

import (
	"github.com/smallbiznis/bizledger/internal/income/repository"
	"github.com/smallbiznis/bizledger/internal/income/service"
	"go.uber.org/fx"
)

var Module = fx.Module("income.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
