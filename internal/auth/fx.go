package auth

import (
	"github.com/smallbiznis/bizledger/internal/auth/authorization"
	"github.com/smallbiznis/bizledger/internal/auth/repository"
	"github.com/smallbiznis/bizledger/internal/auth/service"
	"github.com/smallbiznis/bizledger/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	session.Module,
	authorization.Module,
)
