package commissionrule

import (
	"github.com/acentera/acentera/internal/commissionrule/repository"
	"github.com/acentera/acentera/internal/commissionrule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commissionrule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
