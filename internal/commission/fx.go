package commission

import (
	"github.com/acentera/acentera/internal/commission/repository"
	"github.com/acentera/acentera/internal/commission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
