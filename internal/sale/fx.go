package sale

import (
	"github.com/acentera/acentera/internal/sale/repository"
	"github.com/acentera/acentera/internal/sale/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sale.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
