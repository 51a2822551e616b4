package audit

import (
	"github.com/acentera/acentera/internal/audit/repository"
	"github.com/acentera/acentera/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
