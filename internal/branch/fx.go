package branch

import (
	"github.com/acentera/acentera/internal/branch/repository"
	"github.com/acentera/acentera/internal/branch/service"
	"go.uber.org/fx"
)

var Module = fx.Module("branch.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
