package policytype

import (
	"github.com/acentera/acentera/internal/policytype/service"
	"go.uber.org/fx"
)

var Module = fx.Module("policytype.service",
	fx.Provide(service.New),
)
