package migration

import (
	auditdomain "github.com/acentera/acentera/internal/audit/domain"
	branchdomain "github.com/acentera/acentera/internal/branch/domain"
	commissiondomain "github.com/acentera/acentera/internal/commission/domain"
	ruledomain "github.com/acentera/acentera/internal/commissionrule/domain"
	"github.com/acentera/acentera/internal/config"
	policytypedomain "github.com/acentera/acentera/internal/policytype/domain"
	saledomain "github.com/acentera/acentera/internal/sale/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		return conn.AutoMigrate(
			&branchdomain.Branch{},
			&policytypedomain.PolicyType{},
			&ruledomain.CommissionRule{},
			&saledomain.Sale{},
			&commissiondomain.CommissionLog{},
			&auditdomain.AuditLog{},
		)
	}),
)
