package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, log *CommissionLog) error
	FindBySaleID(ctx context.Context, db *gorm.DB, saleID snowflake.ID) (*CommissionLog, error)
	// DeleteBySaleID is idempotent; deleting a sale with no log is a no-op.
	DeleteBySaleID(ctx context.Context, db *gorm.DB, saleID snowflake.ID) error
}
