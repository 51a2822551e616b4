package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *CommissionRule) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CommissionRule, error)
	List(ctx context.Context, db *gorm.DB, activeOnly bool, limit int) ([]*CommissionRule, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	// ListCandidates returns active rules whose validity window loosely
	// admits the given day. Precise scope and window filtering happens in
	// the resolver.
	ListCandidates(ctx context.Context, db *gorm.DB, asOf time.Time) ([]*CommissionRule, error)
}
