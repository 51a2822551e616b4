package repository

import (
	"context"
	"errors"
	"time"

	"github.com/acentera/acentera/internal/commissionrule/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rule *domain.CommissionRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CommissionRule, error) {
	var rule domain.CommissionRule
	err := db.WithContext(ctx).Where("id = ?", id).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, activeOnly bool, limit int) ([]*domain.CommissionRule, error) {
	var rules []*domain.CommissionRule
	stmt := db.WithContext(ctx).Order("created_at DESC, id DESC")
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.CommissionRule{}).Error
}

func (r *repo) ListCandidates(ctx context.Context, db *gorm.DB, asOf time.Time) ([]*domain.CommissionRule, error) {
	var rules []*domain.CommissionRule
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("valid_from <= ?", domain.EndOfDay(asOf)).
		Where("(valid_to IS NULL OR valid_to >= ?)", domain.StartOfDay(asOf)).
		Order("created_at DESC, id DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}
