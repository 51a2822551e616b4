package repository

import (
	"context"
	"errors"

	"github.com/acentera/acentera/internal/commission/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, log *domain.CommissionLog) error {
	return db.WithContext(ctx).Create(log).Error
}

func (r *repo) FindBySaleID(ctx context.Context, db *gorm.DB, saleID snowflake.ID) (*domain.CommissionLog, error) {
	var log domain.CommissionLog
	err := db.WithContext(ctx).Where("sale_id = ?", saleID).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (r *repo) DeleteBySaleID(ctx context.Context, db *gorm.DB, saleID snowflake.ID) error {
	return db.WithContext(ctx).Where("sale_id = ?", saleID).Delete(&domain.CommissionLog{}).Error
}
