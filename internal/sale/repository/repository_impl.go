package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/acentera/acentera/internal/sale/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).Create(sale).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Sale, error) {
	var sale domain.Sale
	err := db.WithContext(ctx).Where("id = ?", id).First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListSaleRequest) ([]*domain.Sale, error) {
	stmt := db.WithContext(ctx).Order("sale_date DESC, id DESC")

	if branchID := strings.TrimSpace(filter.BranchID); branchID != "" {
		id, err := snowflake.ParseString(branchID)
		if err != nil {
			return nil, domain.ErrInvalidBranch
		}
		stmt = stmt.Where("branch_id = ?", id)
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	stmt = stmt.Limit(int(pageSize))

	var sales []*domain.Sale
	if err := stmt.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).Save(sale).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Sale{}).Error
}
