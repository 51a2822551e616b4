package service

import (
	"context"
	"strings"
	"time"

	"github.com/acentera/acentera/internal/branch/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("branch.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateBranchRequest) (domain.Branch, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Branch{}, domain.ErrInvalidName
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.Branch{}, domain.ErrInvalidCode
	}

	settings := datatypes.JSONMap{}
	for key, value := range req.Settings {
		if key == "" {
			continue
		}
		settings[key] = value
	}

	if raw, ok := settings[domain.SettingCommissionRate]; ok && raw != nil {
		rate, valid := (domain.Branch{Settings: settings}).CommissionRate()
		if !valid || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return domain.Branch{}, domain.ErrInvalidRate
		}
	}

	now := time.Now().UTC()
	branch := domain.Branch{
		ID:        s.genID.Generate(),
		Name:      name,
		Code:      code,
		Settings:  settings,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &branch); err != nil {
		return domain.Branch{}, err
	}

	return branch, nil
}

func (s *Service) List(ctx context.Context, req domain.ListBranchRequest) (domain.ListBranchResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, int(pageSize))
	if err != nil {
		return domain.ListBranchResponse{}, err
	}

	branches := make([]domain.Branch, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		branches = append(branches, *item)
	}

	return domain.ListBranchResponse{Branches: branches}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetBranchRequest) (domain.Branch, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Branch{}, err
	}

	branch, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Branch{}, err
	}
	if branch == nil {
		return domain.Branch{}, domain.ErrNotFound
	}

	return *branch, nil
}

func (s *Service) DefaultRate(ctx context.Context, branchID string) (decimal.Decimal, bool, error) {
	id, err := s.parseID(branchID)
	if err != nil {
		return decimal.Zero, false, err
	}

	branch, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return decimal.Zero, false, err
	}
	if branch == nil {
		return decimal.Zero, false, nil
	}

	rate, ok := branch.CommissionRate()
	return rate, ok, nil
}

func (s *Service) parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
