package service

import (
	"context"
	"strings"
	"time"

	"github.com/acentera/acentera/internal/policytype/domain"
	"github.com/acentera/acentera/pkg/db/option"
	"github.com/acentera/acentera/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository[domain.PolicyType]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("policytype.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[domain.PolicyType](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePolicyTypeRequest) (domain.PolicyType, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.PolicyType{}, domain.ErrInvalidName
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.PolicyType{}, domain.ErrInvalidCode
	}

	now := time.Now().UTC()
	policyType := domain.PolicyType{
		ID:        s.genID.Generate(),
		Name:      name,
		Code:      code,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, &policyType); err != nil {
		return domain.PolicyType{}, err
	}

	return policyType, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPolicyTypeRequest) (domain.ListPolicyTypeResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	items, err := s.repo.Find(ctx, &domain.PolicyType{},
		option.WithOrder("name ASC"),
		option.WithLimit(int(pageSize)),
	)
	if err != nil {
		return domain.ListPolicyTypeResponse{}, err
	}

	policyTypes := make([]domain.PolicyType, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		policyTypes = append(policyTypes, *item)
	}

	return domain.ListPolicyTypeResponse{PolicyTypes: policyTypes}, nil
}
