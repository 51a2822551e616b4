package service

import (
	"context"
	"strings"
	"time"

	"github.com/acentera/acentera/internal/commission/formula"
	"github.com/acentera/acentera/internal/commissionrule/domain"
	"github.com/acentera/acentera/internal/config"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Engine *config.EngineConfigHolder `optional:"true"`
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	engine *config.EngineConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("commissionrule.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		engine: p.Engine,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRuleRequest) (domain.CommissionRule, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CommissionRule{}, domain.ErrInvalidName
	}

	if len(strings.TrimSpace(req.Formula)) > s.maxFormulaLength() {
		return domain.CommissionRule{}, domain.ErrInvalidFormula
	}
	if !formula.Valid(req.Formula) {
		return domain.CommissionRule{}, domain.ErrInvalidFormula
	}

	if req.ValidFrom.IsZero() {
		return domain.CommissionRule{}, domain.ErrInvalidValidFrom
	}
	validFrom := domain.StartOfDay(req.ValidFrom)

	var validTo *time.Time
	if req.ValidTo != nil {
		normalized := domain.StartOfDay(*req.ValidTo)
		if normalized.Before(validFrom) {
			return domain.CommissionRule{}, domain.ErrInvalidValidTo
		}
		validTo = &normalized
	}

	branchID, err := parseOptionalID(req.BranchID)
	if err != nil {
		return domain.CommissionRule{}, domain.ErrInvalidBranch
	}
	policyTypeID, err := parseOptionalID(req.PolicyTypeID)
	if err != nil {
		return domain.CommissionRule{}, domain.ErrInvalidPolicyType
	}

	rule := domain.CommissionRule{
		ID:           s.genID.Generate(),
		Name:         name,
		BranchID:     branchID,
		PolicyTypeID: policyTypeID,
		Formula:      strings.TrimSpace(req.Formula),
		ValidFrom:    validFrom,
		ValidTo:      validTo,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &rule); err != nil {
		return domain.CommissionRule{}, err
	}

	s.log.Info("commission rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("formula", rule.Formula),
		zap.Int("specificity", rule.SpecificityScore()),
	)

	return rule, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRuleRequest) (domain.ListRuleResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	items, err := s.repo.List(ctx, s.db, req.ActiveOnly, int(pageSize))
	if err != nil {
		return domain.ListRuleResponse{}, err
	}

	rules := make([]domain.CommissionRule, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		rules = append(rules, *item)
	}

	return domain.ListRuleResponse{Rules: rules}, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteRuleRequest) error {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.ErrInvalidID
	}

	rule, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if rule == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return err
	}

	s.log.Info("commission rule deleted", zap.String("rule_id", id.String()))
	return nil
}

func (s *Service) maxFormulaLength() int {
	if s.engine == nil {
		return config.DefaultEngineConfig().MaxFormulaLength
	}
	return s.engine.Get().MaxFormulaLength
}

func parseOptionalID(raw string) (*snowflake.ID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(trimmed)
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}
	return &id, nil
}
