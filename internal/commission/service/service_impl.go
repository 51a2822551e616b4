package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	branchdomain "github.com/acentera/acentera/internal/branch/domain"
	"github.com/acentera/acentera/internal/clock"
	commissiondomain "github.com/acentera/acentera/internal/commission/domain"
	"github.com/acentera/acentera/internal/commission/formula"
	ruledomain "github.com/acentera/acentera/internal/commissionrule/domain"
	"github.com/acentera/acentera/internal/config"
	obsmetrics "github.com/acentera/acentera/internal/observability/metrics"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Engine     *config.EngineConfigHolder
	LogRepo  commissiondomain.Repository
	RuleRepo ruledomain.Repository
	Branches branchdomain.Service
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	engine   *config.EngineConfigHolder
	logRepo  commissiondomain.Repository
	ruleRepo ruledomain.Repository
	branches branchdomain.Service
	metrics  *obsmetrics.Metrics
}

func New(p Params) commissiondomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("commission.service"),
		genID: p.GenID,
		clock: p.Clock,

		engine:   p.Engine,
		logRepo:  p.LogRepo,
		ruleRepo: p.RuleRepo,
		branches: p.Branches,
		metrics:  p.Metrics,
	}
}

func (s *Service) CalculateAndLog(ctx context.Context, in commissiondomain.CalculateInput) (decimal.Decimal, error) {
	saleID, err := parseID(in.SaleID)
	if err != nil {
		return decimal.Zero, commissiondomain.ErrInvalidSale
	}
	employeeID, err := parseID(in.EmployeeID)
	if err != nil {
		return decimal.Zero, commissiondomain.ErrInvalidEmployee
	}

	resolution, err := s.resolve(ctx, commissiondomain.ResolveInput{
		Amount:       in.Amount,
		BranchID:     in.BranchID,
		PolicyTypeID: in.PolicyTypeID,
		AsOf:         in.AsOf,
	})
	if err != nil {
		return decimal.Zero, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Replace-not-append: the delete pairs with the insert inside one
		// transaction so a sale never holds two logs, even under
		// concurrent recalculation.
		if err := s.logRepo.DeleteBySaleID(ctx, tx, saleID); err != nil {
			return err
		}

		if !resolution.Amount.IsPositive() {
			return nil
		}

		return s.logRepo.Insert(ctx, tx, &commissiondomain.CommissionLog{
			ID:         s.genID.Generate(),
			SaleID:     saleID,
			EmployeeID: employeeID,
			Amount:     resolution.Amount,
			RuleID:     resolution.RuleID,
			Source:     resolution.Source,
			CreatedAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.metrics.RecordCalculation(ctx, string(resolution.Source))
	if !resolution.Amount.IsPositive() {
		s.metrics.RecordZeroResolution(ctx, string(resolution.Source))
	}

	s.log.Info("commission calculated",
		zap.String("sale_id", saleID.String()),
		zap.String("source", string(resolution.Source)),
		zap.String("amount", resolution.Amount.String()),
	)

	return resolution.Amount, nil
}

func (s *Service) Simulate(ctx context.Context, in commissiondomain.ResolveInput) (commissiondomain.Resolution, error) {
	resolution, err := s.resolve(ctx, in)
	if err != nil {
		return commissiondomain.Resolution{}, err
	}

	s.metrics.RecordSimulateRequest(ctx, string(resolution.Source))
	return resolution, nil
}

func (s *Service) LogForSale(ctx context.Context, rawSaleID string) (*commissiondomain.CommissionLog, error) {
	saleID, err := parseID(rawSaleID)
	if err != nil {
		return nil, commissiondomain.ErrInvalidSale
	}
	return s.logRepo.FindBySaleID(ctx, s.db, saleID)
}

// resolve finds the single winning rule for the sale context, or falls
// back to the branch default rate. The ordering contract is a published
// business rule: both-scoped beats branch-only beats policy-type-only
// beats global, and equal specificity goes to the most recently created
// rule.
func (s *Service) resolve(ctx context.Context, in commissiondomain.ResolveInput) (commissiondomain.Resolution, error) {
	asOf := in.AsOf
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	day := ruledomain.StartOfDay(asOf)

	branchID, err := parseID(in.BranchID)
	if err != nil {
		return commissiondomain.Resolution{}, commissiondomain.ErrInvalidBranch
	}
	policyTypeID, err := parseID(in.PolicyTypeID)
	if err != nil {
		return commissiondomain.Resolution{}, commissiondomain.ErrInvalidPolicyType
	}

	candidates, err := s.ruleRepo.ListCandidates(ctx, s.db, day)
	if err != nil {
		return commissiondomain.Resolution{}, err
	}

	matches := make([]*ruledomain.CommissionRule, 0, len(candidates))
	for _, rule := range candidates {
		if rule == nil {
			continue
		}
		if rule.AppliesTo(branchID, policyTypeID, day) {
			matches = append(matches, rule)
		}
	}

	if len(matches) > 0 {
		sort.SliceStable(matches, func(i, j int) bool {
			a, b := matches[i], matches[j]
			if sa, sb := a.SpecificityScore(), b.SpecificityScore(); sa != sb {
				return sa > sb
			}
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		})

		winner := matches[0]
		amount, ok := formula.Evaluate(in.Amount, winner.Formula)
		if !ok {
			s.metrics.RecordFormulaFailure(ctx)
			s.log.Warn("malformed commission formula, resolving to zero",
				zap.String("rule_id", winner.ID.String()),
				zap.String("formula", winner.Formula),
			)
		}

		ruleID := winner.ID
		return commissiondomain.Resolution{
			Amount:   s.round(amount),
			RuleID:   &ruleID,
			RuleName: winner.Name,
			Source:   commissiondomain.SourceRule,
		}, nil
	}

	rate, ok, err := s.branches.DefaultRate(ctx, in.BranchID)
	if err != nil {
		return commissiondomain.Resolution{}, err
	}
	if ok {
		return commissiondomain.Resolution{
			Amount: s.round(in.Amount.Mul(rate)),
			Source: commissiondomain.SourceBranch,
		}, nil
	}

	return commissiondomain.Resolution{
		Amount: decimal.Zero,
		Source: commissiondomain.SourceNone,
	}, nil
}

// round snaps the amount to the configured currency scale. Negative
// results clamp to zero: a formula like "raw:-50" never produces a
// payable debt against the employee.
func (s *Service) round(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	scale := int32(2)
	if s.engine != nil {
		scale = s.engine.Get().CurrencyScale
	}
	return amount.Round(scale)
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errors.New("zero id")
	}
	return id, nil
}
