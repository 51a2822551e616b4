package service

import (
	"context"
	"strings"
	"time"

	"github.com/acentera/acentera/internal/clock"
	commissiondomain "github.com/acentera/acentera/internal/commission/domain"
	"github.com/acentera/acentera/internal/sale/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          domain.Repository
	CommissionSvc commissiondomain.Service
	LogRepo       commissiondomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	repo          domain.Repository
	commissionSvc commissiondomain.Service
	logRepo       commissiondomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("sale.service"),
		genID: p.GenID,
		clock: p.Clock,

		repo:          p.Repo,
		commissionSvc: p.CommissionSvc,
		logRepo:       p.LogRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSaleRequest) (domain.SaleResponse, error) {
	customer := strings.TrimSpace(req.CustomerName)
	if customer == "" {
		return domain.SaleResponse{}, domain.ErrInvalidCustomer
	}
	policyNumber := strings.TrimSpace(req.PolicyNumber)
	if policyNumber == "" {
		return domain.SaleResponse{}, domain.ErrInvalidPolicyNumber
	}
	if !req.Amount.IsPositive() {
		return domain.SaleResponse{}, domain.ErrInvalidAmount
	}

	branchID, err := parseID(req.BranchID)
	if err != nil {
		return domain.SaleResponse{}, domain.ErrInvalidBranch
	}
	policyTypeID, err := parseID(req.PolicyTypeID)
	if err != nil {
		return domain.SaleResponse{}, domain.ErrInvalidPolicyType
	}
	employeeID, err := parseID(req.EmployeeID)
	if err != nil {
		return domain.SaleResponse{}, domain.ErrInvalidEmployee
	}

	saleDate := s.clock.Now()
	if req.SaleDate != nil && !req.SaleDate.IsZero() {
		saleDate = req.SaleDate.UTC()
	}

	now := time.Now().UTC()
	sale := domain.Sale{
		ID:           s.genID.Generate(),
		CustomerName: customer,
		PolicyNumber: policyNumber,
		BranchID:     branchID,
		PolicyTypeID: policyTypeID,
		EmployeeID:   employeeID,
		Amount:       req.Amount,
		Status:       domain.SaleStatusActive,
		SaleDate:     saleDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &sale); err != nil {
		return domain.SaleResponse{}, err
	}

	commission, err := s.calculate(ctx, sale)
	if err != nil {
		return domain.SaleResponse{}, err
	}

	return domain.SaleResponse{Sale: sale, Commission: commission}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSaleRequest) (domain.SaleResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.SaleResponse{}, domain.ErrInvalidID
	}

	sale, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.SaleResponse{}, err
	}
	if sale == nil {
		return domain.SaleResponse{}, domain.ErrNotFound
	}

	if req.CustomerName != nil {
		customer := strings.TrimSpace(*req.CustomerName)
		if customer == "" {
			return domain.SaleResponse{}, domain.ErrInvalidCustomer
		}
		sale.CustomerName = customer
	}
	if req.BranchID != nil {
		branchID, err := parseID(*req.BranchID)
		if err != nil {
			return domain.SaleResponse{}, domain.ErrInvalidBranch
		}
		sale.BranchID = branchID
	}
	if req.PolicyTypeID != nil {
		policyTypeID, err := parseID(*req.PolicyTypeID)
		if err != nil {
			return domain.SaleResponse{}, domain.ErrInvalidPolicyType
		}
		sale.PolicyTypeID = policyTypeID
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return domain.SaleResponse{}, domain.ErrInvalidAmount
		}
		sale.Amount = *req.Amount
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.SaleStatusActive, domain.SaleStatusCancelled:
			sale.Status = *req.Status
		default:
			return domain.SaleResponse{}, domain.ErrInvalidStatus
		}
	}
	if req.SaleDate != nil && !req.SaleDate.IsZero() {
		sale.SaleDate = req.SaleDate.UTC()
	}
	sale.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, sale); err != nil {
		return domain.SaleResponse{}, err
	}

	// Amount, branch, policy type, and date all feed rule matching, so
	// every update recalculates rather than trusting the prior log.
	commission, err := s.calculate(ctx, *sale)
	if err != nil {
		return domain.SaleResponse{}, err
	}

	return domain.SaleResponse{Sale: *sale, Commission: commission}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetSaleRequest) (domain.Sale, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Sale{}, domain.ErrInvalidID
	}

	sale, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Sale{}, err
	}
	if sale == nil {
		return domain.Sale{}, domain.ErrNotFound
	}
	return *sale, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSaleRequest) (domain.ListSaleResponse, error) {
	items, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return domain.ListSaleResponse{}, err
	}

	sales := make([]domain.Sale, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		sales = append(sales, *item)
	}

	return domain.ListSaleResponse{Sales: sales}, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return domain.ErrInvalidID
	}

	sale, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if sale == nil {
		return domain.ErrNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.logRepo.DeleteBySaleID(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
}

func (s *Service) Recalculate(ctx context.Context, rawID string) (decimal.Decimal, error) {
	id, err := parseID(rawID)
	if err != nil {
		return decimal.Zero, domain.ErrInvalidID
	}

	sale, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return decimal.Zero, err
	}
	if sale == nil {
		return decimal.Zero, domain.ErrNotFound
	}

	return s.calculate(ctx, *sale)
}

func (s *Service) calculate(ctx context.Context, sale domain.Sale) (decimal.Decimal, error) {
	return s.commissionSvc.CalculateAndLog(ctx, commissiondomain.CalculateInput{
		SaleID:       sale.ID.String(),
		EmployeeID:   sale.EmployeeID.String(),
		Amount:       sale.Amount,
		BranchID:     sale.BranchID.String(),
		PolicyTypeID: sale.PolicyTypeID.String(),
		AsOf:         sale.SaleDate,
	})
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
