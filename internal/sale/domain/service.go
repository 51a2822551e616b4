package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type CreateSaleRequest struct {
	CustomerName string          `json:"customer_name"`
	PolicyNumber string          `json:"policy_number"`
	BranchID     string          `json:"branch_id"`
	PolicyTypeID string          `json:"policy_type_id"`
	EmployeeID   string          `json:"employee_id"`
	Amount       decimal.Decimal `json:"amount"`
	SaleDate     *time.Time      `json:"sale_date,omitempty"`
}

type UpdateSaleRequest struct {
	ID           string
	CustomerName *string          `json:"customer_name,omitempty"`
	BranchID     *string          `json:"branch_id,omitempty"`
	PolicyTypeID *string          `json:"policy_type_id,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Status       *SaleStatus      `json:"status,omitempty"`
	SaleDate     *time.Time       `json:"sale_date,omitempty"`
}

type GetSaleRequest struct {
	ID string
}

type ListSaleRequest struct {
	PageSize  int32
	PageToken string
	BranchID  string
}

type ListSaleResponse struct {
	Sales []Sale `json:"sales"`
}

// SaleResponse annotates a sale with its freshly computed commission.
type SaleResponse struct {
	Sale       Sale            `json:"sale"`
	Commission decimal.Decimal `json:"commission"`
}

type Service interface {
	Create(context.Context, CreateSaleRequest) (SaleResponse, error)
	Update(context.Context, UpdateSaleRequest) (SaleResponse, error)
	GetByID(context.Context, GetSaleRequest) (Sale, error)
	List(context.Context, ListSaleRequest) (ListSaleResponse, error)
	Delete(ctx context.Context, id string) error
	// Recalculate re-runs the commission engine for an existing sale.
	Recalculate(ctx context.Context, id string) (decimal.Decimal, error)
}

var (
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidPolicyNumber = errors.New("invalid_policy_number")
	ErrInvalidBranch       = errors.New("invalid_branch")
	ErrInvalidPolicyType   = errors.New("invalid_policy_type")
	ErrInvalidEmployee     = errors.New("invalid_employee")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
