package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreateBranchRequest struct {
	Name     string         `json:"name"`
	Code     string         `json:"code"`
	Settings map[string]any `json:"settings"`
}

type GetBranchRequest struct {
	ID string
}

type ListBranchRequest struct {
	PageSize  int32
	PageToken string
}

type ListBranchResponse struct {
	Branches []Branch `json:"branches"`
}

type Service interface {
	Create(context.Context, CreateBranchRequest) (Branch, error)
	List(context.Context, ListBranchRequest) (ListBranchResponse, error)
	GetByID(context.Context, GetBranchRequest) (Branch, error)
	// DefaultRate reports the branch's fallback commission rate and
	// whether one is configured at all.
	DefaultRate(ctx context.Context, branchID string) (decimal.Decimal, bool, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidCode = errors.New("invalid_code")
	ErrInvalidRate = errors.New("invalid_rate")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("not_found")
)
