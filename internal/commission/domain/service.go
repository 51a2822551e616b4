package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Source reports where a resolved commission came from.
type Source string

const (
	// SourceRule means a scoped commission rule won the match.
	SourceRule Source = "RULE"
	// SourceBranch means the branch default rate applied as fallback.
	SourceBranch Source = "BRANCH"
	// SourceNone means nothing applied; commission is zero.
	SourceNone Source = "NONE"
)

// ResolveInput identifies the sale context a commission is computed for.
// A zero AsOf means "now".
type ResolveInput struct {
	Amount       decimal.Decimal `json:"amount"`
	BranchID     string          `json:"branch_id"`
	PolicyTypeID string          `json:"policy_type_id"`
	AsOf         time.Time       `json:"as_of,omitempty"`
}

// Resolution is the outcome of rule matching plus formula evaluation.
type Resolution struct {
	Amount   decimal.Decimal `json:"amount"`
	RuleID   *snowflake.ID   `json:"rule_id,omitempty"`
	RuleName string          `json:"rule_name,omitempty"`
	Source   Source          `json:"source"`
}

type CalculateInput struct {
	SaleID       string
	EmployeeID   string
	Amount       decimal.Decimal
	BranchID     string
	PolicyTypeID string
	AsOf         time.Time
}

type Service interface {
	// CalculateAndLog resolves the commission for a sale and replaces its
	// log record transactionally. Runs on every sale create and update.
	CalculateAndLog(context.Context, CalculateInput) (decimal.Decimal, error)
	// Simulate runs the identical resolution path without persistence.
	Simulate(context.Context, ResolveInput) (Resolution, error)
	// LogForSale returns the current log for a sale, if any.
	LogForSale(ctx context.Context, saleID string) (*CommissionLog, error)
}

var (
	ErrInvalidSale       = errors.New("invalid_sale")
	ErrInvalidEmployee   = errors.New("invalid_employee")
	ErrInvalidBranch     = errors.New("invalid_branch")
	ErrInvalidPolicyType = errors.New("invalid_policy_type")
)
