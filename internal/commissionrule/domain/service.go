package domain

import (
	"context"
	"errors"
	"time"
)

type CreateRuleRequest struct {
	Name         string     `json:"name"`
	BranchID     string     `json:"branch_id,omitempty"`
	PolicyTypeID string     `json:"policy_type_id,omitempty"`
	Formula      string     `json:"formula"`
	ValidFrom    time.Time  `json:"valid_from"`
	ValidTo      *time.Time `json:"valid_to,omitempty"`
}

type ListRuleRequest struct {
	PageSize   int32
	ActiveOnly bool
}

type ListRuleResponse struct {
	Rules []CommissionRule `json:"rules"`
}

type DeleteRuleRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateRuleRequest) (CommissionRule, error)
	List(context.Context, ListRuleRequest) (ListRuleResponse, error)
	Delete(context.Context, DeleteRuleRequest) error
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidFormula    = errors.New("invalid_formula")
	ErrInvalidValidFrom  = errors.New("invalid_valid_from")
	ErrInvalidValidTo    = errors.New("invalid_valid_to")
	ErrInvalidBranch     = errors.New("invalid_branch")
	ErrInvalidPolicyType = errors.New("invalid_policy_type")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
)
