package domain

import (
	"context"
	"errors"
)

type CreatePolicyTypeRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type ListPolicyTypeRequest struct {
	PageSize int32
}

type ListPolicyTypeResponse struct {
	PolicyTypes []PolicyType `json:"policy_types"`
}

type Service interface {
	Create(context.Context, CreatePolicyTypeRequest) (PolicyType, error)
	List(context.Context, ListPolicyTypeRequest) (ListPolicyTypeResponse, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidCode = errors.New("invalid_code")
	ErrNotFound    = errors.New("not_found")
)
