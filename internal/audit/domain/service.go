package domain

import (
	"context"
	"errors"
)

// Service is a fire-and-forget sink: callers ignore write failures, which
// are logged and counted but never fail the enclosing operation.
type Service interface {
	AuditLog(ctx context.Context, actorID *string, action, targetType string, targetID *string, metadata map[string]any) error
	List(context.Context, ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
