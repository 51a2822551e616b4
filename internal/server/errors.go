package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	auditdomain "github.com/acentera/acentera/internal/audit/domain"
	branchdomain "github.com/acentera/acentera/internal/branch/domain"
	commissiondomain "github.com/acentera/acentera/internal/commission/domain"
	ruledomain "github.com/acentera/acentera/internal/commissionrule/domain"
	policytypedomain "github.com/acentera/acentera/internal/policytype/domain"
	saledomain "github.com/acentera/acentera/internal/sale/domain"
	"github.com/acentera/acentera/pkg/db"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrTooManyRequests = errors.New("too_many_requests")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrConflict), db.IsDuplicateKeyErr(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErrs *ValidationErrors
	if errors.As(err, &vErrs) {
		return vErrs
	}
	var vErr ValidationErrors
	if errors.As(err, &vErr) {
		return &vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case errors.Is(err, branchdomain.ErrInvalidName),
		errors.Is(err, branchdomain.ErrInvalidCode),
		errors.Is(err, branchdomain.ErrInvalidRate),
		errors.Is(err, branchdomain.ErrInvalidID):
		return true
	case errors.Is(err, policytypedomain.ErrInvalidName),
		errors.Is(err, policytypedomain.ErrInvalidCode):
		return true
	case errors.Is(err, ruledomain.ErrInvalidName),
		errors.Is(err, ruledomain.ErrInvalidFormula),
		errors.Is(err, ruledomain.ErrInvalidValidFrom),
		errors.Is(err, ruledomain.ErrInvalidValidTo),
		errors.Is(err, ruledomain.ErrInvalidBranch),
		errors.Is(err, ruledomain.ErrInvalidPolicyType),
		errors.Is(err, ruledomain.ErrInvalidID):
		return true
	case errors.Is(err, commissiondomain.ErrInvalidSale),
		errors.Is(err, commissiondomain.ErrInvalidEmployee),
		errors.Is(err, commissiondomain.ErrInvalidBranch),
		errors.Is(err, commissiondomain.ErrInvalidPolicyType):
		return true
	case errors.Is(err, saledomain.ErrInvalidCustomer),
		errors.Is(err, saledomain.ErrInvalidPolicyNumber),
		errors.Is(err, saledomain.ErrInvalidBranch),
		errors.Is(err, saledomain.ErrInvalidPolicyType),
		errors.Is(err, saledomain.ErrInvalidEmployee),
		errors.Is(err, saledomain.ErrInvalidAmount),
		errors.Is(err, saledomain.ErrInvalidStatus),
		errors.Is(err, saledomain.ErrInvalidID):
		return true
	case errors.Is(err, auditdomain.ErrInvalidAction),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, branchdomain.ErrNotFound),
		errors.Is(err, policytypedomain.ErrNotFound),
		errors.Is(err, ruledomain.ErrNotFound),
		errors.Is(err, saledomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if err == nil {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	return strings.TrimPrefix(code, "invalid_")
}

func validationErrorMessage(code string) string {
	if code == "invalid_request" {
		return "invalid request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return "invalid " + strings.ReplaceAll(strings.TrimPrefix(code, "invalid_"), "_", " ")
	}
	return "invalid value"
}
