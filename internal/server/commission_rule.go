package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	commissiondomain "github.com/acentera/acentera/internal/commission/domain"
	ruledomain "github.com/acentera/acentera/internal/commissionrule/domain"
	"github.com/acentera/acentera/pkg/db/pagination"
)

type createCommissionRuleRequest struct {
	Name         string `json:"name"`
	BranchID     string `json:"branch_id"`
	PolicyTypeID string `json:"policy_type_id"`
	Formula      string `json:"formula"`
	ValidFrom    string `json:"valid_from"`
	ValidTo      string `json:"valid_to"`
}

func (s *Server) CreateCommissionRule(c *gin.Context) {
	var req createCommissionRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	validFrom, err := parseTime(strings.TrimSpace(req.ValidFrom), false)
	if err != nil {
		AbortWithError(c, ruledomain.ErrInvalidValidFrom)
		return
	}

	validTo, err := parseOptionalTime(req.ValidTo, true)
	if err != nil {
		AbortWithError(c, ruledomain.ErrInvalidValidTo)
		return
	}

	resp, err := s.ruleSvc.Create(c.Request.Context(), ruledomain.CreateRuleRequest{
		Name:         strings.TrimSpace(req.Name),
		BranchID:     strings.TrimSpace(req.BranchID),
		PolicyTypeID: strings.TrimSpace(req.PolicyTypeID),
		Formula:      strings.TrimSpace(req.Formula),
		ValidFrom:    validFrom,
		ValidTo:      validTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c.Request.Context(), "commission_rule.create", "commission_rule", resp.ID.String(), map[string]any{
		"name":           resp.Name,
		"formula":        resp.Formula,
		"branch_id":      req.BranchID,
		"policy_type_id": req.PolicyTypeID,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCommissionRules(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ActiveOnly string `form:"active_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	activeOnly := false
	if trimmed := strings.TrimSpace(query.ActiveOnly); trimmed != "" {
		parsed, err := strconv.ParseBool(trimmed)
		if err != nil {
			AbortWithError(c, newValidationError("active_only", "invalid_active_only", "invalid active_only"))
			return
		}
		activeOnly = parsed
	}

	resp, err := s.ruleSvc.List(c.Request.Context(), ruledomain.ListRuleRequest{
		PageSize:   int32(query.PageSize),
		ActiveOnly: activeOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCommissionRule(c *gin.Context) {
	id := c.Param("id")
	if err := s.ruleSvc.Delete(c.Request.Context(), ruledomain.DeleteRuleRequest{ID: id}); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c.Request.Context(), "commission_rule.delete", "commission_rule", id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id}})
}

type simulateCommissionRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	BranchID     string          `json:"branch_id"`
	PolicyTypeID string          `json:"policy_type_id"`
	AsOf         string          `json:"as_of"`
}

func (s *Server) SimulateCommission(c *gin.Context) {
	result, err := s.simulateLimiter.Allow(c.Request.Context(), c.ClientIP())
	if err != nil {
		s.log.Warn("simulate rate limit check failed", zap.Error(err))
	} else if !result.Allowed {
		if result.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
		}
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	var req simulateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	asOf, err := parseOptionalTime(req.AsOf, false)
	if err != nil {
		AbortWithError(c, newValidationError("as_of", "invalid_as_of", "invalid as_of"))
		return
	}

	input := commissiondomain.ResolveInput{
		Amount:       req.Amount,
		BranchID:     strings.TrimSpace(req.BranchID),
		PolicyTypeID: strings.TrimSpace(req.PolicyTypeID),
	}
	if asOf != nil {
		input.AsOf = *asOf
	}

	resolution, err := s.commissionSvc.Simulate(c.Request.Context(), input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resolution})
}
