package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	policytypedomain "github.com/acentera/acentera/internal/policytype/domain"
	"github.com/acentera/acentera/pkg/db/pagination"
)

type createPolicyTypeRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (s *Server) CreatePolicyType(c *gin.Context) {
	var req createPolicyTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.policyTypeSvc.Create(c.Request.Context(), policytypedomain.CreatePolicyTypeRequest{
		Name: strings.TrimSpace(req.Name),
		Code: strings.TrimSpace(req.Code),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c.Request.Context(), "policy_type.create", "policy_type", resp.ID.String(), map[string]any{
		"name": resp.Name,
		"code": resp.Code,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPolicyTypes(c *gin.Context) {
	var query struct {
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.policyTypeSvc.List(c.Request.Context(), policytypedomain.ListPolicyTypeRequest{
		PageSize: int32(query.PageSize),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
