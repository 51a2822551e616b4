package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	branchdomain "github.com/acentera/acentera/internal/branch/domain"
	"github.com/acentera/acentera/pkg/db/pagination"
)

type createBranchRequest struct {
	Name     string         `json:"name"`
	Code     string         `json:"code"`
	Settings map[string]any `json:"settings"`
}

func (s *Server) CreateBranch(c *gin.Context) {
	var req createBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.branchSvc.Create(c.Request.Context(), branchdomain.CreateBranchRequest{
		Name:     strings.TrimSpace(req.Name),
		Code:     strings.TrimSpace(req.Code),
		Settings: req.Settings,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c.Request.Context(), "branch.create", "branch", resp.ID.String(), map[string]any{
		"name": resp.Name,
		"code": resp.Code,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBranches(c *gin.Context) {
	var query struct {
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.branchSvc.List(c.Request.Context(), branchdomain.ListBranchRequest{
		PageSize:  int32(query.PageSize),
		PageToken: query.PageToken,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBranchByID(c *gin.Context) {
	resp, err := s.branchSvc.GetByID(c.Request.Context(), branchdomain.GetBranchRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
