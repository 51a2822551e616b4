package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	saledomain "github.com/acentera/acentera/internal/sale/domain"
	"github.com/acentera/acentera/pkg/db/pagination"
)

type createSaleRequest struct {
	CustomerName string          `json:"customer_name"`
	PolicyNumber string          `json:"policy_number"`
	BranchID     string          `json:"branch_id"`
	PolicyTypeID string          `json:"policy_type_id"`
	EmployeeID   string          `json:"employee_id"`
	Amount       decimal.Decimal `json:"amount"`
	SaleDate     string          `json:"sale_date"`
}

func (s *Server) CreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	saleDate, err := parseOptionalTime(req.SaleDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("sale_date", "invalid_sale_date", "invalid sale_date"))
		return
	}

	resp, err := s.saleSvc.Create(c.Request.Context(), saledomain.CreateSaleRequest{
		CustomerName: strings.TrimSpace(req.CustomerName),
		PolicyNumber: strings.TrimSpace(req.PolicyNumber),
		BranchID:     strings.TrimSpace(req.BranchID),
		PolicyTypeID: strings.TrimSpace(req.PolicyTypeID),
		EmployeeID:   strings.TrimSpace(req.EmployeeID),
		Amount:       req.Amount,
		SaleDate:     saleDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c.Request.Context(), "sale.create", "sale", resp.Sale.ID.String(), map[string]any{
		"policy_number": resp.Sale.PolicyNumber,
		"branch_id":     resp.Sale.BranchID.String(),
		"amount":        resp.Sale.Amount.String(),
		"commission":    resp.Commission.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateSaleRequest struct {
	CustomerName *string          `json:"customer_name"`
	BranchID     *string          `json:"branch_id"`
	PolicyTypeID *string          `json:"policy_type_id"`
	Amount       *decimal.Decimal `json:"amount"`
	Status       *string          `json:"status"`
	SaleDate     *string          `json:"sale_date"`
}

func (s *Server) UpdateSale(c *gin.Context) {
	var req updateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := saledomain.UpdateSaleRequest{
		ID:           c.Param("id"),
		CustomerName: req.CustomerName,
		BranchID:     req.BranchID,
		PolicyTypeID: req.PolicyTypeID,
		Amount:       req.Amount,
	}

	if req.Status != nil {
		status := saledomain.SaleStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
		update.Status = &status
	}

	if req.SaleDate != nil {
		saleDate, err := parseOptionalTime(*req.SaleDate, false)
		if err != nil || saleDate == nil {
			AbortWithError(c, newValidationError("sale_date", "invalid_sale_date", "invalid sale_date"))
			return
		}
		update.SaleDate = saleDate
	}

	resp, err := s.saleSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c.Request.Context(), "sale.update", "sale", resp.Sale.ID.String(), map[string]any{
		"amount":     resp.Sale.Amount.String(),
		"status":     string(resp.Sale.Status),
		"commission": resp.Commission.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSaleByID(c *gin.Context) {
	resp, err := s.saleSvc.GetByID(c.Request.Context(), saledomain.GetSaleRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSales(c *gin.Context) {
	var query struct {
		pagination.Pagination
		BranchID string `form:"branch_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.saleSvc.List(c.Request.Context(), saledomain.ListSaleRequest{
		PageSize:  int32(query.PageSize),
		PageToken: query.PageToken,
		BranchID:  strings.TrimSpace(query.BranchID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSale(c *gin.Context) {
	id := c.Param("id")
	if err := s.saleSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c.Request.Context(), "sale.delete", "sale", id, nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id}})
}

func (s *Server) RecalculateSale(c *gin.Context) {
	id := c.Param("id")
	commission, err := s.saleSvc.Recalculate(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c.Request.Context(), "sale.recalculate", "sale", id, map[string]any{
		"commission": commission.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"sale_id":    id,
		"commission": commission,
	}})
}

func (s *Server) GetSaleCommission(c *gin.Context) {
	id := c.Param("id")

	// Look the sale up first so a missing sale is a 404, not an empty log.
	if _, err := s.saleSvc.GetByID(c.Request.Context(), saledomain.GetSaleRequest{ID: id}); err != nil {
		AbortWithError(c, err)
		return
	}

	log, err := s.commissionSvc.LogForSale(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if log == nil {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"sale_id":    id,
			"commission": decimal.Zero,
			"source":     "NONE",
		}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": log})
}
