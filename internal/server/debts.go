package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	debtdomain "github.com/fiadolabs/fiado/internal/debt/domain"
	"github.com/shopspring/decimal"
)

type createDebtRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount" binding:"required"`
	DueDate     string `json:"dueDate"`
}

type updateDebtRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) CreateDebt(c *gin.Context) {
	var req createDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		AbortWithError(c, debtdomain.ErrInvalidAmount)
		return
	}

	var dueDate *time.Time
	if strings.TrimSpace(req.DueDate) != "" {
		parsed, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		dueDate = &parsed
	}

	debt, err := s.debtSvc.Create(c.Request.Context(), debtdomain.CreateDebtRequest{
		CustomerID:  c.Param("id"),
		Description: req.Description,
		Amount:      amount,
		DueDate:     dueDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, debt)
}

func (s *Server) GetDebt(c *gin.Context) {
	debt, err := s.debtSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, debt)
}

func (s *Server) ListMerchantDebts(c *gin.Context) {
	var statuses []debtdomain.Status
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			statuses = append(statuses, debtdomain.Status(strings.ToUpper(strings.TrimSpace(part))))
		}
	}

	debts, err := s.debtSvc.ListByMerchant(c.Request.Context(), debtdomain.ListDebtsRequest{
		MerchantID: c.Param("id"),
		Statuses:   statuses,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"debts": debts})
}

func (s *Server) ListCustomerDebts(c *gin.Context) {
	debts, err := s.debtSvc.ListByCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"debts": debts})
}

func (s *Server) UpdateDebtStatus(c *gin.Context) {
	var req updateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	debt, err := s.debtSvc.SetManualStatus(
		c.Request.Context(),
		c.Param("id"),
		debtdomain.Status(strings.ToUpper(strings.TrimSpace(req.Status))),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, debt)
}

func (s *Server) DeleteDebt(c *gin.Context) {
	if err := s.debtSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
