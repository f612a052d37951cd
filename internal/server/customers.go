package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	merchantdomain "github.com/fiadolabs/fiado/internal/merchant/domain"
)

type createCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	customer, err := s.merchantSvc.CreateCustomer(c.Request.Context(), merchantdomain.CreateCustomerRequest{
		MerchantID: c.Param("id"),
		Name:       req.Name,
		Phone:      req.Phone,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (s *Server) ListCustomers(c *gin.Context) {
	customers, err := s.merchantSvc.ListCustomers(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (s *Server) GetCustomer(c *gin.Context) {
	customer, err := s.merchantSvc.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	if err := s.merchantSvc.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
