package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	merchantdomain "github.com/fiadolabs/fiado/internal/merchant/domain"
)

type createMerchantRequest struct {
	Name   string `json:"name" binding:"required"`
	CNPJ   string `json:"cnpj"`
	PixKey string `json:"pixKey"`
}

type updateMerchantRequest struct {
	Name   *string `json:"name"`
	CNPJ   *string `json:"cnpj"`
	PixKey *string `json:"pixKey"`
}

func (s *Server) CreateMerchant(c *gin.Context) {
	var req createMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	merchant, err := s.merchantSvc.CreateMerchant(c.Request.Context(), merchantdomain.CreateMerchantRequest{
		Name:   req.Name,
		CNPJ:   req.CNPJ,
		PixKey: req.PixKey,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, merchant)
}

func (s *Server) GetMerchant(c *gin.Context) {
	merchant, err := s.merchantSvc.GetMerchant(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, merchant)
}

func (s *Server) UpdateMerchant(c *gin.Context) {
	var req updateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	merchant, err := s.merchantSvc.UpdateMerchant(c.Request.Context(), merchantdomain.UpdateMerchantRequest{
		ID:     c.Param("id"),
		Name:   req.Name,
		CNPJ:   req.CNPJ,
		PixKey: req.PixKey,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, merchant)
}
