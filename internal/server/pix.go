package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	chargedomain "github.com/fiadolabs/fiado/internal/charge/domain"
	payoutdomain "github.com/fiadolabs/fiado/internal/payout/domain"
	"github.com/shopspring/decimal"
)

type createChargeRequest struct {
	DividaID          string `json:"dividaId" binding:"required"`
	EmpresaID         string `json:"empresaId" binding:"required"`
	Valor             string `json:"valor" binding:"required"`
	Descricao         string `json:"descricao"`
	ExpiracaoSegundos int    `json:"expiracaoSegundos"`
}

func (s *Server) CreateCharge(c *gin.Context) {
	var req createChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Valor))
	if err != nil {
		AbortWithError(c, chargedomain.ErrInvalidAmount)
		return
	}

	resp, err := s.chargeSvc.Create(c.Request.Context(), chargedomain.CreateChargeRequest{
		DebtID:            req.DividaID,
		MerchantID:        req.EmpresaID,
		Amount:            amount,
		Description:       req.Descricao,
		ExpirationSeconds: req.ExpiracaoSegundos,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetCharge(c *gin.Context) {
	charge, err := s.chargeSvc.GetByTxid(c.Request.Context(), c.Param("txid"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, charge)
}

func (s *Server) GetChargeLedger(c *gin.Context) {
	txid := strings.ToUpper(strings.TrimSpace(c.Param("txid")))
	entries, err := s.ledgerSvc.ListByTxid(c.Request.Context(), txid)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) GetPayout(c *gin.Context) {
	txid := strings.ToUpper(strings.TrimSpace(c.Param("txid")))
	payout, err := s.payoutSvc.GetByKey(c.Request.Context(), payoutdomain.KeyForTxid(txid))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payout)
}
