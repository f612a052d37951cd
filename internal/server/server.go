package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	chargedomain "github.com/fiadolabs/fiado/internal/charge/domain"
	"github.com/fiadolabs/fiado/internal/config"
	debtdomain "github.com/fiadolabs/fiado/internal/debt/domain"
	ledgerdomain "github.com/fiadolabs/fiado/internal/ledger/domain"
	merchantdomain "github.com/fiadolabs/fiado/internal/merchant/domain"
	"github.com/fiadolabs/fiado/internal/observability"
	obsmiddleware "github.com/fiadolabs/fiado/internal/observability/logger"
	obstracing "github.com/fiadolabs/fiado/internal/observability/tracing"
	payoutdomain "github.com/fiadolabs/fiado/internal/payout/domain"
	"github.com/fiadolabs/fiado/internal/webhook"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewEngine(cfg config.Config, obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(CORSMiddleware(cfg.CORSOrigin))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	chargeSvc   chargedomain.Service
	debtSvc     debtdomain.Service
	merchantSvc merchantdomain.Service
	ledgerSvc   ledgerdomain.Service
	payoutSvc   payoutdomain.Service
	webhookSvc  webhook.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	ChargeSvc   chargedomain.Service
	DebtSvc     debtdomain.Service
	MerchantSvc merchantdomain.Service
	LedgerSvc   ledgerdomain.Service
	PayoutSvc   payoutdomain.Service
	WebhookSvc  webhook.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("http.server"),
		chargeSvc:   p.ChargeSvc,
		debtSvc:     p.DebtSvc,
		merchantSvc: p.MerchantSvc,
		ledgerSvc:   p.LedgerSvc,
		payoutSvc:   p.PayoutSvc,
		webhookSvc:  p.WebhookSvc,
	}
}

func (s *Server) RegisterRoutes() {
	r := s.engine

	r.POST("/pix/cobranca", s.CreateCharge)
	r.GET("/pix/cobranca/:txid", s.GetCharge)
	r.GET("/pix/cobranca/:txid/ledger", s.GetChargeLedger)
	r.GET("/pix/payout/:txid", s.GetPayout)

	r.POST("/webhook/pix/:secret", s.HandlePixWebhook)

	r.POST("/empresas", s.CreateMerchant)
	r.GET("/empresas/:id", s.GetMerchant)
	r.PATCH("/empresas/:id", s.UpdateMerchant)
	r.GET("/empresas/:id/dividas", s.ListMerchantDebts)
	r.POST("/empresas/:id/clientes", s.CreateCustomer)
	r.GET("/empresas/:id/clientes", s.ListCustomers)

	r.GET("/clientes/:id", s.GetCustomer)
	r.DELETE("/clientes/:id", s.DeleteCustomer)
	r.POST("/clientes/:id/dividas", s.CreateDebt)
	r.GET("/clientes/:id/dividas", s.ListCustomerDebts)

	r.GET("/dividas/:id", s.GetDebt)
	r.PATCH("/dividas/:id", s.UpdateDebtStatus)
	r.DELETE("/dividas/:id", s.DeleteDebt)
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
