package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/platefee/internal/accounting"
	accountingdomain "github.com/smallbiznis/platefee/internal/accounting/domain"
	"github.com/smallbiznis/platefee/internal/audit"
	auditdomain "github.com/smallbiznis/platefee/internal/audit/domain"
	"github.com/smallbiznis/platefee/internal/cache"
	"github.com/smallbiznis/platefee/internal/config"
	"github.com/smallbiznis/platefee/internal/ledger"
	"github.com/smallbiznis/platefee/internal/order"
	orderdomain "github.com/smallbiznis/platefee/internal/order/domain"
	"github.com/smallbiznis/platefee/internal/payment"
	paymentdomain "github.com/smallbiznis/platefee/internal/payment/domain"
	"github.com/smallbiznis/platefee/internal/penalty"
	"github.com/smallbiznis/platefee/internal/platformmetrics"
	"github.com/smallbiznis/platefee/internal/providers/pdf"
	"github.com/smallbiznis/platefee/internal/restaurant"
	restaurantdomain "github.com/smallbiznis/platefee/internal/restaurant/domain"
	"github.com/smallbiznis/platefee/internal/scheduler"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	platformmetrics.Module,
	cache.Module,
	pdf.Module,
	audit.Module,
	restaurant.Module,
	order.Module,
	ledger.Module,
	payment.Module,
	penalty.Module,
	accounting.Module,
	scheduler.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	return NewEngine(log, registry)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:    addr,
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

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	genID         *snowflake.Node
	restaurantSvc restaurantdomain.Service
	orderSvc      orderdomain.Service
	paymentSvc    paymentdomain.Service
	accountingSvc accountingdomain.Service
	auditSvc      auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	GenID         *snowflake.Node
	RestaurantSvc restaurantdomain.Service
	OrderSvc      orderdomain.Service
	PaymentSvc    paymentdomain.Service
	AccountingSvc accountingdomain.Service
	AuditSvc      auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		genID:         p.GenID,
		restaurantSvc: p.RestaurantSvc,
		orderSvc:      p.OrderSvc,
		paymentSvc:    p.PaymentSvc,
		accountingSvc: p.AccountingSvc,
		auditSvc:      p.AuditSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Restaurants --------
	api.GET("/restaurants", s.ListRestaurants)
	api.POST("/restaurants", s.CreateRestaurant)
	api.GET("/restaurants/:id", s.GetRestaurantByID)

	// -------- Orders --------
	api.POST("/orders", s.RecordOrder)
	api.GET("/restaurants/:id/orders", s.ListRestaurantOrders)

	// -------- Commission & Invoices --------
	api.GET("/restaurants/:id/commission", s.GetRestaurantCommission)
	api.GET("/restaurants/:id/invoices", s.ListRestaurantInvoices)
	api.GET("/restaurants/:id/invoices/:period/statement.pdf", s.RenderInvoiceStatement)
	api.POST("/restaurants/:id/invoices/:period/pay", s.MarkInvoicePaid)
	api.POST("/restaurants/:id/pay", s.MarkAllCommissionsPaid)

	// -------- Payments --------
	api.GET("/restaurants/:id/payments", s.ListPaymentRecords)

	// -------- Enforcement --------
	api.GET("/restaurants/:id/accounting-status", s.GetAccountingStatus)

	// -------- Audit --------
	api.GET("/restaurants/:id/audit-logs", s.ListAuditLogs)
}
