package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/acentera/acentera/internal/audit"
	auditdomain "github.com/acentera/acentera/internal/audit/domain"
	"github.com/acentera/acentera/internal/branch"
	branchdomain "github.com/acentera/acentera/internal/branch/domain"
	"github.com/acentera/acentera/internal/commission"
	commissiondomain "github.com/acentera/acentera/internal/commission/domain"
	"github.com/acentera/acentera/internal/commissionrule"
	ruledomain "github.com/acentera/acentera/internal/commissionrule/domain"
	"github.com/acentera/acentera/internal/config"
	"github.com/acentera/acentera/internal/policytype"
	policytypedomain "github.com/acentera/acentera/internal/policytype/domain"
	"github.com/acentera/acentera/internal/ratelimit"
	"github.com/acentera/acentera/internal/requestid"
	"github.com/acentera/acentera/internal/sale"
	saledomain "github.com/acentera/acentera/internal/sale/domain"
)

var Module = fx.Module("http.server",
	audit.Module,
	branch.Module,
	policytype.Module,
	commissionrule.Module,
	commission.Module,
	sale.Module,
	ratelimit.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.GinMiddleware())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
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
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node

	auditSvc      auditdomain.Service
	branchSvc     branchdomain.Service
	policyTypeSvc policytypedomain.Service
	ruleSvc       ruledomain.Service
	commissionSvc commissiondomain.Service
	saleSvc       saledomain.Service

	simulateLimiter *ratelimit.SimulateLimiter
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node

	AuditSvc      auditdomain.Service
	BranchSvc     branchdomain.Service
	PolicyTypeSvc policytypedomain.Service
	RuleSvc       ruledomain.Service
	CommissionSvc commissiondomain.Service
	SaleSvc       saledomain.Service

	SimulateLimiter *ratelimit.SimulateLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		db:     p.DB,
		log:    p.Log.Named("server"),
		genID:  p.GenID,

		auditSvc:      p.AuditSvc,
		branchSvc:     p.BranchSvc,
		policyTypeSvc: p.PolicyTypeSvc,
		ruleSvc:       p.RuleSvc,
		commissionSvc: p.CommissionSvc,
		saleSvc:       p.SaleSvc,

		simulateLimiter: p.SimulateLimiter,
	}
}

func (s *Server) RegisterRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/branches", s.CreateBranch)
	v1.GET("/branches", s.ListBranches)
	v1.GET("/branches/:id", s.GetBranchByID)

	v1.POST("/policy-types", s.CreatePolicyType)
	v1.GET("/policy-types", s.ListPolicyTypes)

	v1.POST("/commission-rules", s.CreateCommissionRule)
	v1.GET("/commission-rules", s.ListCommissionRules)
	v1.DELETE("/commission-rules/:id", s.DeleteCommissionRule)
	v1.POST("/commission-rules/simulate", s.SimulateCommission)

	v1.POST("/sales", s.CreateSale)
	v1.GET("/sales", s.ListSales)
	v1.GET("/sales/:id", s.GetSaleByID)
	v1.PATCH("/sales/:id", s.UpdateSale)
	v1.DELETE("/sales/:id", s.DeleteSale)
	v1.POST("/sales/:id/calculate", s.RecalculateSale)
	v1.GET("/sales/:id/commission", s.GetSaleCommission)

	v1.GET("/audit-logs", s.ListAuditLogs)
}

// audit writes fire-and-forget; failures are already logged by the sink.
func (s *Server) audit(ctx context.Context, action, targetType, targetID string, metadata map[string]any) {
	var target *string
	if targetID != "" {
		target = &targetID
	}
	_ = s.auditSvc.AuditLog(ctx, nil, action, targetType, target, metadata)
}
