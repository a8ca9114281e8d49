package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/badgeworks/variantbadges/docs"
	"github.com/badgeworks/variantbadges/internal/app/api/handlers"
	mw "github.com/badgeworks/variantbadges/internal/app/api/middleware"
	analyticssvc "github.com/badgeworks/variantbadges/internal/app/service/analytics"
	badgesvc "github.com/badgeworks/variantbadges/internal/app/service/badge"
	settingssvc "github.com/badgeworks/variantbadges/internal/app/service/settings"
	shopsvc "github.com/badgeworks/variantbadges/internal/app/service/shop"
	subsvc "github.com/badgeworks/variantbadges/internal/app/service/subscription"
	platshopify "github.com/badgeworks/variantbadges/internal/platform/shopify"
	cfgpkg "github.com/badgeworks/variantbadges/pkg/config"
	metrics "github.com/badgeworks/variantbadges/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log       *zap.SugaredLogger
	Cfg       *cfgpkg.Config
	API       *platshopify.Client
	Shops     *shopsvc.Service
	Plans     *subsvc.Service
	Badges    *badgesvc.Service
	Settings  *settingssvc.Service
	Analytics *analyticssvc.Service
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	// Prometheus metrics
	if d.Cfg != nil && d.Cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: d.Log,
		})
		p.SetListenAddress(d.Cfg.MetricsAddr)
		p.Use(r)

		d.Log.Infow("metrics started", "addr", d.Cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// OAuth install flow (no session yet)
	handlers.RegisterAuthRoutes(pub, d.Cfg, d.API, d.Shops, d.Log)
	// Charge approval return URL, reached by platform redirect
	pub.GET("/api/billing/activate", handlers.ApiBillingActivate(d.Cfg, d.Plans, d.Log))

	// Storefront endpoints: open CORS, no session
	storefront := r.Group("/api/public")
	storefront.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterPublicRoutes(storefront, d.Cfg, d.Badges, d.Analytics)

	// Platform webhooks: HMAC-verified, no session
	hooks := r.Group("/api")
	hooks.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterWebhookRoutes(hooks, d.API, d.Shops, d.Log)

	// Merchant-admin API behind session auth
	admin := r.Group("/api")
	admin.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware(), mw.AuthMiddleware(d.Cfg))
	handlers.RegisterBadgeRoutes(admin, d.Badges, d.Plans)
	handlers.RegisterBillingRoutes(admin, d.Cfg, d.Plans)
	handlers.RegisterSettingsRoutes(admin, d.Settings)
	handlers.RegisterAnalyticsRoutes(admin, d.Analytics)
	handlers.RegisterProductRoutes(admin, d.API, d.Shops)
	handlers.RegisterSetupRoutes(admin, d.API, d.Shops)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
