// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chetanfram3/fram3-studio-backend/internal/cache"
	"github.com/chetanfram3/fram3-studio-backend/internal/config"
	"github.com/chetanfram3/fram3-studio-backend/internal/handlers"
	"github.com/chetanfram3/fram3-studio-backend/internal/metrics"
	"github.com/chetanfram3/fram3-studio-backend/internal/middleware"
	"github.com/chetanfram3/fram3-studio-backend/internal/services"
)

func Setup(db *gorm.DB, cfg *config.Config, cacheClient *cache.Cache) (*gin.Engine, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	authService := services.NewAuthService(db, cfg)
	creditService := services.NewCreditService(db, cacheClient)
	paymentService := services.NewPaymentService(db, cfg, creditService, cacheClient)
	assetService := services.NewAssetService(db, storageService, creditService)
	scriptService := services.NewScriptService(db)
	preferenceService := services.NewPreferenceService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	creditHandler := handlers.NewCreditHandler(creditService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	assetHandler := handlers.NewAssetHandler(assetService)
	scriptHandler := handlers.NewScriptHandler(scriptService)
	preferenceHandler := handlers.NewPreferenceHandler(preferenceService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	v1 := r.Group("/v1")

	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimit())
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		auth.PUT("/billing-profile", middleware.AuthRequired(), authHandler.UpdateBillingProfile)
	}

	scripts := v1.Group("/scripts")
	scripts.Use(middleware.AuthRequired())
	{
		scripts.POST("", scriptHandler.Create)
		scripts.GET("", scriptHandler.List)
		scripts.GET("/:id", scriptHandler.Get)
		scripts.PUT("/:id", scriptHandler.Update)
		scripts.DELETE("/:id", scriptHandler.Delete)
		scripts.POST("/:id/versions", scriptHandler.AddVersion)
	}

	credits := v1.Group("/credits")
	credits.Use(middleware.AuthRequired())
	{
		credits.GET("/balance", creditHandler.GetBalance)
		credits.GET("/transactions", creditHandler.GetTransactions)
	}

	payments := v1.Group("/payments")
	payments.Use(middleware.AuthRequired())
	{
		payments.GET("/pricing-config", paymentHandler.GetPricingConfig)
		payments.GET("/quote", paymentHandler.QuoteCustomPackage)
		payments.GET("/orders", paymentHandler.GetOrders)
		payments.GET("/invoices", paymentHandler.GetInvoices)

		checkout := payments.Group("")
		checkout.Use(middleware.CheckoutRateLimit())
		{
			checkout.POST("/orders", paymentHandler.CreateOrder)
			checkout.POST("/verify", paymentHandler.VerifyPayment)
			checkout.POST("/dismiss", paymentHandler.DismissOrder)
		}
	}

	assets := v1.Group("/assets")
	assets.Use(middleware.AuthRequired())
	{
		assets.GET("", assetHandler.ListAssets)
		assets.POST("", assetHandler.CreateAsset)
		assets.GET("/complete-data", assetHandler.GetCompleteData)
		assets.POST("/versions", assetHandler.AppendVersion)
		assets.POST("/restore", assetHandler.RestoreVersion)
	}

	preferences := v1.Group("/preferences")
	preferences.Use(middleware.AuthRequired())
	{
		preferences.GET("/:namespace", preferenceHandler.Get)
		preferences.PUT("", preferenceHandler.Save)
	}

	return r, nil
}
