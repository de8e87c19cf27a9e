package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"careerkit/cmd/fx/ai_fx"
	"careerkit/cmd/fx/auth_fx"
	"careerkit/cmd/fx/billing_fx"
	"careerkit/cmd/fx/career_fx"
	"careerkit/cmd/fx/controllers_fx"
	"careerkit/cmd/fx/db_fx"
	"careerkit/cmd/fx/listing_fx"
	"careerkit/cmd/fx/logger_fx"
	"careerkit/cmd/fx/mail_fx"
	"careerkit/cmd/fx/plan_fx"
	"careerkit/cmd/fx/quota_fx"
	"careerkit/internal/api/controllers"
	"careerkit/pkg/auth"
	"careerkit/pkg/middleware"
)

func main() {
	_ = godotenv.Load()

	app := fx.New(
		logger_fx.Module,
		db_fx.Module,
		auth_fx.Module,
		plan_fx.Module,
		quota_fx.Module,
		ai_fx.Module,
		mail_fx.Module,
		billing_fx.Module,
		career_fx.Module,
		listing_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),

		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, logger *zap.Logger) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("starting HTTP server", zap.String("port", port))
				if err := engine.Run(":" + port); err != nil {
					logger.Fatal("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(
	verifier auth.Verifier,
	authController *controllers.AuthController,
	subscriptionController *controllers.SubscriptionController,
	billingController *controllers.BillingController,
	careerController *controllers.CareerController,
	listingController *controllers.ListingController,
) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(os.Getenv("FRONTEND_URL")))
	r.Use(middleware.TraceIDMiddleware())

	RegisterRoutes(r, verifier,
		authController, subscriptionController, billingController, careerController, listingController)

	return r
}

func RegisterRoutes(
	r *gin.Engine,
	verifier auth.Verifier,
	authController *controllers.AuthController,
	subscriptionController *controllers.SubscriptionController,
	billingController *controllers.BillingController,
	careerController *controllers.CareerController,
	listingController *controllers.ListingController,
) {
	// Webhooks authenticate by signature, not bearer token.
	r.POST("/webhooks/stripe", billingController.HandleWebhook)

	authenticated := r.Group("/", middleware.RequireAuthentication(verifier))

	authGroup := authenticated.Group("/auth")
	authGroup.GET("/me", authController.GetProfile)

	subGroup := authenticated.Group("/subscriptions")
	subGroup.GET("/status", subscriptionController.GetStatus)

	billingGroup := authenticated.Group("/billing")
	billingGroup.POST("/checkout", billingController.CreateCheckout)
	billingGroup.POST("/portal", billingController.CreatePortalSession)
	billingGroup.POST("/cancel", billingController.CancelSubscription)
	billingGroup.GET("/invoices", billingController.ListInvoices)

	careerGroup := authenticated.Group("/career")
	careerGroup.POST("/resume/analyze", careerController.AnalyzeResume)
	careerGroup.POST("/resume/roast", careerController.RoastResume)
	careerGroup.POST("/cover-letter", careerController.GenerateCoverLetter)
	careerGroup.POST("/linkedin/optimize", careerController.OptimizeLinkedin)

	listingGroup := authenticated.Group("/listings")
	listingGroup.POST("", listingController.SaveListing)
	listingGroup.GET("", listingController.ListListings)
	listingGroup.POST("/match", listingController.MatchListings)
}
