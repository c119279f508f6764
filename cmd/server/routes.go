package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"splitdine-admin.backend/internal/config"
	"splitdine-admin.backend/internal/interfaces/http/handlers"
	"splitdine-admin.backend/internal/interfaces/http/middleware"
	"splitdine-admin.backend/pkg/metrics"
)

const (
	serviceName    = "splitdine-admin-backend"
	serviceVersion = "0.1.0"
)

type routeDeps struct {
	authHandler       *handlers.AuthHandler
	restaurantHandler *handlers.RestaurantHandler
	onboardingHandler *handlers.OnboardingHandler
	authMiddleware    gin.HandlerFunc
	idempotency       gin.HandlerFunc
}

func newRouter(cfg *config.Config, m *metrics.Metrics, d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware(m))

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r)
	registerMetricsRoute(r, m)
	registerAPIV1Routes(r, d)
	return r
}

func originAllowed(origin string, allowed []string) bool {
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func applyCORSMiddleware(r *gin.Engine, allowed []string) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && originAllowed(origin, allowed) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine, m *metrics.Metrics) {
	r.GET("/metrics", gin.WrapH(m.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	idempotency := d.idempotency
	if idempotency == nil {
		idempotency = func(c *gin.Context) { c.Next() }
	}

	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.RefreshToken)
		}

		restaurants := v1.Group("/restaurants")
		restaurants.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			restaurants.GET("", d.restaurantHandler.ListRestaurants)
			restaurants.GET("/archived", d.restaurantHandler.ListArchived)
			restaurants.POST("", idempotency, d.restaurantHandler.CreateRestaurant)
			restaurants.GET("/:id", d.restaurantHandler.GetRestaurant)
			restaurants.PATCH("/:id", d.restaurantHandler.UpdateRestaurant)
			restaurants.DELETE("/:id", d.restaurantHandler.DeleteRestaurant)
			restaurants.POST("/:id/restore", d.restaurantHandler.RestoreRestaurant)
			restaurants.POST("/:id/delete-permanently", d.restaurantHandler.DeletePermanently)

			onboarding := restaurants.Group("/:id/onboarding")
			{
				onboarding.GET("", d.onboardingHandler.GetOnboarding)
				onboarding.PUT("/step", d.onboardingHandler.GoToStep)
				onboarding.POST("/personnel", d.onboardingHandler.AddPersonnel)
				onboarding.DELETE("/personnel/:personnelId", d.onboardingHandler.RemovePersonnel)
				onboarding.PUT("/stripe", d.onboardingHandler.UpdateStripe)
				onboarding.PUT("/pos", d.onboardingHandler.UpdatePOS)
				onboarding.PUT("/qr-stands", d.onboardingHandler.UpdateQRStands)
				onboarding.PUT("/google-reviews", d.onboardingHandler.UpdateGoogleReviews)
				onboarding.POST("/steps/:step/complete", d.onboardingHandler.CompleteStep)
				onboarding.POST("/restore", d.onboardingHandler.Restore)
				onboarding.GET("/pos-status", d.onboardingHandler.GetPOSStatus)
			}
		}
	}
}
