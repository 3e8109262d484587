package app

import (
	"net/http"

	"github.com/ergosit/posture-auth/internal/handler"
	"github.com/ergosit/posture-auth/internal/service"
	"github.com/ergosit/posture-auth/pkg/observability"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	auth      *handler.AuthHandler
	oauth     *handler.OAuthHandler
	user      *handler.UserHandler
	detection *handler.DetectionHandler
	admin     *handler.AdminHandler
	authn     *handler.Authenticator
	health    *HealthChecker
}

var (
	userPolicy   = service.Policy{}
	devicePolicy = service.Policy{AllowAPIKey: true}
	adminPolicy  = service.Policy{RequireAdmin: true}
)

func setupRoutes(router *gin.Engine, h handlers, limit gin.HandlerFunc, redirectFlow bool, metricsHandler http.Handler) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", h.health.Handler)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", limit, h.auth.Register)
			auth.POST("/login", limit, h.auth.Login)
			auth.POST("/google-login", limit, h.auth.GoogleLogin)
			auth.GET("/validate", h.authn.Require(userPolicy), h.auth.Validate)
			auth.GET("/verify-email", h.auth.VerifyEmail)
			auth.GET("/status", h.auth.Status)
			auth.POST("/forgot-password", h.auth.ForgotPassword)
			auth.POST("/resend-code", h.auth.ResendCode)
			auth.POST("/verify-code", h.auth.VerifyCode)
			auth.POST("/reset-password", h.auth.ResetPassword)

			if redirectFlow {
				auth.GET("/google/login", h.oauth.Begin)
				auth.GET("/google/callback", h.oauth.Callback)
			}
		}

		user := api.Group("/user", h.authn.Require(userPolicy))
		{
			user.GET("/profile", h.user.GetProfile)
			user.PUT("/profile", h.user.UpdateProfile)
			user.POST("/change-password", h.user.ChangePassword)
			user.DELETE("", h.user.DeleteAccount)
			user.GET("/login-logs", h.user.LoginLogs)
		}

		detections := api.Group("/detections")
		{
			detections.POST("", h.authn.Require(devicePolicy), h.detection.Create)
			detections.GET("", h.authn.Require(userPolicy), h.detection.List)
			detections.DELETE("", h.authn.Require(userPolicy), h.detection.Clear)
		}

		admin := api.Group("/admin", h.authn.Require(adminPolicy))
		{
			admin.GET("/login-logs", h.admin.ListLoginLogs)
			admin.GET("/users/:id", h.admin.GetUser)
			admin.GET("/users/:id/login-logs", h.admin.UserLoginLogs)
			admin.DELETE("/users/:id/login-logs", h.admin.PurgeUserLoginLogs)
		}
	}

	console := router.Group("/admin")
	{
		console.GET("/login", h.admin.LoginForm)
		console.POST("/login", limit, h.admin.Login)
		console.POST("/logout", h.admin.Logout)
		console.GET("/login-logs", h.authn.Require(adminPolicy), h.admin.ListLoginLogs)
	}
}
