package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/expense-tracker/internal/container"
	handlers "github.com/oksasatya/expense-tracker/internal/interface/http"
	"github.com/oksasatya/expense-tracker/internal/interface/middleware"
	"github.com/oksasatya/expense-tracker/pkg/helpers"
)

// AuthModule wires account routes.
// Public: signup, verify-otp, login, forgot-password, reset-password
// Protected: GET /auth/profile
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
	// Limit applies per IP across all public auth endpoints within Window.
	Limit  int
	Window time.Duration
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, limit int, window time.Duration) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, Limit: limit, Window: window}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	authLimiter := middleware.RateLimit(rdb, m.Limit, m.Window, middleware.KeyByIP("auth"), nil)
	// each request may send an email
	mailLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	public := rg.Group("/auth", authLimiter)
	{
		public.POST("/signup", mailLimiter, m.Handler.Signup)
		public.POST("/verify-otp", m.Handler.VerifyOTP)
		public.POST("/login", m.Handler.Login)
		public.POST("/forgot-password", mailLimiter, m.Handler.ForgotPassword)
		public.POST("/reset-password", m.Handler.ResetPassword)
	}

	auth := rg.Group("/auth", middleware.Auth(m.JWT))
	{
		auth.GET("/profile", m.Handler.Profile)
	}
}
