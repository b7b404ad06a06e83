package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/expense-tracker/internal/container"
	handlers "github.com/oksasatya/expense-tracker/internal/interface/http"
	"github.com/oksasatya/expense-tracker/internal/interface/middleware"
	"github.com/oksasatya/expense-tracker/pkg/helpers"
)

type ExpenseModule struct {
	Handler *handlers.ExpenseHandler
	JWT     *helpers.JWTManager
}

func NewExpenseModule(h *handlers.ExpenseHandler, jwt *helpers.JWTManager) *ExpenseModule {
	return &ExpenseModule{Handler: h, JWT: jwt}
}

func (m *ExpenseModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/expenses")
	g.Use(middleware.Auth(m.JWT))
	g.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID("expenses"), nil))
	{
		g.GET("", m.Handler.List)
		g.GET("/stats", m.Handler.Stats)
		g.GET("/search", m.Handler.Search)
		g.GET("/:id", m.Handler.Get)
		g.POST("", m.Handler.Create)
		g.PUT("/:id", m.Handler.Update)
		g.DELETE("/:id", m.Handler.Delete)
	}
}
