package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/expense-tracker/internal/container"
	handlers "github.com/oksasatya/expense-tracker/internal/interface/http"
	"github.com/oksasatya/expense-tracker/internal/interface/middleware"
	"github.com/oksasatya/expense-tracker/pkg/helpers"
)

type ReportModule struct {
	Handler *handlers.ReportHandler
	JWT     *helpers.JWTManager
}

func NewReportModule(h *handlers.ReportHandler, jwt *helpers.JWTManager) *ReportModule {
	return &ReportModule{Handler: h, JWT: jwt}
}

func (m *ReportModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	g := rg.Group("/reports")
	g.Use(middleware.Auth(m.JWT))
	g.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID("reports"), nil))
	{
		g.GET("/summary", m.Handler.Summary)
		g.GET("/trends", m.Handler.Trends)
		g.GET("/insights", m.Handler.Insights)
		g.GET("/detailed.csv", m.Handler.DownloadCSV)
		g.POST("/send-csv", middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByUserID("send-csv"), nil), m.Handler.SendCSV)
	}
}
