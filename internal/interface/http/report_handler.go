package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/expense-tracker/internal/application"
	"github.com/oksasatya/expense-tracker/internal/domain/repository"
	"github.com/oksasatya/expense-tracker/pkg/response"
)

type ReportHandler struct {
	Svc    *application.ReportService
	Logger *logrus.Logger
}

func NewReportHandler(svc *application.ReportService, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{Svc: svc, Logger: logger}
}

type reportFilter struct {
	StartDate string `form:"startDate" json:"startDate" binding:"omitempty,isodate"`
	EndDate   string `form:"endDate" json:"endDate" binding:"omitempty,isodate"`
	Category  string `form:"category" json:"category"`
}

func (f reportFilter) params() application.FilterParams {
	return application.FilterParams{Category: f.Category, StartDate: f.StartDate, EndDate: f.EndDate}
}

type summaryQuery struct {
	StartDate string `form:"startDate" binding:"omitempty,isodate"`
	EndDate   string `form:"endDate" binding:"omitempty,isodate"`
	Category  string `form:"category"`
	GroupBy   string `form:"groupBy,default=month" binding:"oneof=month day category none"`
}

type trendsQuery struct {
	Period int `form:"period,default=6" binding:"min=1,max=120"`
}

type insightsQuery struct {
	Period int `form:"period,default=30" binding:"min=1,max=3650"`
}

// Summary GET /api/reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	var q summaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.Svc.Summary(c.Request.Context(), c.GetString("userID"), application.SummaryQuery{
		Params:  application.FilterParams{Category: q.Category, StartDate: q.StartDate, EndDate: q.EndDate},
		GroupBy: repository.GroupBy(q.GroupBy),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "", nil)
}

// Trends GET /api/reports/trends?period=<months>
func (h *ReportHandler) Trends(c *gin.Context) {
	var q trendsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.Svc.Trends(c.Request.Context(), c.GetString("userID"), q.Period)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "", nil)
}

// Insights GET /api/reports/insights?period=<days>
func (h *ReportHandler) Insights(c *gin.Context) {
	var q insightsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.Svc.Insights(c.Request.Context(), c.GetString("userID"), q.Period)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "", nil)
}

// DownloadCSV GET /api/reports/detailed.csv
func (h *ReportHandler) DownloadCSV(c *gin.Context) {
	var q reportFilter
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	file, err := h.Svc.ExportCSV(c.Request.Context(), c.GetString("userID"), q.params())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Header("Cache-Control", "no-cache")
	c.Header("Pragma", "no-cache")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", file.Content)
}

// SendCSV POST /api/reports/send-csv
func (h *ReportHandler) SendCSV(c *gin.Context) {
	var req reportFilter
	// the body is optional
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBindError(c, err)
		return
	}
	if err := h.Svc.SendCSV(c.Request.Context(), c.GetString("userID"), req.params()); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusOK, "CSV report will be sent to your email shortly")
}
