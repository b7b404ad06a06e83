package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/expense-tracker/internal/application"
	"github.com/oksasatya/expense-tracker/internal/domain/entity"
	"github.com/oksasatya/expense-tracker/internal/domain/repository"
	"github.com/oksasatya/expense-tracker/pkg/response"
	"github.com/oksasatya/expense-tracker/pkg/validation"
)

// CategoryTag is the validation tag accepting exactly the expense categories.
const CategoryTag = "expense_category"

// RegisterValidators installs the expense-specific binding validations.
func RegisterValidators() {
	validation.RegisterEnum(CategoryTag, entity.CategoryNames())
}

type ExpenseHandler struct {
	Svc    *application.ExpenseService
	Logger *logrus.Logger
}

func NewExpenseHandler(svc *application.ExpenseService, logger *logrus.Logger) *ExpenseHandler {
	return &ExpenseHandler{Svc: svc, Logger: logger}
}

type listExpensesQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1"`
	Category  string `form:"category"`
	StartDate string `form:"startDate" binding:"omitempty,isodate"`
	EndDate   string `form:"endDate" binding:"omitempty,isodate"`
	Search    string `form:"search" binding:"omitempty,max=100"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=date amount title category createdAt"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

type createExpenseRequest struct {
	Title    string   `json:"title" binding:"required,max=100"`
	Amount   float64  `json:"amount" binding:"gt=0,lte=9999999999.99"`
	Date     string   `json:"date" binding:"omitempty,isodate"`
	Category string   `json:"category" binding:"required,expense_category"`
	Tags     []string `json:"tags" binding:"omitempty,dive,min=1,max=20"`
	Notes    string   `json:"notes" binding:"omitempty,max=500"`
}

type updateExpenseRequest struct {
	Title    *string   `json:"title" binding:"omitempty,min=1,max=100"`
	Amount   *float64  `json:"amount" binding:"omitempty,gt=0,lte=9999999999.99"`
	Date     *string   `json:"date" binding:"omitempty,isodate"`
	Category *string   `json:"category" binding:"omitempty,expense_category"`
	Tags     *[]string `json:"tags" binding:"omitempty,dive,min=1,max=20"`
	Notes    *string   `json:"notes" binding:"omitempty,max=500"`
}

type statsQuery struct {
	Period int `form:"period,default=30" binding:"min=1,max=3650"`
}

type searchQuery struct {
	Q    string `form:"q" binding:"required,max=100"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

func parseOptionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	// already checked by the isodate tag
	t, _, err := validation.ParseDate(s)
	if err != nil {
		return nil
	}
	return &t
}

// List GET /api/expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	var q listExpensesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	filter, err := application.BuildFilter(application.FilterParams{
		Category:  q.Category,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Search:    q.Search,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	sort := repository.Sort{Field: repository.SortByDate, Desc: true}
	if q.SortBy != "" {
		sort.Field = repository.SortField(q.SortBy)
	}
	if q.SortOrder != "" {
		sort.Desc = q.SortOrder == "desc"
	}

	res, err := h.Svc.List(c.Request.Context(), c.GetString("userID"), application.ListQuery{
		Filter: filter,
		Sort:   sort,
		Page:   q.Page,
		Limit:  q.Limit,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "", nil)
}

// Get GET /api/expenses/:id
func (h *ExpenseHandler) Get(c *gin.Context) {
	e, err := h.Svc.Get(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"expense": e}, "", nil)
}

// Create POST /api/expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	e, err := h.Svc.Create(c.Request.Context(), c.GetString("userID"), application.ExpenseInput{
		Title:    req.Title,
		Amount:   req.Amount,
		Date:     parseOptionalDate(req.Date),
		Category: req.Category,
		Tags:     req.Tags,
		Notes:    req.Notes,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"expense": e}, "Expense created successfully", nil)
}

// Update PUT /api/expenses/:id
func (h *ExpenseHandler) Update(c *gin.Context) {
	var req updateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	patch := application.ExpensePatch{
		Title:    req.Title,
		Amount:   req.Amount,
		Category: req.Category,
		Tags:     req.Tags,
		Notes:    req.Notes,
	}
	if req.Date != nil {
		patch.Date = parseOptionalDate(*req.Date)
	}
	e, err := h.Svc.Update(c.Request.Context(), c.GetString("userID"), c.Param("id"), patch)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"expense": e}, "Expense updated successfully", nil)
}

// Delete DELETE /api/expenses/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Expense deleted successfully")
}

// Stats GET /api/expenses/stats?period=<days>
func (h *ExpenseHandler) Stats(c *gin.Context) {
	var q statsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.Svc.Stats(c.Request.Context(), c.GetString("userID"), q.Period)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "", nil)
}

// Search GET /api/expenses/search?q=&size=
func (h *ExpenseHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	items, err := h.Svc.Search(c.Request.Context(), c.GetString("userID"), q.Q, q.Size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"expenses": items, "count": len(items)}, "", nil)
}
