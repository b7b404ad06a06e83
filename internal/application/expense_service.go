package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/expense-tracker/internal/domain/apperr"
	"github.com/oksasatya/expense-tracker/internal/domain/entity"
	repo "github.com/oksasatya/expense-tracker/internal/domain/repository"
)

const (
	MsgExpenseNotFound = "Expense not found"

	DefaultPageSize = 10
	MaxPageSize     = 100
	RecentCount     = 5
	TrendMonths     = 6
	MaxSearchSize   = 50
)

type ExpenseService struct {
	Expenses repo.ExpenseRepository
	Index    ExpenseIndexer
	Cache    ReportCache
	Logger   *logrus.Logger

	now func() time.Time
}

func NewExpenseService(expenses repo.ExpenseRepository, index ExpenseIndexer, cache ReportCache, logger *logrus.Logger) *ExpenseService {
	return &ExpenseService{Expenses: expenses, Index: index, Cache: cache, Logger: logger, now: time.Now}
}

func (s *ExpenseService) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

// ExpenseInput carries the fields of a new expense. A nil Date means now.
type ExpenseInput struct {
	Title    string
	Amount   float64
	Date     *time.Time
	Category string
	Tags     []string
	Notes    string
}

// ExpensePatch carries a partial update; nil fields are left unchanged.
type ExpensePatch struct {
	Title    *string
	Amount   *float64
	Date     *time.Time
	Category *string
	Tags     *[]string
	Notes    *string
}

type ListQuery struct {
	Filter repo.ExpenseFilter
	Sort   repo.Sort
	Page   int
	Limit  int
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

type ListSummary struct {
	TotalAmount   float64               `json:"totalAmount"`
	TotalExpenses int64                 `json:"totalExpenses"`
	CategoryStats []entity.CategoryStat `json:"categoryStats"`
}

type ListResult struct {
	Expenses   []entity.Expense `json:"expenses"`
	Pagination Pagination       `json:"pagination"`
	Summary    ListSummary      `json:"summary"`
}

type StatsSummary struct {
	TotalAmount float64 `json:"totalAmount"`
	TotalCount  int64   `json:"totalCount"`
	Period      int     `json:"period"`
}

type StatsResult struct {
	Summary        StatsSummary          `json:"summary"`
	CategoryStats  []entity.CategoryStat `json:"categoryStats"`
	MonthlyTrend   []entity.MonthTotal   `json:"monthlyTrend"`
	RecentExpenses []entity.Expense      `json:"recentExpenses"`
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, strings.TrimSpace(t))
	}
	return out
}

// validateExpense enforces the field bounds on a fully populated expense.
func validateExpense(e *entity.Expense) error {
	fields := map[string]string{}
	if n := utf8.RuneCountInString(e.Title); n == 0 {
		fields["title"] = "is required"
	} else if n > entity.TitleMaxLen {
		fields["title"] = fmt.Sprintf("must be at most %d characters long", entity.TitleMaxLen)
	}
	if !(e.Amount > 0) || math.IsInf(e.Amount, 0) {
		fields["amount"] = "must be greater than 0"
	}
	if !entity.IsValidCategory(string(e.Category)) {
		fields["category"] = "must be one of: " + strings.Join(entity.CategoryNames(), ", ")
	}
	for i, t := range e.Tags {
		if n := utf8.RuneCountInString(t); n < 1 || n > entity.TagMaxLen {
			fields[fmt.Sprintf("tags[%d]", i)] = fmt.Sprintf("must be between 1 and %d characters long", entity.TagMaxLen)
		}
	}
	if utf8.RuneCountInString(e.Notes) > entity.NotesMaxLen {
		fields["notes"] = fmt.Sprintf("must be at most %d characters long", entity.NotesMaxLen)
	}
	if len(fields) > 0 {
		return apperr.Validation("Validation failed", fields)
	}
	return nil
}

// afterWrite keeps the derived stores in step with Postgres. Failures are logged only.
func (s *ExpenseService) afterWrite(ctx context.Context, userID string, indexed *entity.Expense, deletedID string) {
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, userID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("report cache invalidation failed")
		}
	}
	if s.Index == nil {
		return
	}
	var err error
	if indexed != nil {
		err = s.Index.IndexExpense(ctx, *indexed)
	} else if deletedID != "" {
		err = s.Index.DeleteExpense(ctx, userID, deletedID)
	}
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("search index update failed")
	}
}

func (s *ExpenseService) Create(ctx context.Context, userID string, in ExpenseInput) (*entity.Expense, error) {
	e := &entity.Expense{
		UserID:   userID,
		Title:    strings.TrimSpace(in.Title),
		Amount:   entity.RoundAmount(in.Amount),
		Category: entity.Category(in.Category),
		Tags:     normalizeTags(in.Tags),
		Notes:    strings.TrimSpace(in.Notes),
	}
	if in.Date != nil {
		e.Date = in.Date.UTC()
	} else {
		e.Date = s.clock()
	}
	if err := validateExpense(e); err != nil {
		return nil, err
	}

	if err := s.Expenses.Create(ctx, e); err != nil {
		return nil, apperr.Internal("Internal server error while creating expense", fmt.Errorf("create expense: %w", err))
	}
	expensesCreated.Add(1)
	s.afterWrite(ctx, userID, e, "")
	return e, nil
}

func (s *ExpenseService) Get(ctx context.Context, userID, id string) (*entity.Expense, error) {
	e, err := s.Expenses.GetByID(ctx, userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound(MsgExpenseNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("Internal server error while fetching expense", fmt.Errorf("get expense: %w", err))
	}
	return e, nil
}

func (s *ExpenseService) Update(ctx context.Context, userID, id string, p ExpensePatch) (*entity.Expense, error) {
	const failMsg = "Internal server error while updating expense"

	e, err := s.Expenses.GetByID(ctx, userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound(MsgExpenseNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(failMsg, fmt.Errorf("get expense: %w", err))
	}

	if p.Title != nil {
		e.Title = strings.TrimSpace(*p.Title)
	}
	if p.Amount != nil {
		e.Amount = entity.RoundAmount(*p.Amount)
	}
	if p.Date != nil {
		e.Date = p.Date.UTC()
	}
	if p.Category != nil {
		e.Category = entity.Category(*p.Category)
	}
	if p.Tags != nil {
		e.Tags = normalizeTags(*p.Tags)
	}
	if p.Notes != nil {
		e.Notes = strings.TrimSpace(*p.Notes)
	}
	if err := validateExpense(e); err != nil {
		return nil, err
	}

	if err := s.Expenses.Update(ctx, e); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound(MsgExpenseNotFound)
		}
		return nil, apperr.Internal(failMsg, fmt.Errorf("update expense: %w", err))
	}
	s.afterWrite(ctx, userID, e, "")
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	err := s.Expenses.Delete(ctx, userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound(MsgExpenseNotFound)
	}
	if err != nil {
		return apperr.Internal("Internal server error while deleting expense", fmt.Errorf("delete expense: %w", err))
	}
	s.afterWrite(ctx, userID, nil, id)
	return nil
}

// List returns one page of the filtered expenses plus totals over the whole filtered set.
func (s *ExpenseService) List(ctx context.Context, userID string, q ListQuery) (*ListResult, error) {
	const failMsg = "Internal server error while fetching expenses"

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	sort := q.Sort
	if sort.Field == "" {
		sort = repo.Sort{Field: repo.SortByDate, Desc: true}
	}

	items, total, err := s.Expenses.List(ctx, userID, q.Filter, sort, repo.Page{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, apperr.Internal(failMsg, err)
	}
	totals, err := s.Expenses.Totals(ctx, userID, q.Filter)
	if err != nil {
		return nil, apperr.Internal(failMsg, err)
	}
	cats, err := s.Expenses.CategoryTotals(ctx, userID, q.Filter)
	if err != nil {
		return nil, apperr.Internal(failMsg, err)
	}

	return &ListResult{
		Expenses: items,
		Pagination: Pagination{
			CurrentPage:  page,
			TotalPages:   int((total + int64(limit) - 1) / int64(limit)),
			TotalItems:   total,
			ItemsPerPage: limit,
		},
		Summary: ListSummary{
			TotalAmount:   entity.RoundAmount(totals.TotalAmount),
			TotalExpenses: total,
			CategoryStats: cats,
		},
	}, nil
}

// Stats summarises the trailing periodDays plus a six month trend and the latest expenses.
func (s *ExpenseService) Stats(ctx context.Context, userID string, periodDays int) (*StatsResult, error) {
	const failMsg = "Internal server error while fetching expense statistics"

	now := s.clock()
	from := now.AddDate(0, 0, -periodDays)
	window := repo.ExpenseFilter{From: &from}

	totals, err := s.Expenses.Totals(ctx, userID, window)
	if err != nil {
		return nil, apperr.Internal(failMsg, err)
	}
	cats, err := s.Expenses.CategoryTotals(ctx, userID, window)
	if err != nil {
		return nil, apperr.Internal(failMsg, err)
	}
	trendFrom := now.AddDate(0, -TrendMonths, 0)
	months, err := s.Expenses.MonthTotals(ctx, userID, repo.ExpenseFilter{From: &trendFrom})
	if err != nil {
		return nil, apperr.Internal(failMsg, err)
	}
	recent, err := s.Expenses.Recent(ctx, userID, RecentCount)
	if err != nil {
		return nil, apperr.Internal(failMsg, err)
	}

	return &StatsResult{
		Summary: StatsSummary{
			TotalAmount: entity.RoundAmount(totals.TotalAmount),
			TotalCount:  totals.TotalCount,
			Period:      periodDays,
		},
		CategoryStats:  cats,
		MonthlyTrend:   months,
		RecentExpenses: recent,
	}, nil
}

// Search runs a full-text query against the search index. Without an index it
// returns an empty result.
func (s *ExpenseService) Search(ctx context.Context, userID, q string, size int) ([]entity.Expense, error) {
	if s.Index == nil {
		return []entity.Expense{}, nil
	}
	if size < 1 || size > MaxSearchSize {
		size = DefaultPageSize
	}
	items, err := s.Index.SearchExpenses(ctx, userID, q, size)
	if err != nil {
		return nil, apperr.Internal("Internal server error while searching expenses", err)
	}
	return items, nil
}
