package repository

import (
	"context"
	"time"

	"github.com/oksasatya/expense-tracker/internal/domain/entity"
)

// ExpenseFilter narrows an expense query. Zero values mean no restriction.
type ExpenseFilter struct {
	Category string
	From     *time.Time // inclusive
	To       *time.Time // inclusive
	Before   *time.Time // exclusive
	Search   string     // case-insensitive substring of title, notes or any tag
}

type SortField string

const (
	SortByDate      SortField = "date"
	SortByAmount    SortField = "amount"
	SortByTitle     SortField = "title"
	SortByCategory  SortField = "category"
	SortByCreatedAt SortField = "createdAt"
)

func IsValidSortField(s string) bool {
	switch SortField(s) {
	case SortByDate, SortByAmount, SortByTitle, SortByCategory, SortByCreatedAt:
		return true
	}
	return false
}

type Sort struct {
	Field SortField
	Desc  bool
}

type Page struct {
	Limit  int
	Offset int
}

// GroupBy selects the partition key of a grouped aggregation.
type GroupBy string

const (
	GroupByMonth    GroupBy = "month"
	GroupByDay      GroupBy = "day"
	GroupByCategory GroupBy = "category"
	GroupByNone     GroupBy = "none"
)

// ExpenseRepository is scoped by owner on every method; rows owned by other
// users behave as if they did not exist.
type ExpenseRepository interface {
	Create(ctx context.Context, e *entity.Expense) error
	GetByID(ctx context.Context, userID, id string) (*entity.Expense, error)
	Update(ctx context.Context, e *entity.Expense) error
	Delete(ctx context.Context, userID, id string) error

	List(ctx context.Context, userID string, f ExpenseFilter, s Sort, p Page) ([]entity.Expense, int64, error)
	// ListAll returns every match ordered by date descending.
	ListAll(ctx context.Context, userID string, f ExpenseFilter) ([]entity.Expense, error)
	Recent(ctx context.Context, userID string, limit int) ([]entity.Expense, error)

	Totals(ctx context.Context, userID string, f ExpenseFilter) (entity.Totals, error)
	// CategoryTotals is ordered by total descending.
	CategoryTotals(ctx context.Context, userID string, f ExpenseFilter) ([]entity.CategoryStat, error)
	// GroupTotals is ordered by total descending.
	GroupTotals(ctx context.Context, userID string, f ExpenseFilter, g GroupBy) ([]entity.GroupTotal, error)
	// MonthTotals is ordered chronologically.
	MonthTotals(ctx context.Context, userID string, f ExpenseFilter) ([]entity.MonthTotal, error)
	CategoryMonthTotals(ctx context.Context, userID string, f ExpenseFilter) ([]entity.CategoryMonthTotal, error)
	SpendingPatterns(ctx context.Context, userID string, f ExpenseFilter) ([]entity.SpendingPattern, error)
}
