package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/expense-tracker/internal/domain/apperr"
	"github.com/oksasatya/expense-tracker/internal/domain/entity"
	"github.com/oksasatya/expense-tracker/internal/domain/repository"
	"github.com/oksasatya/expense-tracker/internal/mocks"
	"github.com/oksasatya/expense-tracker/pkg/helpers"
)

const (
	userA = "11111111-1111-1111-1111-111111111111"
	userB = "22222222-2222-2222-2222-222222222222"
)

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

type expenseFixture struct {
	svc   *ExpenseService
	repo  *mocks.MockExpenseRepository
	index *mocks.MockExpenseIndexer
	cache *mocks.MockReportCache
}

func newExpenseFixture(t *testing.T) *expenseFixture {
	t.Helper()
	f := &expenseFixture{
		repo:  mocks.NewMockExpenseRepository(),
		index: &mocks.MockExpenseIndexer{},
		cache: mocks.NewMockReportCache(),
	}
	f.svc = NewExpenseService(f.repo, f.index, f.cache, helpers.NopLogger())
	f.svc.now = func() time.Time { return time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestExpenseService_CreateAndGet(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, userA, ExpenseInput{
		Title:    "  Lunch ",
		Amount:   12.345,
		Date:     ptr(day(2024, 1, 1)),
		Category: string(entity.CategoryFood),
		Tags:     []string{" work "},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Lunch", created.Title)
	assert.Equal(t, 12.35, created.Amount)
	assert.Equal(t, []string{"work"}, created.Tags)

	got, err := f.svc.Get(ctx, userA, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Amount, got.Amount)
	assert.True(t, created.Date.Equal(got.Date))

	require.Len(t, f.index.Indexed, 1)
	assert.Equal(t, []string{userA}, f.cache.Invalidated)
}

func TestExpenseService_CreateDefaultsDateToNow(t *testing.T) {
	f := newExpenseFixture(t)

	created, err := f.svc.Create(context.Background(), userA, ExpenseInput{Title: "Taxi", Amount: 9, Category: string(entity.CategoryTransportation)})
	require.NoError(t, err)
	assert.Equal(t, f.svc.clock(), created.Date)
}

func TestExpenseService_CreateValidation(t *testing.T) {
	f := newExpenseFixture(t)
	long := make([]byte, entity.TitleMaxLen+1)
	for i := range long {
		long[i] = 'x'
	}

	_, err := f.svc.Create(context.Background(), userA, ExpenseInput{
		Title:    string(long),
		Amount:   0,
		Category: "Housing",
		Tags:     []string{"ok", ""},
	})
	require.Error(t, err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Contains(t, e.Fields, "title")
	assert.Contains(t, e.Fields, "amount")
	assert.Contains(t, e.Fields, "category")
	assert.Contains(t, e.Fields, "tags[1]")
	assert.Empty(t, f.index.Indexed)
}

func TestExpenseService_PartialUpdate(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()
	seeded := f.repo.Seed(entity.Expense{
		UserID: userA, Title: "Groceries", Amount: 40, Category: entity.CategoryFood,
		Date: day(2024, 1, 5), Tags: []string{"home"}, Notes: "weekly",
	})

	updated, err := f.svc.Update(ctx, userA, seeded.ID, ExpensePatch{Amount: ptr(55.5)})
	require.NoError(t, err)
	assert.Equal(t, 55.5, updated.Amount)
	assert.Equal(t, "Groceries", updated.Title)
	assert.Equal(t, entity.CategoryFood, updated.Category)
	assert.Equal(t, []string{"home"}, updated.Tags)
	assert.Equal(t, "weekly", updated.Notes)

	updated, err = f.svc.Update(ctx, userA, seeded.ID, ExpensePatch{Tags: ptr([]string{}), Notes: ptr("")})
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
	assert.Empty(t, updated.Notes)
	assert.Equal(t, 55.5, updated.Amount)

	_, err = f.svc.Update(ctx, userA, seeded.ID, ExpensePatch{Category: ptr("Nope")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestExpenseService_CrossUserIsNotFound(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()
	seeded := f.repo.Seed(entity.Expense{UserID: userA, Title: "Rent", Amount: 900, Category: entity.CategoryBills, Date: day(2024, 1, 1)})

	_, err := f.svc.Get(ctx, userB, seeded.ID)
	requireKind(t, err, apperr.KindNotFound, MsgExpenseNotFound)

	_, err = f.svc.Update(ctx, userB, seeded.ID, ExpensePatch{Amount: ptr(1.0)})
	requireKind(t, err, apperr.KindNotFound, MsgExpenseNotFound)

	err = f.svc.Delete(ctx, userB, seeded.ID)
	requireKind(t, err, apperr.KindNotFound, MsgExpenseNotFound)

	got, err := f.svc.Get(ctx, userA, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, 900.0, got.Amount)
}

func TestExpenseService_Delete(t *testing.T) {
	f := newExpenseFixture(t)
	ctx := context.Background()
	seeded := f.repo.Seed(entity.Expense{UserID: userA, Title: "Movie", Amount: 15, Category: entity.CategoryEntertainment, Date: day(2024, 1, 3)})

	require.NoError(t, f.svc.Delete(ctx, userA, seeded.ID))
	assert.Equal(t, []string{seeded.ID}, f.index.Deleted)

	_, err := f.svc.Get(ctx, userA, seeded.ID)
	requireKind(t, err, apperr.KindNotFound, MsgExpenseNotFound)
}

func TestExpenseService_IndexFailureDoesNotFailWrite(t *testing.T) {
	f := newExpenseFixture(t)
	f.index.IndexExpenseFunc = func(context.Context, entity.Expense) error { return errors.New("es down") }

	_, err := f.svc.Create(context.Background(), userA, ExpenseInput{Title: "Book", Amount: 20, Category: string(entity.CategoryEducation)})
	require.NoError(t, err)
}

func TestExpenseService_RepositoryFailureIsInternal(t *testing.T) {
	f := newExpenseFixture(t)
	f.repo.CreateFunc = func(context.Context, *entity.Expense) error { return errors.New("connection reset") }

	_, err := f.svc.Create(context.Background(), userA, ExpenseInput{Title: "Book", Amount: 20, Category: string(entity.CategoryEducation)})
	requireKind(t, err, apperr.KindInternal, "Internal server error while creating expense")
}

// seedScenario stores a $50 Food expense on 2024-01-01 and a $30
// Transportation expense on 2024-01-02 for userA, and one for userB.
func seedScenario(repo *mocks.MockExpenseRepository) {
	repo.Seed(entity.Expense{UserID: userA, Title: "A", Amount: 50, Category: entity.CategoryFood, Date: day(2024, 1, 1)})
	repo.Seed(entity.Expense{UserID: userA, Title: "B", Amount: 30, Category: entity.CategoryTransportation, Date: day(2024, 1, 2)})
	repo.Seed(entity.Expense{UserID: userB, Title: "Other user", Amount: 999, Category: entity.CategoryFood, Date: day(2024, 1, 1)})
}

func TestExpenseService_ListByCategory(t *testing.T) {
	f := newExpenseFixture(t)
	seedScenario(f.repo)

	res, err := f.svc.List(context.Background(), userA, ListQuery{Filter: repository.ExpenseFilter{Category: string(entity.CategoryFood)}})
	require.NoError(t, err)
	require.Len(t, res.Expenses, 1)
	assert.Equal(t, "A", res.Expenses[0].Title)
	assert.Equal(t, 50.0, res.Summary.TotalAmount)
	assert.Equal(t, int64(1), res.Summary.TotalExpenses)
	assert.Equal(t, Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 1, ItemsPerPage: DefaultPageSize}, res.Pagination)
}

func TestExpenseService_ListPagination(t *testing.T) {
	f := newExpenseFixture(t)
	for i := 1; i <= 25; i++ {
		f.repo.Seed(entity.Expense{UserID: userA, Title: "x", Amount: float64(i), Category: entity.CategoryOther, Date: day(2024, 1, i)})
	}

	res, err := f.svc.List(context.Background(), userA, ListQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, res.Expenses, 5)
	assert.Equal(t, 3, res.Pagination.TotalPages)
	assert.Equal(t, int64(25), res.Pagination.TotalItems)
	// default sort is newest first
	assert.Equal(t, 5.0, res.Expenses[0].Amount)

	res, err = f.svc.List(context.Background(), userA, ListQuery{Limit: 1000, Sort: repository.Sort{Field: repository.SortByAmount}})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, res.Pagination.ItemsPerPage)
	assert.Equal(t, 1.0, res.Expenses[0].Amount)
}

func TestExpenseService_Stats(t *testing.T) {
	f := newExpenseFixture(t)
	seedScenario(f.repo)

	res, err := f.svc.Stats(context.Background(), userA, 30)
	require.NoError(t, err)
	assert.Equal(t, 80.0, res.Summary.TotalAmount)
	assert.Equal(t, int64(2), res.Summary.TotalCount)
	assert.Equal(t, 30, res.Summary.Period)
	require.Len(t, res.CategoryStats, 2)
	assert.Equal(t, string(entity.CategoryFood), res.CategoryStats[0].Category)
	require.Len(t, res.RecentExpenses, 2)
	assert.Equal(t, "B", res.RecentExpenses[0].Title)
	require.Len(t, res.MonthlyTrend, 1)
	assert.Equal(t, entity.MonthTotal{Year: 2024, Month: 1, Total: 80, Count: 2, Average: 40}, res.MonthlyTrend[0])
}

func TestExpenseService_Search(t *testing.T) {
	f := newExpenseFixture(t)
	var gotSize int
	f.index.SearchExpensesFunc = func(_ context.Context, userID, q string, size int) ([]entity.Expense, error) {
		gotSize = size
		return []entity.Expense{{ID: "1", UserID: userID, Title: q}}, nil
	}

	items, err := f.svc.Search(context.Background(), userA, "coffee", 500)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, DefaultPageSize, gotSize)

	f.svc.Index = nil
	items, err = f.svc.Search(context.Background(), userA, "coffee", 5)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}
