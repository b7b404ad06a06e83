package application

import (
	"context"
	"errors"
	"strings"
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

type reportFixture struct {
	svc      *ReportService
	expenses *mocks.MockExpenseRepository
	users    *mocks.MockUserRepository
	cache    *mocks.MockReportCache
	mailer   *mocks.MockMailer
	archiver *mocks.MockReportArchiver
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	f := &reportFixture{
		expenses: mocks.NewMockExpenseRepository(),
		users:    mocks.NewMockUserRepository(),
		cache:    mocks.NewMockReportCache(),
		mailer:   mocks.NewMockMailer(),
		archiver: &mocks.MockReportArchiver{},
	}
	f.svc = NewReportService(f.expenses, f.users, f.cache, f.mailer, f.archiver, helpers.NopLogger())
	f.svc.now = func() time.Time { return time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestReportService_Summary(t *testing.T) {
	f := newReportFixture(t)
	seedScenario(f.expenses)

	res, err := f.svc.Summary(context.Background(), userA, SummaryQuery{})
	require.NoError(t, err)
	assert.Equal(t, 80.0, res.Summary.TotalAmount)
	assert.Equal(t, int64(2), res.Summary.TotalCount)
	assert.Equal(t, 40.0, res.Summary.AverageAmount)
	assert.Equal(t, 30.0, res.Summary.MinAmount)
	assert.Equal(t, 50.0, res.Summary.MaxAmount)
	assert.Equal(t, "month", res.Filters.GroupBy)

	require.Len(t, res.GroupedData, 1)
	assert.Equal(t, "2024-01", res.GroupedData[0].Key)

	require.Len(t, res.CategoryBreakdown, 2)
	assert.Equal(t, CategoryShare{Category: string(entity.CategoryFood), Total: 50, Count: 1, Percentage: 62.5}, res.CategoryBreakdown[0])
	assert.Equal(t, 37.5, res.CategoryBreakdown[1].Percentage)
}

func TestReportService_SummaryFilters(t *testing.T) {
	f := newReportFixture(t)
	seedScenario(f.expenses)

	res, err := f.svc.Summary(context.Background(), userA, SummaryQuery{
		Params:  FilterParams{StartDate: "2024-01-01", EndDate: "2024-01-01"},
		GroupBy: repository.GroupByDay,
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.Summary.TotalAmount)
	require.Len(t, res.GroupedData, 1)
	assert.Equal(t, "2024-01-01", res.GroupedData[0].Key)
	assert.Nil(t, res.GroupedData[0].Average)

	_, err = f.svc.Summary(context.Background(), userA, SummaryQuery{Params: FilterParams{StartDate: "yesterday"}})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestReportService_SummaryEmpty(t *testing.T) {
	f := newReportFixture(t)

	res, err := f.svc.Summary(context.Background(), userA, SummaryQuery{})
	require.NoError(t, err)
	assert.Equal(t, entity.Totals{}, res.Summary)
	assert.Empty(t, res.CategoryBreakdown)
}

func TestReportService_CacheHitAndInvalidation(t *testing.T) {
	f := newReportFixture(t)
	seedScenario(f.expenses)
	ctx := context.Background()

	first, err := f.svc.Summary(ctx, userA, SummaryQuery{})
	require.NoError(t, err)
	second, err := f.svc.Summary(ctx, userA, SummaryQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.Hits)
	assert.Equal(t, first, second)

	expenses := NewExpenseService(f.expenses, nil, f.cache, helpers.NopLogger())
	_, err = expenses.Create(ctx, userA, ExpenseInput{Title: "C", Amount: 20, Date: ptr(day(2024, 1, 3)), Category: string(entity.CategoryOther)})
	require.NoError(t, err)

	third, err := f.svc.Summary(ctx, userA, SummaryQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.Hits)
	assert.Equal(t, 100.0, third.Summary.TotalAmount)
}

func TestReportService_Trends(t *testing.T) {
	f := newReportFixture(t)
	seedScenario(f.expenses)
	f.expenses.Seed(entity.Expense{UserID: userA, Title: "Old", Amount: 10, Category: entity.CategoryOther, Date: day(2023, 1, 1)})

	res, err := f.svc.Trends(context.Background(), userA, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Period)
	require.Len(t, res.MonthlyTrends, 1)
	assert.Equal(t, 80.0, res.MonthlyTrends[0].Total)
	assert.Len(t, res.CategoryTrends, 2)
	require.Len(t, res.TopCategories, 2)
	assert.Equal(t, string(entity.CategoryFood), res.TopCategories[0].Category)
}

func TestReportService_Insights(t *testing.T) {
	f := newReportFixture(t)
	seedScenario(f.expenses)
	f.expenses.Seed(entity.Expense{UserID: userA, Title: "Prev", Amount: 50, Category: entity.CategoryOther, Date: day(2023, 12, 1)})

	res, err := f.svc.Insights(context.Background(), userA, 30)
	require.NoError(t, err)
	assert.Equal(t, PeriodTotals{Total: 80, Count: 2, Average: 40}, res.CurrentPeriod)
	assert.Equal(t, PeriodTotals{Total: 50, Count: 1, Average: 50}, res.PreviousPeriod)
	assert.Equal(t, 60.0, res.Insights.SpendingChange.Total)
	assert.Equal(t, -20.0, res.Insights.SpendingChange.Average)
	assert.Equal(t, "increased", res.Insights.SpendingChange.Trend)
	require.NotNil(t, res.Insights.TopCategory)
	assert.Equal(t, string(entity.CategoryFood), res.Insights.TopCategory.Category)
	assert.Equal(t, 2, res.Insights.TotalCategories)
	assert.Equal(t, []string{
		"Your spending has increased significantly. Consider reviewing your expenses.",
		"You're spending 62.5% on Food & Dining. Consider diversifying your expenses.",
	}, res.Insights.Recommendations)
	require.Len(t, res.Insights.SpendingPatterns, 2)
	// 2024-01-01 was a Monday
	assert.Equal(t, 2, res.Insights.SpendingPatterns[0].DayOfWeek)
}

func TestBuildInsights_NoHistory(t *testing.T) {
	cats := []entity.CategoryStat{
		{Category: "Groceries", Total: 30, Count: 1, Average: 30},
		{Category: "Travel", Total: 30, Count: 1, Average: 30},
		{Category: "Other", Total: 40, Count: 1, Average: 40},
	}
	in := buildInsights(entity.Totals{TotalAmount: 100, TotalCount: 3}, entity.Totals{}, cats, nil)
	assert.Equal(t, 0.0, in.SpendingChange.Total)
	assert.Equal(t, "unchanged", in.SpendingChange.Trend)
	assert.Empty(t, in.Recommendations)
	assert.NotNil(t, in.Recommendations)

	in = buildInsights(entity.Totals{}, entity.Totals{}, nil, nil)
	assert.Nil(t, in.TopCategory)
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 0.0, percentChange(10, 0))
	assert.Equal(t, -50.0, percentChange(5, 10))
	assert.Equal(t, 33.3, percentChange(4, 3))
}

func TestReportService_ExportCSV(t *testing.T) {
	f := newReportFixture(t)
	seedScenario(f.expenses)

	file, err := f.svc.ExportCSV(context.Background(), userA, FilterParams{})
	require.NoError(t, err)
	assert.Equal(t, "expenses_2024-01-20.csv", file.Filename)
	assert.Equal(t, 2, file.Count)

	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Title,Amount,Category,Tags,Notes,Created At", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2024-01-02,B,30.00,Transportation,"))
}

func TestReportService_ExportCSVEmpty(t *testing.T) {
	f := newReportFixture(t)
	seedScenario(f.expenses)

	_, err := f.svc.ExportCSV(context.Background(), userA, FilterParams{Category: string(entity.CategoryTravel)})
	requireKind(t, err, apperr.KindNotFound, MsgNoExpenses)
}

func TestReportService_SendCSV(t *testing.T) {
	f := newReportFixture(t)
	u := f.users.Seed(entity.User{ID: userA, Name: "Ann", Email: "ann@example.com", IsVerified: true})
	seedScenario(f.expenses)

	require.NoError(t, f.svc.SendCSV(context.Background(), u.ID, FilterParams{StartDate: "2024-01-01"}))

	mail, ok := f.mailer.Last("csv")
	require.True(t, ok)
	assert.Equal(t, "ann@example.com", mail.Email)
	assert.Equal(t, "expenses_2024-01-20.csv", mail.Filename)
	assert.Equal(t, 2, mail.Count)
	assert.Equal(t, "since 2024-01-01", mail.Period)
	assert.Equal(t, []string{userA + "/expenses_2024-01-20.csv"}, f.archiver.Archived)
}

func TestReportService_SendCSVFailures(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		f := newReportFixture(t)
		err := f.svc.SendCSV(context.Background(), userA, FilterParams{})
		requireKind(t, err, apperr.KindNotFound, MsgUserNotFound)
	})

	t.Run("no expenses", func(t *testing.T) {
		f := newReportFixture(t)
		f.users.Seed(entity.User{ID: userA, Email: "ann@example.com"})
		err := f.svc.SendCSV(context.Background(), userA, FilterParams{})
		requireKind(t, err, apperr.KindNotFound, MsgNoExpenses)
		assert.Empty(t, f.mailer.Sent)
	})

	t.Run("mail failure", func(t *testing.T) {
		f := newReportFixture(t)
		f.users.Seed(entity.User{ID: userA, Email: "ann@example.com"})
		seedScenario(f.expenses)
		f.mailer.Err = errors.New("relay down")
		err := f.svc.SendCSV(context.Background(), userA, FilterParams{})
		requireKind(t, err, apperr.KindInternal, "Internal server error while emailing CSV report")
	})

	t.Run("archive failure is ignored", func(t *testing.T) {
		f := newReportFixture(t)
		f.users.Seed(entity.User{ID: userA, Email: "ann@example.com"})
		seedScenario(f.expenses)
		f.archiver.ArchiveFunc = func(context.Context, string, string, []byte) (string, error) {
			return "", errors.New("bucket missing")
		}
		require.NoError(t, f.svc.SendCSV(context.Background(), userA, FilterParams{}))
		_, ok := f.mailer.Last("csv")
		assert.True(t, ok)
	})
}

func TestDescribePeriod(t *testing.T) {
	assert.Equal(t, "all time", describePeriod(FilterParams{}))
	assert.Equal(t, "2024-01-01 to 2024-01-31", describePeriod(FilterParams{StartDate: "2024-01-01", EndDate: "2024-01-31"}))
	assert.Equal(t, "until 2024-01-31", describePeriod(FilterParams{EndDate: "2024-01-31"}))
}
