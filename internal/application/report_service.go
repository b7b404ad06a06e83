package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/expense-tracker/internal/domain/apperr"
	"github.com/oksasatya/expense-tracker/internal/domain/entity"
	repo "github.com/oksasatya/expense-tracker/internal/domain/repository"
)

const (
	MsgNoExpenses   = "No expenses found for the specified criteria"
	TopCategories   = 10
	recIncreaseRate = 20.0
	recCategoryRate = 40.0
)

type ReportService struct {
	Expenses repo.ExpenseRepository
	Users    repo.UserRepository
	Cache    ReportCache
	Mailer   Mailer
	Archiver ReportArchiver
	Logger   *logrus.Logger

	now func() time.Time
}

func NewReportService(expenses repo.ExpenseRepository, users repo.UserRepository, cache ReportCache, mailer Mailer, archiver ReportArchiver, logger *logrus.Logger) *ReportService {
	return &ReportService{
		Expenses: expenses,
		Users:    users,
		Cache:    cache,
		Mailer:   mailer,
		Archiver: archiver,
		Logger:   logger,
		now:      time.Now,
	}
}

func (s *ReportService) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// cached wraps build with a per-user cache lookup. Cache failures degrade to a rebuild.
func cached[T any](ctx context.Context, s *ReportService, userID, key string, build func() (*T, error)) (*T, error) {
	if s.Cache != nil {
		var hit T
		ok, err := s.Cache.Get(ctx, userID, key, &hit)
		if err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("report cache read failed")
		}
		if ok {
			return &hit, nil
		}
	}
	v, err := build()
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, userID, key, v); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("report cache write failed")
		}
	}
	return v, nil
}

// SummaryQuery echoes the raw filter values back to the client alongside the parsed filter.
type SummaryQuery struct {
	Params  FilterParams
	GroupBy repo.GroupBy
}

type SummaryFilters struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Category  string `json:"category,omitempty"`
	GroupBy   string `json:"groupBy"`
}

type CategoryShare struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type SummaryResult struct {
	Summary           entity.Totals       `json:"summary"`
	GroupedData       []entity.GroupTotal `json:"groupedData"`
	CategoryBreakdown []CategoryShare     `json:"categoryBreakdown"`
	Filters           SummaryFilters      `json:"filters"`
}

func (s *ReportService) Summary(ctx context.Context, userID string, q SummaryQuery) (*SummaryResult, error) {
	const failMsg = "Internal server error while generating expense summary"

	f, err := BuildFilter(FilterParams{Category: q.Params.Category, StartDate: q.Params.StartDate, EndDate: q.Params.EndDate})
	if err != nil {
		return nil, err
	}
	groupBy := q.GroupBy
	if groupBy == "" {
		groupBy = repo.GroupByMonth
	}
	key := fmt.Sprintf("summary|%s|%s|%s|%s", q.Params.StartDate, q.Params.EndDate, q.Params.Category, groupBy)

	return cached(ctx, s, userID, key, func() (*SummaryResult, error) {
		totals, err := s.Expenses.Totals(ctx, userID, f)
		if err != nil {
			return nil, apperr.Internal(failMsg, err)
		}
		groups, err := s.Expenses.GroupTotals(ctx, userID, f, groupBy)
		if err != nil {
			return nil, apperr.Internal(failMsg, err)
		}
		cats, err := s.Expenses.CategoryTotals(ctx, userID, f)
		if err != nil {
			return nil, apperr.Internal(failMsg, err)
		}

		shares := make([]CategoryShare, 0, len(cats))
		for _, c := range cats {
			pct := 0.0
			if totals.TotalAmount > 0 {
				pct = round(c.Total/totals.TotalAmount*100, 2)
			}
			shares = append(shares, CategoryShare{Category: c.Category, Total: c.Total, Count: c.Count, Percentage: pct})
		}
		totals.TotalAmount = entity.RoundAmount(totals.TotalAmount)
		totals.AverageAmount = entity.RoundAmount(totals.AverageAmount)

		return &SummaryResult{
			Summary:           totals,
			GroupedData:       groups,
			CategoryBreakdown: shares,
			Filters: SummaryFilters{
				StartDate: q.Params.StartDate,
				EndDate:   q.Params.EndDate,
				Category:  q.Params.Category,
				GroupBy:   string(groupBy),
			},
		}, nil
	})
}

type TrendsResult struct {
	MonthlyTrends  []entity.MonthTotal         `json:"monthlyTrends"`
	CategoryTrends []entity.CategoryMonthTotal `json:"categoryTrends"`
	TopCategories  []entity.CategoryStat       `json:"topCategories"`
	Period         int                         `json:"period"`
}

func (s *ReportService) Trends(ctx context.Context, userID string, months int) (*TrendsResult, error) {
	const failMsg = "Internal server error while fetching expense trends"

	return cached(ctx, s, userID, fmt.Sprintf("trends|%d", months), func() (*TrendsResult, error) {
		from := s.clock().AddDate(0, -months, 0)
		f := repo.ExpenseFilter{From: &from}

		monthly, err := s.Expenses.MonthTotals(ctx, userID, f)
		if err != nil {
			return nil, apperr.Internal(failMsg, err)
		}
		byCat, err := s.Expenses.CategoryMonthTotals(ctx, userID, f)
		if err != nil {
			return nil, apperr.Internal(failMsg, err)
		}
		top, err := s.Expenses.CategoryTotals(ctx, userID, f)
		if err != nil {
			return nil, apperr.Internal(failMsg, err)
		}
		if len(top) > TopCategories {
			top = top[:TopCategories]
		}
		return &TrendsResult{MonthlyTrends: monthly, CategoryTrends: byCat, TopCategories: top, Period: months}, nil
	})
}

type PeriodTotals struct {
	Total   float64 `json:"total"`
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

type SpendingChange struct {
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
	Trend   string  `json:"trend"`
}

type Insights struct {
	SpendingChange   SpendingChange           `json:"spendingChange"`
	TopCategory      *entity.CategoryStat     `json:"topCategory"`
	TotalCategories  int                      `json:"totalCategories"`
	SpendingPatterns []entity.SpendingPattern `json:"spendingPatterns"`
	Recommendations  []string                 `json:"recommendations"`
}

type InsightsResult struct {
	Insights         Insights              `json:"insights"`
	CurrentPeriod    PeriodTotals          `json:"currentPeriod"`
	PreviousPeriod   PeriodTotals          `json:"previousPeriod"`
	CategoryInsights []entity.CategoryStat `json:"categoryInsights"`
	Period           int                   `json:"period"`
}

func percentChange(cur, prev float64) float64 {
	if prev <= 0 {
		return 0
	}
	return round((cur-prev)/prev*100, 1)
}

// buildInsights derives the comparison and canned recommendations from raw aggregates.
func buildInsights(cur, prev entity.Totals, cats []entity.CategoryStat, patterns []entity.SpendingPattern) Insights {
	in := Insights{
		SpendingChange: SpendingChange{
			Total:   percentChange(cur.TotalAmount, prev.TotalAmount),
			Average: percentChange(cur.AverageAmount, prev.AverageAmount),
		},
		TotalCategories:  len(cats),
		SpendingPatterns: patterns,
		Recommendations:  []string{},
	}
	switch {
	case in.SpendingChange.Total > 0:
		in.SpendingChange.Trend = "increased"
	case in.SpendingChange.Total < 0:
		in.SpendingChange.Trend = "decreased"
	default:
		in.SpendingChange.Trend = "unchanged"
	}

	if in.SpendingChange.Total > recIncreaseRate {
		in.Recommendations = append(in.Recommendations,
			"Your spending has increased significantly. Consider reviewing your expenses.")
	}
	if len(cats) > 0 {
		top := cats[0]
		in.TopCategory = &top
		if cur.TotalAmount > 0 {
			share := round(top.Total/cur.TotalAmount*100, 1)
			if share > recCategoryRate {
				in.Recommendations = append(in.Recommendations,
					fmt.Sprintf("You're spending %.1f%% on %s. Consider diversifying your expenses.", share, top.Category))
			}
		}
	}
	return in
}

// Insights compares the trailing periodDays against the equally long window before it.
func (s *ReportService) Insights(ctx context.Context, userID string, periodDays int) (*InsightsResult, error) {
	const failMsg = "Internal server error while generating expense insights"

	return cached(ctx, s, userID, fmt.Sprintf("insights|%d", periodDays), func() (*InsightsResult, error) {
		start := s.clock().AddDate(0, 0, -periodDays)
		prevStart := start.AddDate(0, 0, -periodDays)
		current := repo.ExpenseFilter{From: &start}
		previous := repo.ExpenseFilter{From: &prevStart, Before: &start}

		cur, err := s.Expenses.Totals(ctx, userID, current)
		if err != nil {
			return nil, apperr.Internal(failMsg, err)
		}
		prev, err := s.Expenses.Totals(ctx, userID, previous)
		if err != nil {
			return nil, apperr.Internal(failMsg, err)
		}
		cats, err := s.Expenses.CategoryTotals(ctx, userID, current)
		if err != nil {
			return nil, apperr.Internal(failMsg, err)
		}
		patterns, err := s.Expenses.SpendingPatterns(ctx, userID, current)
		if err != nil {
			return nil, apperr.Internal(failMsg, err)
		}

		return &InsightsResult{
			Insights:         buildInsights(cur, prev, cats, patterns),
			CurrentPeriod:    PeriodTotals{Total: entity.RoundAmount(cur.TotalAmount), Count: cur.TotalCount, Average: entity.RoundAmount(cur.AverageAmount)},
			PreviousPeriod:   PeriodTotals{Total: entity.RoundAmount(prev.TotalAmount), Count: prev.TotalCount, Average: entity.RoundAmount(prev.AverageAmount)},
			CategoryInsights: cats,
			Period:           periodDays,
		}, nil
	})
}

// CSVFile is a rendered export.
type CSVFile struct {
	Filename string
	Content  []byte
	Count    int
}

// ExportCSV renders the filtered expenses, newest first. An empty result is NotFound.
func (s *ReportService) ExportCSV(ctx context.Context, userID string, p FilterParams) (*CSVFile, error) {
	const failMsg = "Internal server error while generating CSV report"

	f, err := BuildFilter(FilterParams{Category: p.Category, StartDate: p.StartDate, EndDate: p.EndDate})
	if err != nil {
		return nil, err
	}
	items, err := s.Expenses.ListAll(ctx, userID, f)
	if err != nil {
		return nil, apperr.Internal(failMsg, err)
	}
	if len(items) == 0 {
		return nil, apperr.NotFound(MsgNoExpenses)
	}
	content, err := RenderCSV(items)
	if err != nil {
		return nil, apperr.Internal(failMsg, fmt.Errorf("render csv: %w", err))
	}
	return &CSVFile{Filename: CSVFilename(s.clock()), Content: content, Count: len(items)}, nil
}

func describePeriod(p FilterParams) string {
	switch {
	case p.StartDate != "" && p.EndDate != "":
		return p.StartDate + " to " + p.EndDate
	case p.StartDate != "":
		return "since " + p.StartDate
	case p.EndDate != "":
		return "until " + p.EndDate
	default:
		return "all time"
	}
}

// SendCSV emails the export to the caller. Archiving is best effort; a mail
// failure fails the request.
func (s *ReportService) SendCSV(ctx context.Context, userID string, p FilterParams) error {
	const failMsg = "Internal server error while emailing CSV report"

	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return apperr.Internal(failMsg, fmt.Errorf("get user: %w", err))
	}

	file, err := s.ExportCSV(ctx, userID, p)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			return apperr.Internal(failMsg, err)
		}
		return err
	}

	if s.Archiver != nil {
		uri, err := s.Archiver.Archive(ctx, userID, file.Filename, file.Content)
		if err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("user_id", userID).Warn("csv archive failed")
			}
		} else if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"user_id": userID, "uri": uri}).Info("csv report archived")
		}
	}

	if err := s.Mailer.SendCSVReport(ctx, u.Name, u.Email, file.Filename, file.Content, file.Count, describePeriod(p)); err != nil {
		return apperr.Internal(failMsg, fmt.Errorf("send csv email: %w", err))
	}
	return nil
}
