package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/expense-tracker/internal/domain/entity"
	"github.com/oksasatya/expense-tracker/internal/domain/repository"
)

// MockExpenseRepository implements repository.ExpenseRepository. Unset funcs
// fall back to an in-memory store that evaluates filters and aggregates in Go.
type MockExpenseRepository struct {
	CreateFunc  func(ctx context.Context, e *entity.Expense) error
	GetByIDFunc func(ctx context.Context, userID, id string) (*entity.Expense, error)
	UpdateFunc  func(ctx context.Context, e *entity.Expense) error
	DeleteFunc  func(ctx context.Context, userID, id string) error
	ListFunc    func(ctx context.Context, userID string, f repository.ExpenseFilter, s repository.Sort, p repository.Page) ([]entity.Expense, int64, error)
	ListAllFunc func(ctx context.Context, userID string, f repository.ExpenseFilter) ([]entity.Expense, error)
	TotalsFunc  func(ctx context.Context, userID string, f repository.ExpenseFilter) (entity.Totals, error)

	mu       sync.Mutex
	expenses map[string]entity.Expense
}

func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{expenses: map[string]entity.Expense{}}
}

// Seed stores e directly, assigning an id when empty.
func (m *MockExpenseRepository) Seed(e entity.Expense) entity.Expense {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if m.expenses == nil {
		m.expenses = map[string]entity.Expense{}
	}
	e.Tags = append([]string{}, e.Tags...)
	m.expenses[e.ID] = e
	return e
}

func matches(e entity.Expense, userID string, f repository.ExpenseFilter) bool {
	if e.UserID != userID {
		return false
	}
	if f.Category != "" && f.Category != "all" && string(e.Category) != f.Category {
		return false
	}
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	if f.Before != nil && !e.Date.Before(*f.Before) {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		hit := strings.Contains(strings.ToLower(e.Title), s) || strings.Contains(strings.ToLower(e.Notes), s)
		for _, t := range e.Tags {
			hit = hit || strings.Contains(strings.ToLower(t), s)
		}
		if !hit {
			return false
		}
	}
	return true
}

func (m *MockExpenseRepository) filtered(userID string, f repository.ExpenseFilter) []entity.Expense {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Expense, 0)
	for _, e := range m.expenses {
		if matches(e, userID, f) {
			out = append(out, e)
		}
	}
	return out
}

func less(a, b entity.Expense, field repository.SortField) bool {
	switch field {
	case repository.SortByAmount:
		return a.Amount < b.Amount
	case repository.SortByTitle:
		return a.Title < b.Title
	case repository.SortByCategory:
		return a.Category < b.Category
	case repository.SortByCreatedAt:
		return a.CreatedAt.Before(b.CreatedAt)
	default:
		return a.Date.Before(b.Date)
	}
}

func sortExpenses(items []entity.Expense, s repository.Sort) {
	sort.SliceStable(items, func(i, j int) bool {
		if s.Desc {
			return less(items[j], items[i], s.Field)
		}
		return less(items[i], items[j], s.Field)
	})
}

func (m *MockExpenseRepository) Create(ctx context.Context, e *entity.Expense) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, e)
	}
	now := time.Now().UTC()
	e.ID = uuid.NewString()
	e.CreatedAt, e.UpdatedAt = now, now
	m.Seed(*e)
	return nil
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, userID, id string) (*entity.Expense, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok || e.UserID != userID {
		return nil, repository.ErrNotFound
	}
	e.Tags = append([]string{}, e.Tags...)
	return &e, nil
}

func (m *MockExpenseRepository) Update(ctx context.Context, e *entity.Expense) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, e)
	}
	if _, err := m.GetByID(ctx, e.UserID, e.ID); err != nil {
		return err
	}
	e.UpdatedAt = time.Now().UTC()
	m.Seed(*e)
	return nil
}

func (m *MockExpenseRepository) Delete(ctx context.Context, userID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	if _, err := m.GetByID(ctx, userID, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.expenses, id)
	return nil
}

func (m *MockExpenseRepository) List(ctx context.Context, userID string, f repository.ExpenseFilter, s repository.Sort, p repository.Page) ([]entity.Expense, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, f, s, p)
	}
	items := m.filtered(userID, f)
	sortExpenses(items, s)
	total := int64(len(items))
	if p.Offset >= len(items) {
		return []entity.Expense{}, total, nil
	}
	end := p.Offset + p.Limit
	if p.Limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end], total, nil
}

func (m *MockExpenseRepository) ListAll(ctx context.Context, userID string, f repository.ExpenseFilter) ([]entity.Expense, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, userID, f)
	}
	items := m.filtered(userID, f)
	sortExpenses(items, repository.Sort{Field: repository.SortByDate, Desc: true})
	return items, nil
}

func (m *MockExpenseRepository) Recent(ctx context.Context, userID string, limit int) ([]entity.Expense, error) {
	items, _ := m.ListAll(ctx, userID, repository.ExpenseFilter{})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *MockExpenseRepository) Totals(ctx context.Context, userID string, f repository.ExpenseFilter) (entity.Totals, error) {
	if m.TotalsFunc != nil {
		return m.TotalsFunc(ctx, userID, f)
	}
	var t entity.Totals
	for i, e := range m.filtered(userID, f) {
		t.TotalAmount += e.Amount
		t.TotalCount++
		if i == 0 || e.Amount < t.MinAmount {
			t.MinAmount = e.Amount
		}
		if e.Amount > t.MaxAmount {
			t.MaxAmount = e.Amount
		}
	}
	if t.TotalCount > 0 {
		t.AverageAmount = t.TotalAmount / float64(t.TotalCount)
	}
	return t, nil
}

type bucket struct {
	total float64
	count int64
}

func (m *MockExpenseRepository) groupBy(userID string, f repository.ExpenseFilter, key func(e entity.Expense) string) (map[string]*bucket, []string) {
	groups := map[string]*bucket{}
	var keys []string
	for _, e := range m.filtered(userID, f) {
		k := key(e)
		b, ok := groups[k]
		if !ok {
			b = &bucket{}
			groups[k] = b
			keys = append(keys, k)
		}
		b.total += e.Amount
		b.count++
	}
	sort.Strings(keys)
	return groups, keys
}

func (m *MockExpenseRepository) CategoryTotals(_ context.Context, userID string, f repository.ExpenseFilter) ([]entity.CategoryStat, error) {
	groups, keys := m.groupBy(userID, f, func(e entity.Expense) string { return string(e.Category) })
	out := make([]entity.CategoryStat, 0, len(keys))
	for _, k := range keys {
		b := groups[k]
		out = append(out, entity.CategoryStat{Category: k, Total: b.total, Count: b.count, Average: b.total / float64(b.count)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out, nil
}

func (m *MockExpenseRepository) GroupTotals(_ context.Context, userID string, f repository.ExpenseFilter, g repository.GroupBy) ([]entity.GroupTotal, error) {
	key := func(e entity.Expense) string {
		switch g {
		case repository.GroupByMonth:
			return e.Date.UTC().Format("2006-01")
		case repository.GroupByDay:
			return e.Date.UTC().Format("2006-01-02")
		case repository.GroupByCategory:
			return string(e.Category)
		default:
			return "all"
		}
	}
	groups, keys := m.groupBy(userID, f, key)
	out := make([]entity.GroupTotal, 0, len(keys))
	for _, k := range keys {
		b := groups[k]
		t := entity.GroupTotal{Key: k, Total: b.total, Count: b.count}
		if g != repository.GroupByDay {
			avg := b.total / float64(b.count)
			t.Average = &avg
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out, nil
}

func (m *MockExpenseRepository) MonthTotals(_ context.Context, userID string, f repository.ExpenseFilter) ([]entity.MonthTotal, error) {
	groups, keys := m.groupBy(userID, f, func(e entity.Expense) string { return e.Date.UTC().Format("2006-01") })
	out := make([]entity.MonthTotal, 0, len(keys))
	for _, k := range keys {
		b := groups[k]
		t, _ := time.Parse("2006-01", k)
		out = append(out, entity.MonthTotal{Year: t.Year(), Month: int(t.Month()), Total: b.total, Count: b.count, Average: b.total / float64(b.count)})
	}
	return out, nil
}

func (m *MockExpenseRepository) CategoryMonthTotals(_ context.Context, userID string, f repository.ExpenseFilter) ([]entity.CategoryMonthTotal, error) {
	groups, keys := m.groupBy(userID, f, func(e entity.Expense) string {
		return e.Date.UTC().Format("2006-01") + "|" + string(e.Category)
	})
	out := make([]entity.CategoryMonthTotal, 0, len(keys))
	for _, k := range keys {
		b := groups[k]
		parts := strings.SplitN(k, "|", 2)
		t, _ := time.Parse("2006-01", parts[0])
		out = append(out, entity.CategoryMonthTotal{Category: parts[1], Year: t.Year(), Month: int(t.Month()), Total: b.total, Count: b.count})
	}
	return out, nil
}

func (m *MockExpenseRepository) SpendingPatterns(_ context.Context, userID string, f repository.ExpenseFilter) ([]entity.SpendingPattern, error) {
	type slot struct{ dow, hour int }
	groups := map[slot]*entity.SpendingPattern{}
	var order []slot
	for _, e := range m.filtered(userID, f) {
		d := e.Date.UTC()
		k := slot{int(d.Weekday()) + 1, d.Hour()}
		p, ok := groups[k]
		if !ok {
			p = &entity.SpendingPattern{DayOfWeek: k.dow, Hour: k.hour}
			groups[k] = p
			order = append(order, k)
		}
		p.Total += e.Amount
		p.Count++
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].dow != order[j].dow {
			return order[i].dow < order[j].dow
		}
		return order[i].hour < order[j].hour
	})
	out := make([]entity.SpendingPattern, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out, nil
}

// Compile-time interface compliance verification
var _ repository.ExpenseRepository = (*MockExpenseRepository)(nil)
