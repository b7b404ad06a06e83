package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/oksasatya/expense-tracker/internal/domain/entity"
)

// MockExpenseIndexer implements application.ExpenseIndexer.
type MockExpenseIndexer struct {
	IndexExpenseFunc   func(ctx context.Context, e entity.Expense) error
	DeleteExpenseFunc  func(ctx context.Context, userID, id string) error
	SearchExpensesFunc func(ctx context.Context, userID, q string, size int) ([]entity.Expense, error)

	mu      sync.Mutex
	Indexed []entity.Expense
	Deleted []string
}

func (m *MockExpenseIndexer) IndexExpense(ctx context.Context, e entity.Expense) error {
	m.mu.Lock()
	m.Indexed = append(m.Indexed, e)
	m.mu.Unlock()
	if m.IndexExpenseFunc != nil {
		return m.IndexExpenseFunc(ctx, e)
	}
	return nil
}

func (m *MockExpenseIndexer) DeleteExpense(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	m.Deleted = append(m.Deleted, id)
	m.mu.Unlock()
	if m.DeleteExpenseFunc != nil {
		return m.DeleteExpenseFunc(ctx, userID, id)
	}
	return nil
}

func (m *MockExpenseIndexer) SearchExpenses(ctx context.Context, userID, q string, size int) ([]entity.Expense, error) {
	if m.SearchExpensesFunc != nil {
		return m.SearchExpensesFunc(ctx, userID, q, size)
	}
	return []entity.Expense{}, nil
}

// MockReportArchiver implements application.ReportArchiver.
type MockReportArchiver struct {
	ArchiveFunc func(ctx context.Context, userID, filename string, content []byte) (string, error)
	Archived    []string
}

func (m *MockReportArchiver) Archive(ctx context.Context, userID, filename string, content []byte) (string, error) {
	m.Archived = append(m.Archived, userID+"/"+filename)
	if m.ArchiveFunc != nil {
		return m.ArchiveFunc(ctx, userID, filename, content)
	}
	return "gs://test/" + userID + "/" + filename, nil
}

// MockReportCache implements application.ReportCache with a JSON map, so
// cached values round-trip exactly like the Redis implementation.
type MockReportCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	Hits        int
	Invalidated []string
}

func NewMockReportCache() *MockReportCache {
	return &MockReportCache{entries: map[string][]byte{}}
}

func (m *MockReportCache) Get(_ context.Context, userID, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.entries[userID+"|"+key]
	if !ok {
		return false, nil
	}
	m.Hits++
	return true, json.Unmarshal(b, dest)
}

func (m *MockReportCache) Set(_ context.Context, userID, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = map[string][]byte{}
	}
	m.entries[userID+"|"+key] = b
	return nil
}

func (m *MockReportCache) Invalidate(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invalidated = append(m.Invalidated, userID)
	for k := range m.entries {
		if len(k) > len(userID) && k[:len(userID)+1] == userID+"|" {
			delete(m.entries, k)
		}
	}
	return nil
}
