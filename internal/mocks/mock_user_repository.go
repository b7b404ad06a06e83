package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/expense-tracker/internal/domain/entity"
	"github.com/oksasatya/expense-tracker/internal/domain/repository"
)

// MockUserRepository implements repository.UserRepository. Unset funcs fall
// back to an in-memory store.
type MockUserRepository struct {
	CreateFunc              func(ctx context.Context, u *entity.User) error
	GetByIDFunc             func(ctx context.Context, id string) (*entity.User, error)
	GetByEmailFunc          func(ctx context.Context, email string) (*entity.User, error)
	GetByResetTokenHashFunc func(ctx context.Context, hash string) (*entity.User, error)
	UpdateFunc              func(ctx context.Context, u *entity.User) error

	mu    sync.Mutex
	users map[string]entity.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: map[string]entity.User{}}
}

// Seed stores u directly, assigning an id when empty.
func (m *MockUserRepository) Seed(u entity.User) entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if m.users == nil {
		m.users = map[string]entity.User{}
	}
	m.users[u.ID] = u
	return u
}

// Stored returns a copy of the stored user.
func (m *MockUserRepository) Stored(id string) (entity.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	return u, ok
}

func (m *MockUserRepository) find(match func(u entity.User) bool) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			c := u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, u *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	if _, err := m.find(func(x entity.User) bool { return strings.EqualFold(x.Email, u.Email) }); err == nil {
		return repository.ErrDuplicateEmail
	}
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt, u.UpdatedAt = now, now
	m.Seed(*u)
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return m.find(func(u entity.User) bool { return u.ID == id })
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return m.find(func(u entity.User) bool { return strings.EqualFold(u.Email, strings.TrimSpace(email)) })
}

func (m *MockUserRepository) GetByResetTokenHash(ctx context.Context, hash string) (*entity.User, error) {
	if m.GetByResetTokenHashFunc != nil {
		return m.GetByResetTokenHashFunc(ctx, hash)
	}
	return m.find(func(u entity.User) bool { return hash != "" && u.ResetTokenHash == hash })
}

func (m *MockUserRepository) Update(ctx context.Context, u *entity.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, u)
	}
	if _, ok := m.Stored(u.ID); !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	m.Seed(*u)
	return nil
}

// Compile-time interface compliance verification
var _ repository.UserRepository = (*MockUserRepository)(nil)
