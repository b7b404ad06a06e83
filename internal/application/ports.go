package application

import (
	"context"
	"expvar"
	"time"

	"github.com/oksasatya/expense-tracker/internal/domain/entity"
)

// Mailer sends the application's transactional email. *mailer.Notifier implements it.
type Mailer interface {
	SendOTP(ctx context.Context, name, email, code string, expiresAt time.Time) error
	SendPasswordReset(ctx context.Context, name, email, token string, expiresAt time.Time) error
	SendCSVReport(ctx context.Context, name, email, filename string, content []byte, count int, period string) error
}

// TokenIssuer signs session tokens. *helpers.JWTManager implements it.
type TokenIssuer interface {
	GenerateToken(userID string) (string, time.Time, error)
}

// ExpenseIndexer mirrors expenses into a search index.
type ExpenseIndexer interface {
	IndexExpense(ctx context.Context, e entity.Expense) error
	DeleteExpense(ctx context.Context, userID, id string) error
	SearchExpenses(ctx context.Context, userID, q string, size int) ([]entity.Expense, error)
}

// ReportArchiver stores a copy of an emailed report and returns its location.
type ReportArchiver interface {
	Archive(ctx context.Context, userID, filename string, content []byte) (string, error)
}

// ReportCache caches report payloads per user.
type ReportCache interface {
	Get(ctx context.Context, userID, key string, dest any) (bool, error)
	Set(ctx context.Context, userID, key string, value any) error
	Invalidate(ctx context.Context, userID string) error
}

var (
	signupsTotal    = expvar.NewInt("signups")
	loginsTotal     = expvar.NewInt("logins")
	expensesCreated = expvar.NewInt("expenses_created")
)
