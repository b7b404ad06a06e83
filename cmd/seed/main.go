package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/expense-tracker/config"
	"github.com/oksasatya/expense-tracker/internal/domain/entity"
	"github.com/oksasatya/expense-tracker/internal/domain/repository"
	pginfra "github.com/oksasatya/expense-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/expense-tracker/pkg/helpers"
)

type sample struct {
	title    string
	amount   float64
	category entity.Category
	daysAgo  int
	tags     []string
}

var samples = []sample{
	{"Groceries run", 84.20, entity.CategoryGroceries, 1, []string{"weekly"}},
	{"Team lunch", 23.50, entity.CategoryFood, 2, []string{"work"}},
	{"Metro card", 40.00, entity.CategoryTransportation, 4, nil},
	{"Electricity bill", 96.75, entity.CategoryBills, 9, []string{"monthly"}},
	{"Cinema", 18.00, entity.CategoryEntertainment, 12, nil},
	{"Pharmacy", 12.30, entity.CategoryHealthcare, 20, nil},
	{"Online course", 49.99, entity.CategoryEducation, 35, []string{"learning"}},
	{"Weekend trip", 310.00, entity.CategoryTravel, 48, []string{"holiday"}},
	{"Birthday gift", 45.00, entity.CategoryGifts, 63, nil},
	{"Running shoes", 120.00, entity.CategoryShopping, 80, nil},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	expenses := pginfra.NewExpenseRepository(pool)

	email := "demo@example.com"
	password := "password123"

	u, err := users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		hash, herr := helpers.HashPassword(password)
		if herr != nil {
			logger.Fatalf("failed to hash password: %v", herr)
		}
		u = &entity.User{Name: "Demo User", Email: email, Password: hash, IsVerified: true}
		if err := users.Create(ctx, u); err != nil {
			logger.Fatalf("failed to seed user: %v", err)
		}
	} else if err != nil {
		logger.Fatalf("failed to look up user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", u.ID, email, password)

	totals, err := expenses.Totals(ctx, u.ID, repository.ExpenseFilter{})
	if err != nil {
		logger.Fatalf("failed to count expenses: %v", err)
	}
	if totals.TotalCount > 0 {
		fmt.Printf("user already has %d expenses; skipping\n", totals.TotalCount)
		return
	}

	now := time.Now().UTC()
	for _, s := range samples {
		e := &entity.Expense{
			UserID:   u.ID,
			Title:    s.title,
			Amount:   s.amount,
			Category: s.category,
			Date:     now.AddDate(0, 0, -s.daysAgo),
			Tags:     s.tags,
		}
		if err := expenses.Create(ctx, e); err != nil {
			logger.Fatalf("failed to seed expense %q: %v", s.title, err)
		}
	}
	fmt.Printf("seeded %d expenses\n", len(samples))
}
