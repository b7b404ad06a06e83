package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/expense-tracker/internal/domain/entity"
	"github.com/oksasatya/expense-tracker/internal/domain/repository"
)

const expenseColumns = `id::text, user_id::text, title, amount, category, date, tags, notes, created_at, updated_at`

type ExpenseRepository struct {
	db DBTX
}

func NewExpenseRepository(db DBTX) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func scanExpense(row pgx.Row) (*entity.Expense, error) {
	e := &entity.Expense{}
	var category string
	if err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Amount, &category, &e.Date,
		&e.Tags, &e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Category = entity.Category(category)
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e, nil
}

func collectExpenses(rows pgx.Rows) ([]entity.Expense, error) {
	defer rows.Close()
	out := make([]entity.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (r *ExpenseRepository) Create(ctx context.Context, e *entity.Expense) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO expenses (user_id, title, amount, category, date, tags, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text, created_at, updated_at
	`, e.UserID, e.Title, e.Amount, string(e.Category), e.Date, tagsOrEmpty(e.Tags), e.Notes)
	return row.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *ExpenseRepository) GetByID(ctx context.Context, userID, id string) (*entity.Expense, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	e, err := scanExpense(r.db.QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return e, err
}

func (r *ExpenseRepository) Update(ctx context.Context, e *entity.Expense) error {
	if !validID(e.ID) {
		return repository.ErrNotFound
	}
	e.UpdatedAt = time.Now().UTC()
	res, err := r.db.Exec(ctx, `
		UPDATE expenses
		SET title = $1, amount = $2, category = $3, date = $4, tags = $5, notes = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9
	`, e.Title, e.Amount, string(e.Category), e.Date, tagsOrEmpty(e.Tags), e.Notes, e.UpdatedAt, e.ID, e.UserID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ExpenseRepository) List(ctx context.Context, userID string, f repository.ExpenseFilter, s repository.Sort, p repository.Page) ([]entity.Expense, int64, error) {
	var q queryArgs
	where := expenseWhere(&q, userID, f)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM expenses `+where, q.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	limit := q.add(p.Limit)
	offset := q.add(p.Offset)
	rows, err := r.db.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses `+where+` `+expenseOrder(s)+` LIMIT `+limit+` OFFSET `+offset,
		q.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	items, err := collectExpenses(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("scan expenses: %w", err)
	}
	return items, total, nil
}

func (r *ExpenseRepository) ListAll(ctx context.Context, userID string, f repository.ExpenseFilter) ([]entity.Expense, error) {
	var q queryArgs
	where := expenseWhere(&q, userID, f)
	rows, err := r.db.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses `+where+` `+expenseOrder(repository.Sort{Field: repository.SortByDate, Desc: true}),
		q.args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return collectExpenses(rows)
}

func (r *ExpenseRepository) Recent(ctx context.Context, userID string, limit int) ([]entity.Expense, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1 ORDER BY date DESC, id DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent expenses: %w", err)
	}
	return collectExpenses(rows)
}

func (r *ExpenseRepository) Totals(ctx context.Context, userID string, f repository.ExpenseFilter) (entity.Totals, error) {
	var q queryArgs
	where := expenseWhere(&q, userID, f)
	var t entity.Totals
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0), COUNT(*), COALESCE(AVG(amount), 0),
		       COALESCE(MIN(amount), 0), COALESCE(MAX(amount), 0)
		FROM expenses `+where, q.args...).
		Scan(&t.TotalAmount, &t.TotalCount, &t.AverageAmount, &t.MinAmount, &t.MaxAmount)
	if err != nil {
		return entity.Totals{}, fmt.Errorf("expense totals: %w", err)
	}
	return t, nil
}

func (r *ExpenseRepository) CategoryTotals(ctx context.Context, userID string, f repository.ExpenseFilter) ([]entity.CategoryStat, error) {
	var q queryArgs
	where := expenseWhere(&q, userID, f)
	rows, err := r.db.Query(ctx, `
		SELECT category, SUM(amount), COUNT(*), AVG(amount)
		FROM expenses `+where+`
		GROUP BY category
		ORDER BY SUM(amount) DESC, category`, q.args...)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	out := make([]entity.CategoryStat, 0)
	for rows.Next() {
		var s entity.CategoryStat
		if err := rows.Scan(&s.Category, &s.Total, &s.Count, &s.Average); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ExpenseRepository) GroupTotals(ctx context.Context, userID string, f repository.ExpenseFilter, g repository.GroupBy) ([]entity.GroupTotal, error) {
	var q queryArgs
	where := expenseWhere(&q, userID, f)
	key := groupKeyExpr(g)
	rows, err := r.db.Query(ctx, `
		SELECT `+key+` AS key, SUM(amount), COUNT(*), AVG(amount)
		FROM expenses `+where+`
		GROUP BY 1
		ORDER BY SUM(amount) DESC, 1`, q.args...)
	if err != nil {
		return nil, fmt.Errorf("group totals: %w", err)
	}
	defer rows.Close()

	out := make([]entity.GroupTotal, 0)
	for rows.Next() {
		var (
			t   entity.GroupTotal
			avg float64
		)
		if err := rows.Scan(&t.Key, &t.Total, &t.Count, &avg); err != nil {
			return nil, err
		}
		if g != repository.GroupByDay {
			t.Average = &avg
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *ExpenseRepository) MonthTotals(ctx context.Context, userID string, f repository.ExpenseFilter) ([]entity.MonthTotal, error) {
	var q queryArgs
	where := expenseWhere(&q, userID, f)
	rows, err := r.db.Query(ctx, `
		SELECT EXTRACT(YEAR FROM date AT TIME ZONE 'UTC')::int AS y,
		       EXTRACT(MONTH FROM date AT TIME ZONE 'UTC')::int AS m,
		       SUM(amount), COUNT(*), AVG(amount)
		FROM expenses `+where+`
		GROUP BY y, m
		ORDER BY y, m`, q.args...)
	if err != nil {
		return nil, fmt.Errorf("month totals: %w", err)
	}
	defer rows.Close()

	out := make([]entity.MonthTotal, 0)
	for rows.Next() {
		var m entity.MonthTotal
		if err := rows.Scan(&m.Year, &m.Month, &m.Total, &m.Count, &m.Average); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ExpenseRepository) CategoryMonthTotals(ctx context.Context, userID string, f repository.ExpenseFilter) ([]entity.CategoryMonthTotal, error) {
	var q queryArgs
	where := expenseWhere(&q, userID, f)
	rows, err := r.db.Query(ctx, `
		SELECT category,
		       EXTRACT(YEAR FROM date AT TIME ZONE 'UTC')::int AS y,
		       EXTRACT(MONTH FROM date AT TIME ZONE 'UTC')::int AS m,
		       SUM(amount), COUNT(*)
		FROM expenses `+where+`
		GROUP BY category, y, m
		ORDER BY y, m, SUM(amount) DESC`, q.args...)
	if err != nil {
		return nil, fmt.Errorf("category month totals: %w", err)
	}
	defer rows.Close()

	out := make([]entity.CategoryMonthTotal, 0)
	for rows.Next() {
		var c entity.CategoryMonthTotal
		if err := rows.Scan(&c.Category, &c.Year, &c.Month, &c.Total, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ExpenseRepository) SpendingPatterns(ctx context.Context, userID string, f repository.ExpenseFilter) ([]entity.SpendingPattern, error) {
	var q queryArgs
	where := expenseWhere(&q, userID, f)
	rows, err := r.db.Query(ctx, `
		SELECT EXTRACT(DOW FROM date AT TIME ZONE 'UTC')::int + 1 AS dow,
		       EXTRACT(HOUR FROM date AT TIME ZONE 'UTC')::int AS hr,
		       SUM(amount), COUNT(*)
		FROM expenses `+where+`
		GROUP BY dow, hr
		ORDER BY dow, hr`, q.args...)
	if err != nil {
		return nil, fmt.Errorf("spending patterns: %w", err)
	}
	defer rows.Close()

	out := make([]entity.SpendingPattern, 0)
	for rows.Next() {
		var p entity.SpendingPattern
		if err := rows.Scan(&p.DayOfWeek, &p.Hour, &p.Total, &p.Count); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ repository.ExpenseRepository = (*ExpenseRepository)(nil)
