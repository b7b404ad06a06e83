package postgres

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/oksasatya/expense-tracker/internal/domain/repository"
)

// validID reports whether id can be compared against a UUID column. Malformed
// ids are treated as missing rows instead of database errors.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// queryArgs accumulates positional parameters for a single statement.
type queryArgs struct {
	args []any
}

// add appends v and returns its placeholder.
func (q *queryArgs) add(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

// expenseWhere builds the WHERE clause shared by every expense read. The owner
// condition is always first.
func expenseWhere(q *queryArgs, userID string, f repository.ExpenseFilter) string {
	conds := []string{"user_id = " + q.add(userID)}
	if f.Category != "" && f.Category != "all" {
		conds = append(conds, "category = "+q.add(f.Category))
	}
	if f.From != nil {
		conds = append(conds, "date >= "+q.add(*f.From))
	}
	if f.To != nil {
		conds = append(conds, "date <= "+q.add(*f.To))
	}
	if f.Before != nil {
		conds = append(conds, "date < "+q.add(*f.Before))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := q.add("%" + escapeLike(s) + "%")
		conds = append(conds, "(title ILIKE "+p+" OR notes ILIKE "+p+
			" OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE "+p+"))")
	}
	return "WHERE " + strings.Join(conds, " AND ")
}

// escapeLike makes user input match literally under the default LIKE escape (\).
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

var sortColumns = map[repository.SortField]string{
	repository.SortByDate:      "date",
	repository.SortByAmount:    "amount",
	repository.SortByTitle:     "title",
	repository.SortByCategory:  "category",
	repository.SortByCreatedAt: "created_at",
}

// expenseOrder maps a whitelisted sort onto SQL; unknown fields sort by date.
func expenseOrder(s repository.Sort) string {
	col, ok := sortColumns[s.Field]
	if !ok {
		col = "date"
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return "ORDER BY " + col + " " + dir + ", id " + dir
}

// groupKeyExpr is the SQL partition key for a grouped aggregation.
func groupKeyExpr(g repository.GroupBy) string {
	switch g {
	case repository.GroupByMonth:
		return "to_char(date AT TIME ZONE 'UTC', 'YYYY-MM')"
	case repository.GroupByDay:
		return "to_char(date AT TIME ZONE 'UTC', 'YYYY-MM-DD')"
	case repository.GroupByCategory:
		return "category"
	default:
		return "'all'"
	}
}
