package application

import (
	"time"

	"github.com/oksasatya/expense-tracker/internal/domain/apperr"
	"github.com/oksasatya/expense-tracker/internal/domain/repository"
	"github.com/oksasatya/expense-tracker/pkg/validation"
)

// FilterParams are the raw filter values shared by listing, reports and CSV export.
type FilterParams struct {
	Category  string
	StartDate string
	EndDate   string
	Search    string
}

// BuildFilter parses raw params into a repository filter. A bare YYYY-MM-DD
// endDate covers that whole day.
func BuildFilter(p FilterParams) (repository.ExpenseFilter, error) {
	f := repository.ExpenseFilter{Search: p.Search}
	if p.Category != "" && p.Category != "all" {
		f.Category = p.Category
	}

	fields := map[string]string{}
	if p.StartDate != "" {
		t, _, err := validation.ParseDate(p.StartDate)
		if err != nil {
			fields["startDate"] = "must be a valid ISO 8601 date"
		} else {
			f.From = &t
		}
	}
	if p.EndDate != "" {
		t, dateOnly, err := validation.ParseDate(p.EndDate)
		if err != nil {
			fields["endDate"] = "must be a valid ISO 8601 date"
		} else {
			if dateOnly {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			f.To = &t
		}
	}
	if len(fields) > 0 {
		return repository.ExpenseFilter{}, apperr.Validation("Validation failed", fields)
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return repository.ExpenseFilter{}, apperr.Validation("Validation failed",
			map[string]string{"endDate": "must not be before startDate"})
	}
	return f, nil
}
