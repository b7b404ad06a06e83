package application

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/oksasatya/expense-tracker/internal/domain/entity"
)

var csvHeader = []string{"Date", "Title", "Amount", "Category", "Tags", "Notes", "Created At"}

// RenderCSV writes expenses in the given order with a fixed column layout.
func RenderCSV(expenses []entity.Expense) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, e := range expenses {
		rec := []string{
			e.Date.UTC().Format("2006-01-02"),
			e.Title,
			strconv.FormatFloat(e.Amount, 'f', 2, 64),
			string(e.Category),
			strings.Join(e.Tags, ", "),
			e.Notes,
			e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CSVFilename names an export by the day it was produced.
func CSVFilename(at time.Time) string {
	return "expenses_" + at.UTC().Format("2006-01-02") + ".csv"
}
