package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/expense-tracker/internal/domain/apperr"
)

func TestBuildFilter(t *testing.T) {
	f, err := BuildFilter(FilterParams{Category: "all", StartDate: "2024-01-01", EndDate: "2024-01-31", Search: "coffee"})
	require.NoError(t, err)
	assert.Empty(t, f.Category)
	assert.Equal(t, "coffee", f.Search)
	require.NotNil(t, f.From)
	require.NotNil(t, f.To)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *f.From)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC), *f.To)

	f, err = BuildFilter(FilterParams{Category: "Travel", EndDate: "2024-01-31T10:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, "Travel", f.Category)
	assert.Nil(t, f.From)
	assert.Equal(t, time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC), *f.To)
}

func TestBuildFilter_Invalid(t *testing.T) {
	_, err := BuildFilter(FilterParams{StartDate: "01/02/2024", EndDate: "soon"})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Len(t, e.Fields, 2)

	_, err = BuildFilter(FilterParams{StartDate: "2024-02-01", EndDate: "2024-01-01"})
	e, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "must not be before startDate", e.Fields["endDate"])
}
