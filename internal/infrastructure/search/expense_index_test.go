package search

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/expense-tracker/internal/domain/entity"
)

type recorded struct {
	method string
	path   string
	body   string
}

func newTestIndex(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*ExpenseIndex, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, body: string(b)})
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewExpenseIndex(es, "expenses"), &calls
}

func TestIndexExpense(t *testing.T) {
	x, calls := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	err := x.IndexExpense(t.Context(), entity.Expense{ID: "e1", UserID: "u1", Title: "Lunch", Amount: 12.5, Category: entity.CategoryFood})
	require.NoError(t, err)
	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodPut, c.method)
	assert.Equal(t, "/expenses/_doc/e1", c.path)
	assert.Contains(t, c.body, `"title":"Lunch"`)
}

func TestDeleteExpense_MissingIsOK(t *testing.T) {
	x, _ := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})
	assert.NoError(t, x.DeleteExpense(t.Context(), "u1", "e1"))
}

func TestSearchExpenses(t *testing.T) {
	x, calls := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[
			{"_source":{"id":"e1","userId":"u1","title":"Taxi","amount":20,"category":"Transportation","tags":[]}},
			{"_source":{"id":"e9","userId":"u2","title":"Taxi","amount":5,"category":"Transportation","tags":[]}}
		]}}`))
	})

	got, err := x.SearchExpenses(t.Context(), "u1", "taxi", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)

	require.Len(t, *calls, 1)
	assert.True(t, strings.HasSuffix((*calls)[0].path, "/expenses/_search"))

	var q map[string]any
	require.NoError(t, json.Unmarshal([]byte((*calls)[0].body), &q))
	filter := q["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	assert.Equal(t, map[string]any{"term": map[string]any{"userId": "u1"}}, filter[0])
}

func TestSearchExpenses_Error(t *testing.T) {
	x, _ := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})
	_, err := x.SearchExpenses(t.Context(), "u1", "x", 10)
	assert.Error(t, err)
}

func TestBuildQuery_EmptyMatchesAll(t *testing.T) {
	q := buildQuery("u1", "  ", 5)
	must := q["query"].(map[string]any)["bool"].(map[string]any)["must"].([]any)
	assert.Equal(t, map[string]any{"match_all": map[string]any{}}, must[0])
	assert.Equal(t, 5, q["size"])
}
