package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/expense-tracker/internal/domain/entity"
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "userId":    {"type": "keyword"},
      "title":     {"type": "text"},
      "notes":     {"type": "text"},
      "tags":      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "category":  {"type": "keyword"},
      "amount":    {"type": "double"},
      "date":      {"type": "date"},
      "createdAt": {"type": "date"},
      "updatedAt": {"type": "date"}
    }
  }
}`

// ExpenseIndex mirrors expenses into Elasticsearch for full-text search.
// Postgres stays the source of truth.
type ExpenseIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewExpenseIndex(es *elasticsearch.Client, index string) *ExpenseIndex {
	return &ExpenseIndex{es: es, index: index}
}

func responseError(op string, res *esapi.Response) error {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("elasticsearch %s: %s: %s", op, res.Status(), strings.TrimSpace(string(b)))
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *ExpenseIndex) EnsureIndex(ctx context.Context) error {
	res, err := x.es.Indices.Exists([]string{x.index}, x.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch exists: %w", err)
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = x.es.Indices.Create(x.index,
		x.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		x.es.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return responseError("create index", res)
	}
	return nil
}

func (x *ExpenseIndex) IndexExpense(ctx context.Context, e entity.Expense) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	res, err := x.es.Index(x.index, bytes.NewReader(body),
		x.es.Index.WithDocumentID(e.ID),
		x.es.Index.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

// DeleteExpense removes the document; a missing document is not an error.
func (x *ExpenseIndex) DeleteExpense(ctx context.Context, _ string, id string) error {
	res, err := x.es.Delete(x.index, id, x.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete", res)
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source entity.Expense `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// buildQuery restricts every search to the owner's documents.
func buildQuery(userID, q string, size int) map[string]any {
	must := []any{}
	if q = strings.TrimSpace(q); q != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"title^3", "tags^2", "notes", "category"},
				"fuzziness": "AUTO",
			},
		})
	} else {
		must = append(must, map[string]any{"match_all": map[string]any{}})
	}
	return map[string]any{
		"size": size,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{map[string]any{"term": map[string]any{"userId": userID}}},
				"must":   must,
			},
		},
		"sort": []any{"_score", map[string]any{"date": "desc"}},
	}
}

func (x *ExpenseIndex) SearchExpenses(ctx context.Context, userID, q string, size int) ([]entity.Expense, error) {
	body, err := json.Marshal(buildQuery(userID, q, size))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(ctx),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search", res)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	out := make([]entity.Expense, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		// the term filter already scopes by owner; keep the check anyway
		if h.Source.UserID != userID {
			continue
		}
		out = append(out, h.Source)
	}
	return out, nil
}
