package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("request_id", "req-1"); c.Next() })
	r.GET("/ok", func(c *gin.Context) {
		Success(c, http.StatusCreated, gin.H{"id": "1"}, "created", nil)
	})
	r.GET("/msg", func(c *gin.Context) { Message(c, 0, "done") })
	r.GET("/fail", func(c *gin.Context) {
		Error(c, http.StatusBadRequest, "Validation failed", map[string]string{"email": "must be a valid email"})
	})

	tests := []struct {
		path    string
		status  int
		success bool
		message string
		check   func(t *testing.T, body map[string]any)
	}{
		{"/ok", http.StatusCreated, true, "created", func(t *testing.T, body map[string]any) {
			assert.Equal(t, map[string]any{"id": "1"}, body["data"])
			assert.Equal(t, "req-1", body["requestId"])
			assert.NotContains(t, body, "errors")
		}},
		{"/msg", http.StatusOK, true, "done", func(t *testing.T, body map[string]any) {
			assert.NotContains(t, body, "data")
		}},
		{"/fail", http.StatusBadRequest, false, "Validation failed", func(t *testing.T, body map[string]any) {
			assert.Equal(t, map[string]any{"email": "must be a valid email"}, body["errors"])
		}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.status, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.success, body["success"])
			assert.Equal(t, tt.message, body["message"])
			tt.check(t, body)
		})
	}
}
