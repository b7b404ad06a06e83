package validation

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,pwd"`
	Kind     string   `json:"kind" binding:"required,sample_kind"`
	Date     string   `json:"date" binding:"omitempty,isodate"`
	Tags     []string `json:"tags" binding:"omitempty,dive,min=1,max=5"`
	Amount   float64  `json:"amount" binding:"gt=0"`
}

func bindJSON(t *testing.T, body string, dst any) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c.ShouldBindJSON(dst)
}

func TestToDetails_FieldErrors(t *testing.T) {
	RegisterEnum("sample_kind", []string{"Food & Dining", "Other"})

	var req sampleRequest
	err := bindJSON(t, `{"email":"nope","password":"123","kind":"Food","date":"yesterday","tags":["ok","toolongtag"],"amount":0}`, &req)
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 6 characters and at most 72 bytes long", details["password"])
	assert.Equal(t, "must be one of: Food & Dining, Other", details["kind"])
	assert.Equal(t, "must be a valid ISO 8601 date", details["date"])
	assert.Equal(t, "must be at most 5 characters long", details["tags[1]"])
	assert.Equal(t, "must be greater than 0", details["amount"])
}

func TestToDetails_Valid(t *testing.T) {
	RegisterEnum("sample_kind", []string{"Food & Dining", "Other"})

	var req sampleRequest
	err := bindJSON(t, `{"email":"a@b.co","password":"secret1","kind":"Food & Dining","date":"2024-01-02","tags":["x"],"amount":1.5}`, &req)
	require.NoError(t, err)
	assert.Nil(t, ToDetails(nil))
}

func TestToDetails_BadJSON(t *testing.T) {
	var req sampleRequest
	err := bindJSON(t, `{"email":`, &req)
	require.Error(t, err)
	assert.Contains(t, ToDetails(err), "payload")

	err = bindJSON(t, `{"amount":"ten"}`, &req)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"amount": "must be a float64"}, ToDetails(err))
}

func TestPasswordLengthCountsBytes(t *testing.T) {
	Init()
	type req struct {
		Password string `json:"password" binding:"required,pwd"`
	}
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "six ascii", password: "abcdef", valid: true},
		{name: "five ascii", password: "abcde"},
		{name: "72 bytes", password: strings.Repeat("a", 72), valid: true},
		{name: "73 bytes", password: strings.Repeat("a", 73)},
		{name: "18 four-byte runes", password: strings.Repeat("\U0001F600", 18), valid: true},
		{name: "30 four-byte runes", password: strings.Repeat("\U0001F600", 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&req{Password: tt.password})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, ToDetails(err), "password")
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in       string
		want     time.Time
		dateOnly bool
		wantErr  bool
	}{
		{in: "2024-01-02", want: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), dateOnly: true},
		{in: "2024-01-02T10:30:00Z", want: time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)},
		{in: "2024-01-02T10:30:00+02:00", want: time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC)},
		{in: "2024-01-02T10:30:00.123Z", want: time.Date(2024, 1, 2, 10, 30, 0, 123000000, time.UTC)},
		{in: "2024-01-02T10:30", want: time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)},
		{in: "02/01/2024", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, dateOnly, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
			assert.Equal(t, tt.dateOnly, dateOnly)
		})
	}
}

func TestInitUsesJSONNames(t *testing.T) {
	Init()
	type q struct {
		Page int `form:"page" binding:"min=1"`
	}
	err := binding.Validator.ValidateStruct(&q{Page: 0})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"page": "must be at least 1"}, ToDetails(err))
}
