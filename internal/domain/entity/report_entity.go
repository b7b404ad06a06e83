package entity

// Totals is an overall aggregate over a filtered expense set.
type Totals struct {
	TotalAmount   float64 `json:"totalAmount"`
	TotalCount    int64   `json:"totalCount"`
	AverageAmount float64 `json:"averageAmount"`
	MinAmount     float64 `json:"minAmount"`
	MaxAmount     float64 `json:"maxAmount"`
}

// GroupTotal is one partition of a grouped aggregation.
// Key is "YYYY-MM", "YYYY-MM-DD", a category name, or "all".
// Average is nil for day buckets.
type GroupTotal struct {
	Key     string   `json:"_id"`
	Total   float64  `json:"total"`
	Count   int64    `json:"count"`
	Average *float64 `json:"average,omitempty"`
}

// CategoryStat is a per-category subtotal.
type CategoryStat struct {
	Category string  `json:"_id"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
	Average  float64 `json:"average"`
}

// MonthTotal is a calendar month bucket.
type MonthTotal struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Total   float64 `json:"total"`
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

// CategoryMonthTotal is a category x month cell.
type CategoryMonthTotal struct {
	Category string  `json:"category"`
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

// SpendingPattern buckets spend by weekday (1=Sunday..7=Saturday) and hour of day.
type SpendingPattern struct {
	DayOfWeek int     `json:"dayOfWeek"`
	Hour      int     `json:"hour"`
	Total     float64 `json:"total"`
	Count     int64   `json:"count"`
}
