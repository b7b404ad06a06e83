package entity

import (
	"math"
	"time"
)

// Category is one of the fixed expense categories.
type Category string

const (
	CategoryFood           Category = "Food & Dining"
	CategoryTransportation Category = "Transportation"
	CategoryShopping       Category = "Shopping"
	CategoryEntertainment  Category = "Entertainment"
	CategoryBills          Category = "Bills & Utilities"
	CategoryHealthcare     Category = "Healthcare"
	CategoryEducation      Category = "Education"
	CategoryTravel         Category = "Travel"
	CategoryGroceries      Category = "Groceries"
	CategoryPersonalCare   Category = "Personal Care"
	CategoryGifts          Category = "Gifts & Donations"
	CategoryBusiness       Category = "Business"
	CategoryOther          Category = "Other"
)

var categories = []Category{
	CategoryFood, CategoryTransportation, CategoryShopping, CategoryEntertainment,
	CategoryBills, CategoryHealthcare, CategoryEducation, CategoryTravel,
	CategoryGroceries, CategoryPersonalCare, CategoryGifts, CategoryBusiness, CategoryOther,
}

// CategoryNames returns the enumerated categories in display order.
func CategoryNames() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

func IsValidCategory(s string) bool {
	for _, c := range categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Expense limits shared by validation tags and services.
const (
	TitleMaxLen = 100
	NotesMaxLen = 500
	TagMaxLen   = 20
)

type Expense struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Category  Category  `json:"category"`
	Date      time.Time `json:"date"`
	Tags      []string  `json:"tags"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RoundAmount rounds to cents, the precision stored by the database.
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}
