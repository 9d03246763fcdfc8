package market

import "time"

// Product mirrors the products table plus the seller's username when a
// query joins it in.
type Product struct {
	ID             string    `json:"id"`
	SellerID       string    `json:"seller_id"`
	SellerUsername string    `json:"seller_username,omitempty"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	Category       string    `json:"category"`
	Condition      string    `json:"condition"`
	ImageURL       string    `json:"image_url,omitempty"`
	IsAvailable    bool      `json:"is_available"`
	ViewsCount     int       `json:"views_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Categories and Conditions are the allowed values, mirrored by CHECK
// constraints on the products table.
var Categories = []string{"electronics", "books", "clothing", "furniture", "sports", "other"}

var Conditions = []string{"new", "like_new", "good", "fair"}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

func ValidCondition(c string) bool {
	for _, v := range Conditions {
		if v == c {
			return true
		}
	}
	return false
}
