package domain

import (
	"bytes"
	"encoding/json"
)

// FlexString accepts both JSON strings and numbers; the shop API is not consistent about ids and prices.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

type Category struct {
	ID          FlexString `json:"id"`
	ShopID      FlexString `json:"shop_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CreatedAt   string     `json:"created_at,omitempty"`
}

type Product struct {
	ID           FlexString `json:"id"`
	ShopID       FlexString `json:"shop_id,omitempty"`
	CategoryID   FlexString `json:"category_id,omitempty"`
	CategoryName string     `json:"category_name,omitempty"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Price        FlexString `json:"price"`
	Stock        FlexString `json:"stock,omitempty"`
	Image        string     `json:"image,omitempty"`
	CreatedAt    string     `json:"created_at,omitempty"`
}

type Order struct {
	ID            FlexString `json:"id"`
	ShopID        FlexString `json:"shop_id,omitempty"`
	UserID        FlexString `json:"user_id,omitempty"`
	CustomerName  string     `json:"customer_name,omitempty"`
	Total         FlexString `json:"total_amount,omitempty"`
	Status        string     `json:"status,omitempty"`
	PaymentStatus string     `json:"payment_status,omitempty"`
	CreatedAt     string     `json:"created_at,omitempty"`
}

type Blog struct {
	ID        FlexString `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content,omitempty"`
	Author    string     `json:"author,omitempty"`
	Image     string     `json:"image,omitempty"`
	CreatedAt string     `json:"created_at,omitempty"`
}

// DashboardSummary holds the admin landing page counters.
type DashboardSummary struct {
	ShopID     string `json:"shop_id"`
	Products   int    `json:"products"`
	Categories int    `json:"categories"`
	Orders     int    `json:"orders"`
	Blogs      int    `json:"blogs"`
}
