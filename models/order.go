package models

const OrderStatusPending = "pending"

type OrderItem struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	FinalPrice float64 `json:"final_price"`
}

type Order struct {
	ID            string      `json:"id"`
	Date          string      `json:"date"`
	CustomerEmail string      `json:"customer_email"`
	Items         []OrderItem `json:"items"`
	Total         float64     `json:"total"`
	Status        string      `json:"status"`
}
