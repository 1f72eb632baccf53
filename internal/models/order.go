package models

import "time"

// PaymentMethodType classifies how a payment method settles.
type PaymentMethodType string

const (
	PaymentBankTransfer   PaymentMethodType = "bank-transfer"
	PaymentEWallet        PaymentMethodType = "e-wallet"
	PaymentCashOnDelivery PaymentMethodType = "cash-on-delivery"
	PaymentCard           PaymentMethodType = "card"
)

// PaymentMethod is a selectable way to pay. Fee is a flat surcharge in
// rupiah, zero for most methods.
type PaymentMethod struct {
	ID   string            `json:"id"`
	Name string            `json:"name"`
	Type PaymentMethodType `json:"type"`
	Fee  int               `json:"fee"`
}

// OrderItem represents a single item within an order.
type OrderItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       int    `json:"price"` // Unit price at the time of order
}

// Order represents a submitted customer order.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Reference       string      `json:"reference" gorm:"uniqueIndex;type:varchar(40)"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	ShippingAddress string      `json:"shipping_address"`
	Items           []OrderItem `json:"items" gorm:"serializer:json"`
	Subtotal        int         `json:"subtotal"`
	ShippingCost    int         `json:"shipping_cost"`
	PaymentFee      int         `json:"payment_fee"`
	Total           int         `json:"total"`
	PaymentMethodID string      `json:"payment_method_id"`
	Status          string      `json:"status"` // e.g., "pending", "processing", "shipped", "delivered", "cancelled"
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderConfirmation is what the customer sees after a successful
// submission. The reference is an opaque, timestamp-derived token.
type OrderConfirmation struct {
	Reference    string `json:"reference"`
	CustomerName string `json:"customer_name"`
	Total        int    `json:"total"`
}
