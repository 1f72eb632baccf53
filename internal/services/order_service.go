package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"bumilestari/internal/checkout"
	"bumilestari/internal/models"
	"bumilestari/internal/repositories"
	"bumilestari/pkg/rabbitmq"

	"github.com/google/uuid"
)

// EventPublisher is the messaging side of order submission. The
// RabbitMQ client satisfies it in production; tests plug in a mock.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// ValidationError carries the per-field messages from a rejected
// submission so the transport layer can render them inline.
type ValidationError struct {
	Fields  map[string]string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SubmitOrderRequest is the input to order submission: what is being
// bought, who is buying, and how they pay.
type SubmitOrderRequest struct {
	Items           []SubmitOrderItem   `json:"items"`
	Customer        models.CustomerData `json:"customer"`
	PaymentMethodID string              `json:"payment_method_id"`
}

// SubmitOrderItem references a product by ID; the authoritative price
// and name are read from the catalog at submission time.
type SubmitOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderService coordinates order submission and admin order queries.
// It is the pluggable submit backend: the storefront only sees
// SubmitOrder going in and an OrderConfirmation coming out, so a real
// payment gateway can replace the local simulation behind it.
type OrderService struct {
	orderRepo    repositories.OrderRepository
	productRepo  repositories.ProductRepository
	publisher    EventPublisher
	shippingCost int
}

// NewOrderService creates a new OrderService. Shipping is a flat policy
// amount, zero in the default configuration. publisher may be nil, in
// which case order events are simply not emitted.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, publisher EventPublisher, shippingCost int) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		publisher:    publisher,
		shippingCost: shippingCost,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// GetOrderByReference retrieves a single order by its customer-facing
// reference token.
func (s *OrderService) GetOrderByReference(reference string) (*models.Order, error) {
	return s.orderRepo.GetByReference(reference)
}

// SubmitOrder runs the full checkout: resolve products, check stock,
// drive the checkout state machine through its submit gate, persist the
// order, decrement stock, and publish an order.created event. A gate
// failure comes back as *ValidationError with the field messages; the
// form state on the caller's side is untouched.
func (s *OrderService) SubmitOrder(req SubmitOrderRequest) (*models.OrderConfirmation, error) {
	if len(req.Items) == 0 {
		return nil, &ValidationError{Message: "order must contain at least one item"}
	}

	items := make([]checkout.Item, 0, len(req.Items))
	for _, reqItem := range req.Items {
		product, err := s.productRepo.GetByID(reqItem.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s not found: %w", reqItem.ProductID, err)
		}
		if reqItem.Quantity < 1 {
			return nil, &ValidationError{Message: fmt.Sprintf("quantity for product %s must be at least 1", product.Name)}
		}
		if product.Stock < reqItem.Quantity {
			return nil, fmt.Errorf("insufficient stock for product %s (requested: %d, available: %d)", product.Name, reqItem.Quantity, product.Stock)
		}
		items = append(items, checkout.Item{Product: *product, Quantity: reqItem.Quantity})
	}

	state := checkout.NewState(items, s.shippingCost)
	state.Customer = req.Customer

	state, err := checkout.SelectPaymentMethod(state, req.PaymentMethodID)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("select a valid payment method: %v", err)}
	}

	totals := checkout.CurrentTotals(state)

	confirmed, err := checkout.Submit(state)
	if err != nil {
		return nil, &ValidationError{
			Fields:  checkout.ValidateCustomer(req.Customer),
			Message: err.Error(),
		}
	}

	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			Price:       item.Product.Price,
		})
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		Reference:       confirmed.Confirmation.Reference,
		CustomerName:    req.Customer.Name,
		CustomerEmail:   req.Customer.Email,
		CustomerPhone:   req.Customer.Phone,
		ShippingAddress: formatAddress(req.Customer.Address),
		Items:           orderItems,
		Subtotal:        totals.Subtotal,
		ShippingCost:    totals.ShippingCost,
		PaymentFee:      totals.PaymentFee,
		Total:           totals.Total,
		PaymentMethodID: req.PaymentMethodID,
		Status:          "pending",
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	// Stock decrement after the order is stored. Failures here are
	// logged only: the order already exists and oversell is corrected
	// by the admin dashboard.
	for _, item := range items {
		product := item.Product
		product.Stock -= item.Quantity
		if updateErr := s.productRepo.Update(&product); updateErr != nil {
			log.Printf("Warning: failed to decrement stock for product %s: %v", product.ID, updateErr)
		}
	}

	s.publishOrderCreated(order)

	return confirmed.Confirmation, nil
}

// UpdateOrderStatus updates the status of an existing order.
func (s *OrderService) UpdateOrderStatus(id string, status string) error {
	validStatuses := map[string]bool{"pending": true, "processing": true, "shipped": true, "delivered": true, "cancelled": true}
	if _, ok := validStatuses[status]; !ok {
		return fmt.Errorf("invalid order status: %s", status)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	return nil
}

// publishOrderCreated emits an order.created event. Fire-and-forget:
// a broker outage must not fail a checkout that is already persisted.
func (s *OrderService) publishOrderCreated(order *models.Order) {
	if s.publisher == nil {
		log.Println("Event publisher is not configured. Skipping order.created event.")
		return
	}

	event := map[string]interface{}{
		"orderID":   order.ID,
		"reference": order.Reference,
		"customer":  order.CustomerName,
		"status":    order.Status,
		"total":     order.Total,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal order event to JSON: %v", err)
		return
	}

	if err := s.publisher.Publish(rabbitmq.OrderExchange, rabbitmq.RoutingKeyOrderCreated, body); err != nil {
		log.Printf("Warning: failed to publish order created event for order %s: %v", order.ID, err)
		return
	}
	log.Printf("Published order created event for order %s", order.ID)
}

func formatAddress(a models.Address) string {
	formatted := fmt.Sprintf("%s, %s, %s %s", a.Street, a.City, a.Province, a.PostalCode)
	if a.Notes != "" {
		formatted += " (" + a.Notes + ")"
	}
	return formatted
}
