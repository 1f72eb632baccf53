// Package checkout implements the order form's state machine: customer
// data entry with per-field validation, payment method selection, price
// breakdown, and the guarded submit transition. State values are passed
// through pure reducer-style functions so the whole flow is testable
// without an HTTP layer.
package checkout

import (
	"fmt"
	"time"

	"bumilestari/internal/models"

	"github.com/google/uuid"
)

// Status of a checkout session. Confirmed is terminal.
type Status string

const (
	StatusEditing   Status = "editing"
	StatusConfirmed Status = "confirmed"
)

// CODSurcharge is the flat fee added when paying cash on delivery, in
// rupiah. Every other payment method carries no fee.
const CODSurcharge = 5000

// PaymentMethods returns the fixed catalog of ways to pay.
func PaymentMethods() []models.PaymentMethod {
	return []models.PaymentMethod{
		{ID: "bca-transfer", Name: "Transfer Bank BCA", Type: models.PaymentBankTransfer, Fee: 0},
		{ID: "mandiri-transfer", Name: "Transfer Bank Mandiri", Type: models.PaymentBankTransfer, Fee: 0},
		{ID: "gopay", Name: "GoPay", Type: models.PaymentEWallet, Fee: 0},
		{ID: "ovo", Name: "OVO", Type: models.PaymentEWallet, Fee: 0},
		{ID: "dana", Name: "DANA", Type: models.PaymentEWallet, Fee: 0},
		{ID: "credit-card", Name: "Kartu Kredit/Debit", Type: models.PaymentCard, Fee: 0},
		{ID: "cod", Name: "Bayar di Tempat (COD)", Type: models.PaymentCashOnDelivery, Fee: CODSurcharge},
	}
}

// PaymentMethodByID looks a method up in the catalog.
func PaymentMethodByID(id string) (*models.PaymentMethod, error) {
	for _, m := range PaymentMethods() {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("payment method %s not found", id)
}

// Item is one checkout line: the product being bought plus quantity.
type Item struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// State is a checkout session. Values are treated as immutable: every
// transition returns a new State rather than mutating the receiver.
type State struct {
	Items         []Item
	Customer      models.CustomerData
	Errors        map[string]string
	PaymentMethod *models.PaymentMethod
	ShippingCost  int
	Status        Status
	Confirmation  *models.OrderConfirmation
}

// NewState opens a checkout session for the given items. Fields start
// untouched: no validation errors are reported until a field changes or
// submission is attempted.
func NewState(items []Item, shippingCost int) State {
	return State{
		Items:        items,
		Errors:       map[string]string{},
		ShippingCost: shippingCost,
		Status:       StatusEditing,
	}
}

// ApplyFieldChange sets one form field to the given raw value and
// re-validates just that field. A field that becomes valid has its
// error cleared; other fields are left alone.
func ApplyFieldChange(s State, field, value string) State {
	next := s
	next.Customer = setCustomerField(s.Customer, field, value)

	next.Errors = cloneErrors(s.Errors)
	if msg := ValidateField(field, value); msg != "" {
		next.Errors[field] = msg
	} else {
		delete(next.Errors, field)
	}
	return next
}

// SelectPaymentMethod picks a method from the catalog by ID. An unknown
// ID leaves the state unchanged and returns the lookup error.
func SelectPaymentMethod(s State, id string) (State, error) {
	method, err := PaymentMethodByID(id)
	if err != nil {
		return s, err
	}
	next := s
	next.PaymentMethod = method
	return next, nil
}

// SetQuantity adjusts the quantity of the item at index i, clamped to
// [1, stock]. Out-of-range indexes are ignored.
func SetQuantity(s State, i, quantity int) State {
	if i < 0 || i >= len(s.Items) {
		return s
	}
	if quantity < 1 {
		quantity = 1
	}
	if stock := s.Items[i].Product.Stock; quantity > stock {
		quantity = stock
	}
	next := s
	next.Items = make([]Item, len(s.Items))
	copy(next.Items, s.Items)
	next.Items[i].Quantity = quantity
	return next
}

// Totals is the price breakdown shown on the order summary.
type Totals struct {
	Subtotal     int `json:"subtotal"`
	ShippingCost int `json:"shipping_cost"`
	PaymentFee   int `json:"payment_fee"`
	Total        int `json:"total"`
}

// ComputeTotals sums the line items and adds shipping and the payment
// method's flat fee.
func ComputeTotals(items []Item, shippingCost, paymentFee int) Totals {
	subtotal := 0
	for _, it := range items {
		subtotal += it.Product.Price * it.Quantity
	}
	return Totals{
		Subtotal:     subtotal,
		ShippingCost: shippingCost,
		PaymentFee:   paymentFee,
		Total:        subtotal + shippingCost + paymentFee,
	}
}

// CurrentTotals computes the breakdown for the session's items and
// selected payment method (fee 0 while none is selected).
func CurrentTotals(s State) Totals {
	fee := 0
	if s.PaymentMethod != nil {
		fee = s.PaymentMethod.Fee
	}
	return ComputeTotals(s.Items, s.ShippingCost, fee)
}

// CanSubmit reports whether the submit gate is open: every required
// field valid, a payment method selected, and at least one item.
func CanSubmit(s State) bool {
	if s.Status != StatusEditing {
		return false
	}
	if len(s.Items) == 0 || s.PaymentMethod == nil {
		return false
	}
	return len(ValidateCustomer(s.Customer)) == 0
}

// Submit attempts the Editing -> Confirmed transition. When the gate is
// closed the input state is returned unchanged, with the full set of
// field errors surfaced, and a blocking error. On success the returned
// state is terminal: it carries the confirmation and the order data is
// discarded.
func Submit(s State) (State, error) {
	if s.Status != StatusEditing {
		return s, fmt.Errorf("order has already been submitted")
	}

	fieldErrors := ValidateCustomer(s.Customer)
	if len(fieldErrors) > 0 || len(s.Items) == 0 || s.PaymentMethod == nil {
		blocked := s
		blocked.Errors = fieldErrors
		return blocked, fmt.Errorf("order cannot be submitted: complete the form, pick a payment method and add at least one item")
	}

	totals := CurrentTotals(s)
	confirmed := State{
		Status: StatusConfirmed,
		Errors: map[string]string{},
		Confirmation: &models.OrderConfirmation{
			Reference:    NewOrderReference(time.Now()),
			CustomerName: s.Customer.Name,
			Total:        totals.Total,
		},
	}
	return confirmed, nil
}

// NewOrderReference builds the opaque order token shown to the
// customer. Timestamp plus a short random suffix; readable, roughly
// sortable, not cryptographic.
func NewOrderReference(now time.Time) string {
	return fmt.Sprintf("BL-%s-%s", now.Format("20060102150405"), uuid.New().String()[:8])
}

func setCustomerField(c models.CustomerData, field, value string) models.CustomerData {
	switch field {
	case FieldName:
		c.Name = value
	case FieldEmail:
		c.Email = value
	case FieldPhone:
		c.Phone = value
	case FieldStreet:
		c.Address.Street = value
	case FieldCity:
		c.Address.City = value
	case FieldProvince:
		c.Address.Province = value
	case FieldPostalCode:
		c.Address.PostalCode = value
	case FieldNotes:
		c.Address.Notes = value
	}
	return c
}

func cloneErrors(errors map[string]string) map[string]string {
	cloned := make(map[string]string, len(errors))
	for k, v := range errors {
		cloned[k] = v
	}
	return cloned
}
