package handlers

import (
	"errors"
	"log"
	"strings"

	"bumilestari/internal/checkout"
	"bumilestari/internal/models"
	"bumilestari/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles the checkout flow: payment method listing,
// province listing for the address form, and order submission.
type CheckoutHandler struct {
	orderService *services.OrderService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(orderService *services.OrderService) *CheckoutHandler {
	return &CheckoutHandler{
		orderService: orderService,
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/payment-methods", h.HandleGetPaymentMethods)
	router.Get("/provinces", h.HandleGetProvinces)
	router.Post("/checkout", h.HandleSubmitOrder)
	router.Get("/orders/reference/:reference", h.HandleGetOrderByReference)
}

// HandleGetPaymentMethods returns the fixed payment method catalog,
// fees included, so the picker can show surcharges up front.
func (h *CheckoutHandler) HandleGetPaymentMethods(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"payment_methods": checkout.PaymentMethods()})
}

// HandleGetProvinces returns the fixed province list for the address
// form's select input.
func (h *CheckoutHandler) HandleGetProvinces(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"provinces": models.Provinces()})
}

// HandleSubmitOrder runs the checkout submission. Per-field validation
// failures come back as a 400 with a field-to-message map so they can
// be rendered inline; anything else the customer can fix (bad payment
// method, empty cart, insufficient stock) is also a 400 with a single
// blocking message.
func (h *CheckoutHandler) HandleSubmitOrder(c *fiber.Ctx) error {
	var req services.SubmitOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	confirmation, err := h.orderService.SubmitOrder(req)
	if err != nil {
		log.Printf("Error submitting order: %v", err)

		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			resp := fiber.Map{"message": validationErr.Message}
			if len(validationErr.Fields) > 0 {
				resp["errors"] = validationErr.Fields
			}
			return c.Status(fiber.StatusBadRequest).JSON(resp)
		}
		if strings.Contains(err.Error(), "insufficient stock") || strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Order could not be placed",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not submit order",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(confirmation)
}

// HandleGetOrderByReference lets a customer look their order up with
// the reference shown on the confirmation screen.
func (h *CheckoutHandler) HandleGetOrderByReference(c *fiber.Ctx) error {
	reference := c.Params("reference")
	order, err := h.orderService.GetOrderByReference(reference)
	if err != nil {
		log.Printf("Error getting order by reference %s: %v", reference, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	return c.JSON(order)
}
