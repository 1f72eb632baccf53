package repositories

import (
	"bumilestari/internal/models"
)

// OrderRepository defines the interface for order data access.
// Orders are never deleted; cancellation goes through UpdateStatus.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByReference(reference string) (*models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id string, status string) error
}
