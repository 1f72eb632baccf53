package repositories

import (
	"bumilestari/internal/models"
)

// ProductRepository defines the interface for product data access.
// GetAll returns the full catalog; filtering, sorting and pagination
// happen in memory in the catalog package.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	Categories() ([]string, error)
}
