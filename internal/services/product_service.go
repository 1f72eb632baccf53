package services

import (
	"fmt"

	"bumilestari/internal/catalog"
	"bumilestari/internal/models"
	"bumilestari/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ProductService handles catalog browsing and the admin product
// management operations.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo:     repo,
		validate: validator.New(),
	}
}

// Browse fetches the catalog and runs the query engine over it,
// returning the requested page of matches. A repository failure
// surfaces as an error so the handler can render the retryable
// "unable to load" state; the engine itself is never fed partial data.
func (s *ProductService) Browse(searchTerm string, criteria catalog.Criteria, page, pageSize int) (catalog.Result, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return catalog.Result{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	return catalog.Query(products, searchTerm, criteria, page, pageSize), nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// Categories returns the category labels for building filter
// affordances.
func (s *ProductService) Categories() ([]string, error) {
	return s.repo.Categories()
}

// CreateProduct validates and creates a new product. Numeric fields
// are checked strictly: a zero or negative price never slips through
// from a bad parse upstream.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := s.validateProduct(product); err != nil {
		return err
	}
	return s.repo.Create(product)
}

// UpdateProduct validates and updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if err := s.validateProduct(product); err != nil {
		return err
	}
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

func (s *ProductService) validateProduct(product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	if product.Price <= 0 {
		return fmt.Errorf("invalid product: price must be a positive amount in rupiah")
	}
	if !validCategory(product.Category) {
		return fmt.Errorf("invalid product: unknown category %s", product.Category)
	}
	return nil
}

func validCategory(category string) bool {
	for _, c := range models.Categories() {
		if c == category {
			return true
		}
	}
	return false
}
