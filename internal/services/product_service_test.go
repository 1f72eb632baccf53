package services_test

import (
	"fmt"
	"testing"

	"bumilestari/internal/catalog"
	"bumilestari/internal/models"
	"bumilestari/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProductRepository) Categories() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func catalogFixture() []models.Product {
	return []models.Product{
		{ID: "prod-1", Name: "Sikat Gigi Bambu", Price: 15000, Category: models.CategoryPerawatanDiri, Rating: 4.8, Stock: 40, Tags: []string{"bambu"}},
		{ID: "prod-2", Name: "Tas Belanja Kanvas", Price: 45000, Category: models.CategoryFashion, Rating: 4.5, Stock: 25, Tags: []string{"kanvas"}},
		{ID: "prod-3", Name: "Sedotan Stainless", Price: 25000, Category: models.CategoryPeralatanRumah, Rating: 4.7, Stock: 60, Tags: []string{"reusable"}},
	}
}

func TestProductService_Browse(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("GetAll").Return(catalogFixture(), nil).Once()

	res, err := service.Browse("bambu", catalog.DefaultCriteria(), 1, 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, res.TotalMatches)
	assert.Equal(t, "prod-1", res.PageItems[0].ID)
	mockRepo.AssertExpectations(t)
}

func TestProductService_Browse_RepoFailure(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("GetAll").Return(nil, fmt.Errorf("database unreachable")).Once()

	_, err := service.Browse("", catalog.DefaultCriteria(), 1, 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load catalog")
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expected := &models.Product{ID: "prod-1", Name: "Sikat Gigi Bambu", Price: 15000, Category: models.CategoryPerawatanDiri, Stock: 40}

	mockRepo.On("GetByID", "prod-1").Return(expected, nil).Once()
	product, err := service.GetProductByID("prod-1")
	assert.NoError(t, err)
	assert.Equal(t, expected, product)
	mockRepo.AssertExpectations(t)

	mockRepo.On("GetByID", "prod-99").Return(nil, fmt.Errorf("product with ID prod-99 not found")).Once()
	product, err = service.GetProductByID("prod-99")
	assert.Error(t, err)
	assert.Nil(t, product)
	assert.Contains(t, err.Error(), "not found")
	mockRepo.AssertExpectations(t)
}

func TestProductService_Categories(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("Categories").Return(models.Categories(), nil).Once()

	categories, err := service.Categories()
	assert.NoError(t, err)
	assert.Equal(t, models.Categories(), categories)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	newProduct := &models.Product{Name: "Kompos Organik", Price: 30000, Category: models.CategoryKebun, Stock: 20}

	mockRepo.On("Create", newProduct).Return(nil).Once()
	err := service.CreateProduct(newProduct)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	mockRepo.On("Create", newProduct).Return(fmt.Errorf("database error")).Once()
	err = service.CreateProduct(newProduct)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)
}

// A price that failed to parse upstream arrives here as 0 and must be
// rejected, not stored.
func TestProductService_CreateProduct_RejectsZeroPrice(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	err := service.CreateProduct(&models.Product{Name: "Produk Gratis", Price: 0, Category: models.CategoryKebun, Stock: 5})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "price")
	mockRepo.AssertNotCalled(t, "Create")
}

func TestProductService_CreateProduct_RejectsUnknownCategory(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	err := service.CreateProduct(&models.Product{Name: "Produk Aneh", Price: 10000, Category: "misc", Stock: 5})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
	mockRepo.AssertNotCalled(t, "Create")
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	updated := &models.Product{ID: "prod-1", Name: "Sikat Gigi Bambu Premium", Price: 18000, Category: models.CategoryPerawatanDiri, Stock: 35}

	mockRepo.On("Update", updated).Return(nil).Once()
	err := service.UpdateProduct(updated)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	missing := &models.Product{ID: "prod-99", Name: "Tidak Ada", Price: 1000, Category: models.CategoryKebun, Stock: 1}
	mockRepo.On("Update", missing).Return(fmt.Errorf("product with ID prod-99 not found for update")).Once()
	err = service.UpdateProduct(missing)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found for update")
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	mockRepo.On("Delete", "prod-1").Return(nil).Once()
	err := service.DeleteProduct("prod-1")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	mockRepo.On("Delete", "prod-99").Return(fmt.Errorf("product with ID prod-99 not found for deletion")).Once()
	err = service.DeleteProduct("prod-99")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found for deletion")
	mockRepo.AssertExpectations(t)
}
