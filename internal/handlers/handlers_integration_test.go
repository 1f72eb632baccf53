package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"bumilestari/internal/catalog"
	"bumilestari/internal/handlers"
	"bumilestari/internal/middleware"
	"bumilestari/internal/models"
	"bumilestari/internal/repositories"
	"bumilestari/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp sets up a Fiber app for testing with in-memory SQLite and
// all handlers/services wired the same way main does.
func setupApp() (*fiber.App, *services.AuthService, error) {
	// Configure Viper for testing
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// A uniquely named shared-cache in-memory database: each test gets a
	// fresh schema while GORM's connection pool still sees the same data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	// Auto-migrate models
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.User{}); err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	// Initialize Repositories
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// Initialize Services. No event publisher and free shipping.
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, nil, 0)
	authService := services.NewAuthService(userRepo, jwtSecret)

	// Initialize Handlers
	productHandler := handlers.NewProductHandler(productService)
	checkoutHandler := handlers.NewCheckoutHandler(orderService)
	orderHandler := handlers.NewOrderHandler(orderService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()

	apiV1 := app.Group("/api/v1")

	// Public storefront routes
	productHandler.RegisterRoutes(apiV1)
	checkoutHandler.RegisterRoutes(apiV1)
	authHandler.RegisterRoutes(apiV1)

	// Admin routes behind the role gate
	adminRoutes := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired())
	productHandler.RegisterAdminRoutes(adminRoutes)
	orderHandler.RegisterRoutes(adminRoutes)

	seedProductsForTest(productRepo)
	seedAdminForTest(userRepo)

	return app, authService, nil
}

// seedProductsForTest populates the product repository for tests.
func seedProductsForTest(repo repositories.ProductRepository) {
	products := []models.Product{
		{ID: "prod-001", Name: "Sikat Gigi Bambu", Description: "Sikat gigi dari bambu alami", Price: 15000, Category: models.CategoryPerawatanDiri, Rating: 4.8, Stock: 40, Seller: "Hijau Daily", Tags: []string{"bambu", "zero-waste"}},
		{ID: "prod-002", Name: "Tas Belanja Kanvas", Description: "Tas belanja kanvas tebal", Price: 45000, Category: models.CategoryFashion, Rating: 4.5, Stock: 25, Seller: "EcoStyle", Tags: []string{"kanvas", "reusable"}},
		{ID: "prod-003", Name: "Sedotan Stainless Set", Description: "Set sedotan stainless dengan sikat pembersih", Price: 25000, Category: models.CategoryPeralatanRumah, Rating: 4.7, Stock: 60, Seller: "Hijau Daily", Tags: []string{"stainless", "reusable"}},
	}
	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Failed to seed product %s: %v", products[i].Name, err)
		}
	}
}

// seedAdminForTest provisions an admin account directly in the user
// store; self-registration only ever yields customers.
func seedAdminForTest(repo repositories.UserRepository) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("adminpassword"), bcrypt.DefaultCost)
	admin := &models.User{
		ID:       uuid.New().String(),
		Username: "admin",
		Email:    "admin@bumilestari.id",
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	if err := repo.Create(admin); err != nil {
		log.Printf("Failed to seed admin user: %v", err)
	}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func loginAs(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	jsonBody, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	resp.Body.Close()
	assert.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, authService, err := setupApp()
	assert.NoError(t, err)

	// Test Registration
	userToRegister := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}
	jsonBody, _ := json.Marshal(userToRegister)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Registering the same username again conflicts
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Login; the token must carry the customer role claim
	token := loginAs(t, app, "testuser", "password123")
	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "testuser", claims["username"])
	assert.Equal(t, models.RoleCustomer, claims["role"])
}

func TestBrowseProducts(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	// The marketplace listing is public.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var result catalog.Result
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 3, result.TotalMatches)
	resp.Body.Close()

	// Search narrows by name/description/tags.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products?search=bambu", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.TotalMatches)
	assert.Equal(t, "Sikat Gigi Bambu", result.PageItems[0].Name)
	resp.Body.Close()

	// Filters and sort via query params.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products?min_price=20000&max_price=50000&sort=price-asc", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.TotalMatches)
	assert.Equal(t, "prod-003", result.PageItems[0].ID)
	assert.Equal(t, "prod-002", result.PageItems[1].ID)
	resp.Body.Close()

	// Zero matches is a normal 200, not an error.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products?search=tidakada", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Zero(t, result.TotalMatches)
	assert.Empty(t, result.PageItems)
	resp.Body.Close()
}

func TestGetProductAndCategories(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/prod-001", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var product models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&product))
	assert.Equal(t, "Sikat Gigi Bambu", product.Name)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/prod-404", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var categoriesResp map[string][]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&categoriesResp))
	assert.Equal(t, models.Categories(), categoriesResp["categories"])
	resp.Body.Close()
}

func TestCheckoutFlow(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	// Payment methods for the picker; COD carries its surcharge.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payment-methods", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var methodsResp map[string][]models.PaymentMethod
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&methodsResp))
	methods := methodsResp["payment_methods"]
	assert.NotEmpty(t, methods)
	var codFee int
	for _, m := range methods {
		if m.Type == models.PaymentCashOnDelivery {
			codFee = m.Fee
		}
	}
	assert.Equal(t, 5000, codFee)
	resp.Body.Close()

	// Submit a valid order.
	checkoutBody := map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": "prod-001", "quantity": 2},
		},
		"customer": map[string]interface{}{
			"name":  "Budi Santoso",
			"email": "budi@example.com",
			"phone": "081234567890",
			"address": map[string]string{
				"street":      "Jl. Merdeka No. 17",
				"city":        "Bandung",
				"province":    "Jawa Barat",
				"postal_code": "40115",
			},
		},
		"payment_method_id": "cod",
	}
	jsonBody, _ := json.Marshal(checkoutBody)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var confirmation models.OrderConfirmation
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&confirmation))
	assert.Equal(t, "Budi Santoso", confirmation.CustomerName)
	// 2 x 15000 + free shipping + 5000 COD surcharge
	assert.Equal(t, 35000, confirmation.Total)
	assert.NotEmpty(t, confirmation.Reference)
	resp.Body.Close()

	// The customer can look the order up with the reference.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders/reference/"+confirmation.Reference, nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var order models.Order
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
	assert.Equal(t, 30000, order.Subtotal)
	assert.Equal(t, 5000, order.PaymentFee)
	assert.Equal(t, "pending", order.Status)
	resp.Body.Close()

	// Stock was decremented by the purchase.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/prod-001", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	var product models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&product))
	assert.Equal(t, 38, product.Stock)
	resp.Body.Close()
}

func TestCheckoutValidationErrors(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	checkoutBody := map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": "prod-001", "quantity": 1},
		},
		"customer": map[string]interface{}{
			"name":  "B",
			"email": "not-an-email",
			"phone": "123",
			"address": map[string]string{
				"street":      "Jl. X",
				"city":        "",
				"province":    "Atlantis",
				"postal_code": "12",
			},
		},
		"payment_method_id": "gopay",
	}
	jsonBody, _ := json.Marshal(checkoutBody)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.NotEmpty(t, errResp.Message)
	assert.Contains(t, errResp.Errors, "name")
	assert.Contains(t, errResp.Errors, "email")
	assert.Contains(t, errResp.Errors, "phone")
	assert.Contains(t, errResp.Errors, "address.street")
	assert.Contains(t, errResp.Errors, "address.city")
	assert.Contains(t, errResp.Errors, "address.province")
	assert.Contains(t, errResp.Errors, "address.postalCode")
	resp.Body.Close()
}

func TestAdminProductManagement(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	token := loginAs(t, app, "admin", "adminpassword")

	// Create
	newProduct := map[string]interface{}{
		"name":        "Lilin Aromaterapi Kedelai",
		"description": "Lilin dari wax kedelai dengan minyak esensial",
		"price":       65000,
		"category":    models.CategoryPeralatanRumah,
		"stock":       12,
		"seller":      "Lebah Lokal",
	}
	jsonBody, _ := json.Marshal(newProduct)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	resp.Body.Close()

	// A zero price is rejected, not defaulted.
	badProduct := map[string]interface{}{
		"name":     "Produk Gratisan",
		"price":    0,
		"category": models.CategoryKebun,
		"stock":    5,
	}
	jsonBody, _ = json.Marshal(badProduct)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Update
	updatedData := map[string]interface{}{
		"name":        "Lilin Aromaterapi Kedelai Besar",
		"description": "Ukuran 250g",
		"price":       95000,
		"category":    models.CategoryPeralatanRumah,
		"stock":       10,
	}
	jsonBody, _ = json.Marshal(updatedData)
	req = httptest.NewRequest(http.MethodPut, "/api/v1/admin/products/"+created.ID, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/"+created.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Verify deletion through the public endpoint.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/"+created.ID, nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	// No token at all.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// A plain customer token is forbidden.
	jsonBody, _ := json.Marshal(map[string]string{
		"username": "pelanggan",
		"email":    "pelanggan@example.com",
		"password": "password123",
	})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	token := loginAs(t, app, "pelanggan", "password123")
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminOrderManagement(t *testing.T) {
	app, _, err := setupApp()
	assert.NoError(t, err)

	// Place an order through the public checkout first.
	checkoutBody := map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": "prod-002", "quantity": 1},
		},
		"customer": map[string]interface{}{
			"name":  "Siti Rahma",
			"email": "siti@example.com",
			"phone": "+62 813 9876 5432",
			"address": map[string]string{
				"street":      "Jl. Kenanga Raya No. 3",
				"city":        "Surabaya",
				"province":    "Jawa Timur",
				"postal_code": "60111",
			},
		},
		"payment_method_id": "bca-transfer",
	}
	jsonBody, _ := json.Marshal(checkoutBody)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	token := loginAs(t, app, "admin", "adminpassword")

	// List orders.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []models.Order
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	assert.Len(t, orders, 1)
	orderID := orders[0].ID
	resp.Body.Close()

	// Update its status.
	jsonBody, _ = json.Marshal(map[string]string{"status": "processing"})
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/admin/orders/"+orderID+"/status", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// An unknown status is rejected.
	jsonBody, _ = json.Marshal(map[string]string{"status": "teleported"})
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/admin/orders/"+orderID+"/status", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
