package models

import "gorm.io/gorm"

// Product categories sold on the storefront. The list is fixed; the
// filter layer additionally accepts the CategoryAll sentinel.
const (
	CategoryAll = "all" // sentinel, matches every category

	CategoryPeralatanRumah = "peralatan-rumah"
	CategoryFashion        = "fashion"
	CategoryPerawatanDiri  = "perawatan-diri"
	CategoryMakananMinuman = "makanan-minuman"
	CategoryKebun          = "kebun"
	CategoryDaurUlang      = "daur-ulang"
)

// Categories returns the fixed category labels used to build filter
// affordances. CategoryAll is not included; it is a filter sentinel,
// not a real category.
func Categories() []string {
	return []string{
		CategoryPeralatanRumah,
		CategoryFashion,
		CategoryPerawatanDiri,
		CategoryMakananMinuman,
		CategoryKebun,
		CategoryDaurUlang,
	}
}

// Product represents a product in the store. Price is kept in the
// smallest currency unit (rupiah), never a float.
type Product struct {
	ID          string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,max=36"`
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	Price       int      `json:"price" validate:"gte=0"`
	Category    string   `json:"category" validate:"required"`
	Image       string   `json:"image" validate:"omitempty,max=255"`
	Rating      float64  `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount int      `json:"review_count" validate:"gte=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Seller      string   `json:"seller" validate:"omitempty,max=100"`
	Tags        []string `json:"tags" gorm:"serializer:json"`
	gorm.Model           // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
