// Package catalog implements the storefront's filter/search/sort/paginate
// pipeline over an in-memory product list. Everything here is pure and
// synchronous: the caller hands in a fully materialized product slice and
// gets back the exact page to render.
package catalog

import (
	"sort"
	"strings"

	"bumilestari/internal/models"
)

// SortKey selects the ordering applied after filtering. It is a closed
// set; Query dispatches exhaustively over it.
type SortKey string

const (
	SortNameAsc    SortKey = "name-asc"
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortRatingDesc SortKey = "rating-desc"
	SortNewest     SortKey = "newest"
)

// ParseSortKey maps a raw query-string value to a SortKey, falling back
// to SortNewest for anything unrecognized.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortNameAsc, SortPriceAsc, SortPriceDesc, SortRatingDesc, SortNewest:
		return SortKey(s)
	default:
		return SortNewest
	}
}

// Criteria describes the user's current catalog narrowing and ordering
// choices. It is replaced wholesale on every change: each change event
// builds a full new Criteria from the previous one plus one field.
type Criteria struct {
	Category  string  `json:"category"`
	MinPrice  int     `json:"min_price"`
	MaxPrice  int     `json:"max_price"`
	MinRating float64 `json:"min_rating"`
	Sort      SortKey `json:"sort"`
}

// MaxPriceDefault is the upper price bound used when the shopper has not
// narrowed the range. Well above any product in the catalog.
const MaxPriceDefault = 100_000_000

// DefaultCriteria returns the criteria a freshly opened marketplace page
// starts with: every category, the full price range, any rating,
// newest first.
func DefaultCriteria() Criteria {
	return Criteria{
		Category:  models.CategoryAll,
		MinPrice:  0,
		MaxPrice:  MaxPriceDefault,
		MinRating: 0,
		Sort:      SortNewest,
	}
}

// Result is one page of a catalog query.
type Result struct {
	PageItems    []models.Product `json:"page_items"`
	TotalMatches int              `json:"total_matches"`
	TotalPages   int              `json:"total_pages"`
}

// Query filters the product list by the search term and criteria, sorts
// the matches, and returns the requested 1-indexed page. MinPrice >
// MaxPrice is not an error; it simply matches nothing priced in
// between. A page beyond the last returns an empty slice, and page <= 0
// is clamped to 1. Pure: products is never mutated.
func Query(products []models.Product, searchTerm string, criteria Criteria, page, pageSize int) Result {
	matched := make([]models.Product, 0, len(products))
	for _, p := range products {
		if matches(p, searchTerm, criteria) {
			matched = append(matched, p)
		}
	}

	sortProducts(matched, criteria.Sort)

	if pageSize < 1 {
		pageSize = 1
	}
	total := len(matched)
	totalPages := (total + pageSize - 1) / pageSize

	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return Result{PageItems: []models.Product{}, TotalMatches: total, TotalPages: totalPages}
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Result{PageItems: matched[start:end], TotalMatches: total, TotalPages: totalPages}
}

// matches is the conjunction of all four predicates: free-text search,
// category, price bounds, minimum rating.
func matches(p models.Product, searchTerm string, c Criteria) bool {
	if !matchesSearch(p, searchTerm) {
		return false
	}
	if c.Category != models.CategoryAll && c.Category != p.Category {
		return false
	}
	if p.Price < c.MinPrice || p.Price > c.MaxPrice {
		return false
	}
	return p.Rating >= c.MinRating
}

// matchesSearch does a case-insensitive substring check against the
// product's name, description, category, and tags. An empty term
// matches everything.
func matchesSearch(p models.Product, term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	if strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(p.Category), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// sortProducts orders the slice in place. The sort is stable, so
// products comparing equal keep their filtered order. SortNewest is
// reverse lexicographic by ID: the catalog has no creation timestamp,
// and IDs are assigned in insertion order, so a later ID means a newer
// product.
func sortProducts(products []models.Product, key SortKey) {
	var less func(a, b models.Product) bool
	switch key {
	case SortNameAsc:
		less = func(a, b models.Product) bool { return a.Name < b.Name }
	case SortPriceAsc:
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b models.Product) bool { return a.Price > b.Price }
	case SortRatingDesc:
		less = func(a, b models.Product) bool { return a.Rating > b.Rating }
	case SortNewest:
		less = func(a, b models.Product) bool { return a.ID > b.ID }
	default:
		less = func(a, b models.Product) bool { return a.ID > b.ID }
	}
	sort.SliceStable(products, func(i, j int) bool {
		return less(products[i], products[j])
	})
}
