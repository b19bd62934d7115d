package catalog

import (
	catalogdb "grosave/internal/catalog/db"
	"grosave/internal/models"
)

var ErrProductNotFound = catalogdb.ErrProductNotFound

type DBLayer interface {
	ListProducts(f catalogdb.ProductFilter) ([]models.Product, int, error)
	GetProductByID(id string) (*models.Product, error)
	CategoryCounts() ([]models.Category, error)
}

type CatalogService struct {
	DB DBLayer
}

func NewCatalogService(dbLayer DBLayer) *CatalogService {
	return &CatalogService{DB: dbLayer}
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

func (s *CatalogService) Products(category, search string, page, pageSize int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	products, total, err := s.DB.ListProducts(catalogdb.ProductFilter{
		Category: category,
		Search:   search,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}

	return &ProductPage{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *CatalogService) Product(id string) (*models.Product, error) {
	return s.DB.GetProductByID(id)
}

// Categories prepends the synthetic "All" entry covering every active
// product.
func (s *CatalogService) Categories() ([]models.Category, error) {
	counts, err := s.DB.CategoryCounts()
	if err != nil {
		return nil, err
	}

	total := 0
	for _, c := range counts {
		total += c.ProductCount
	}

	categories := make([]models.Category, 0, len(counts)+1)
	categories = append(categories, models.Category{ID: "all", Name: "All", ProductCount: total})
	categories = append(categories, counts...)
	return categories, nil
}
