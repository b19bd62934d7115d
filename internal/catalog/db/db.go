package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"

	"grosave/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

type DB struct {
	Bun *bun.DB
}

type ProductFilter struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// ListProducts returns active products, soonest expiry first. Category "All"
// (or empty) means no category filter; search matches name or brand
// case-insensitively.
func (d *DB) ListProducts(f ProductFilter) ([]models.Product, int, error) {
	ctx := context.Background()
	var products []models.Product

	q := d.Bun.NewSelect().Model(&products).
		Where("is_active = ?", true)

	if f.Category != "" && !strings.EqualFold(f.Category, "All") {
		q = q.Where("LOWER(category) = LOWER(?)", f.Category)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(name) LIKE ?", pattern).
				WhereOr("LOWER(brand) LIKE ?", pattern)
		})
	}

	total, err := q.Order("expiry_date ASC").
		Limit(f.Limit).
		Offset(f.Offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, total, nil
}

func (d *DB) GetProductByID(id string) (*models.Product, error) {
	ctx := context.Background()
	var product models.Product
	err := d.Bun.NewSelect().Model(&product).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CategoryCounts groups active products by category.
func (d *DB) CategoryCounts() ([]models.Category, error) {
	ctx := context.Background()
	var rows []struct {
		Category string `bun:"category"`
		Count    int    `bun:"count"`
	}
	err := d.Bun.NewSelect().Model((*models.Product)(nil)).
		ColumnExpr("category").
		ColumnExpr("COUNT(*) AS count").
		Where("is_active = ?", true).
		GroupExpr("category").
		OrderExpr("category ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, models.Category{
			ID:           strings.ToLower(row.Category),
			Name:         row.Category,
			ProductCount: row.Count,
		})
	}
	return categories, nil
}
