package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/catalog-api/internal/domain"
	"github.com/DRSN-tech/catalog-api/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/catalog-api/pkg/e"
	"github.com/DRSN-tech/catalog-api/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
type ProductRepo struct {
	conv converter.ProductConverter
}

func NewProductRepo(conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{conv: conv}
}

// GetByNameAndCategory ищет продукт по имени в пределах категории.
func (p *ProductRepo) GetByNameAndCategory(ctx context.Context, name string, categoryID int64) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		SELECT id, name, category_id, created_at
		FROM products
		WHERE name = $1 AND category_id = $2;
	`

	var model converter.ProductModel
	if err := tx.QueryRow(ctx, query, name, categoryID).
		Scan(&model.ID, &model.Name, &model.CategoryID, &model.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrProductNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// Create вставляет продукт в категорию product.CategoryID.
// Дубликат (name, category_id) возвращает e.ErrProductAlreadyExists.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	// VALUES ($1, $2) name, category_id
	query := `
		INSERT INTO products (name, category_id)
		VALUES ($1, $2)
		RETURNING id, name, category_id, created_at;
	`

	var model converter.ProductModel
	if err := tx.QueryRow(ctx, query, product.Name, product.CategoryID).
		Scan(&model.ID, &model.Name, &model.CategoryID, &model.CreatedAt); err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductAlreadyExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}
