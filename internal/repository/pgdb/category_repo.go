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

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	conv converter.CategoryConverter
}

func NewCategoryRepo(conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{conv: conv}
}

// GetByName ищет категорию по точному имени (с учётом регистра согласно collation).
func (c *CategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		SELECT id, name, created_at
		FROM categories
		WHERE name = $1;
	`

	var model converter.CategoryModel
	if err := tx.QueryRow(ctx, query, name).
		Scan(&model.ID, &model.Name, &model.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.ErrCategoryNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}

// Create вставляет новую категорию. Дубликат имени возвращает e.ErrCategoryAlreadyExists.
func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO categories(name) VALUES ($1)
		RETURNING id, name, created_at;
	`

	var model converter.CategoryModel
	if err := tx.QueryRow(ctx, query, category.Name).
		Scan(&model.ID, &model.Name, &model.CreatedAt); err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryAlreadyExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}
