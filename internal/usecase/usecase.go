package usecase

import (
	"context"

	"github.com/DRSN-tech/catalog-api/internal/domain"
)

type CatalogUC interface {
	AddCategory(ctx context.Context, req *AddCategoryReq) (*domain.Category, error)
	AddProduct(ctx context.Context, req *AddProductReq) (*domain.Product, error)
}
