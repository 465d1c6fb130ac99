package usecase

import (
	"context"
	"errors"

	"github.com/DRSN-tech/catalog-api/internal/domain"
	"github.com/DRSN-tech/catalog-api/pkg/e"
	"github.com/DRSN-tech/catalog-api/pkg/logger"
)

const (
	entityCategory = "category"
	entityProduct  = "product"
)

// CatalogUseCase реализует создание категорий и продуктов с проверками уникальности.
//
// Проверки существования выполняются до вставки и не защищают от гонки сами по себе:
// конкурентный дубликат отсекается уникальным индексом в БД, и репозиторий
// возвращает ту же ошибку AlreadyExists.
type CatalogUseCase struct {
	sessions     SessionManager
	categoryRepo CategoryRepository
	productRepo  ProductRepository
	events       EventRecorder
	cache        CategoryCache
	metrics      MetricsRecorder
	logger       logger.Logger
}

func NewCatalogUC(
	sessions SessionManager,
	categoryRepo CategoryRepository,
	productRepo ProductRepository,
	events EventRecorder,
	cache CategoryCache,
	metrics MetricsRecorder,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		sessions:     sessions,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		events:       events,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
	}
}

// AddCategory создаёт категорию с уникальным именем.
func (c *CatalogUseCase) AddCategory(ctx context.Context, req *AddCategoryReq) (*domain.Category, error) {
	const op = "CatalogUseCase.AddCategory"

	req.normalize()
	if err := req.validate(); err != nil {
		return nil, e.Wrap(op, err)
	}

	// Категории неизменяемы, поэтому попадание в кэш означает дубликат
	if _, err := c.cachedCategoryID(ctx, req.Name); err == nil {
		c.metrics.Conflict(entityCategory)
		return nil, e.Wrap(op, e.ErrCategoryAlreadyExists)
	}

	var created *domain.Category
	err := c.sessions.WithinSession(ctx, func(ctx context.Context) error {
		existing, err := c.categoryRepo.GetByName(ctx, req.Name)
		switch {
		case err == nil:
			c.rememberCategory(ctx, existing)
			return e.ErrCategoryAlreadyExists
		case !errors.Is(err, e.ErrCategoryNotFound):
			return err
		}

		created, err = c.categoryRepo.Create(ctx, domain.NewCategory(req.Name))
		if err != nil {
			return err
		}

		return c.events.Record(ctx, domain.NewCategoryCreatedEvent(created))
	})
	if err != nil {
		if errors.Is(err, e.ErrCategoryAlreadyExists) {
			c.metrics.Conflict(entityCategory)
		}
		return nil, e.Wrap(op, err)
	}

	c.rememberCategory(ctx, created)
	c.metrics.CategoryCreated()
	c.logger.Infof("category created: id=%d name=%q", created.ID, created.Name)

	return created, nil
}

// AddProduct создаёт продукт в существующей категории; имя продукта уникально в пределах категории.
func (c *CatalogUseCase) AddProduct(ctx context.Context, req *AddProductReq) (*domain.Product, error) {
	const op = "CatalogUseCase.AddProduct"

	req.normalize()
	if err := req.validate(); err != nil {
		return nil, e.Wrap(op, err)
	}

	var (
		created    *domain.Product
		resolvedDB *domain.Category
	)
	err := c.sessions.WithinSession(ctx, func(ctx context.Context) error {
		categoryID, fromDB, err := c.resolveCategory(ctx, req.CategoryName)
		if err != nil {
			return err
		}
		resolvedDB = fromDB

		_, err = c.productRepo.GetByNameAndCategory(ctx, req.Name, categoryID)
		switch {
		case err == nil:
			return e.ErrProductAlreadyExists
		case !errors.Is(err, e.ErrProductNotFound):
			return err
		}

		created, err = c.productRepo.Create(ctx, domain.NewProduct(req.Name, categoryID))
		if err != nil {
			return err
		}

		return c.events.Record(ctx, domain.NewProductCreatedEvent(created))
	})
	if resolvedDB != nil {
		c.rememberCategory(ctx, resolvedDB)
	}
	if err != nil {
		if errors.Is(err, e.ErrProductAlreadyExists) {
			c.metrics.Conflict(entityProduct)
		}
		return nil, e.Wrap(op, err)
	}

	c.metrics.ProductCreated()
	c.logger.Infof("product created: id=%d name=%q category_id=%d", created.ID, created.Name, created.CategoryID)

	return created, nil
}

// resolveCategory находит id категории по имени: сначала в кэше, затем в БД.
// Вторым значением возвращается категория, если она была прочитана из БД.
func (c *CatalogUseCase) resolveCategory(ctx context.Context, name string) (int64, *domain.Category, error) {
	if id, err := c.cachedCategoryID(ctx, name); err == nil {
		return id, nil, nil
	}

	category, err := c.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return 0, nil, err
	}

	return category.ID, category, nil
}

// cachedCategoryID читает кэш; ошибки кэша логируются и считаются промахом.
func (c *CatalogUseCase) cachedCategoryID(ctx context.Context, name string) (int64, error) {
	id, err := c.cache.Get(ctx, name)
	if err != nil && !errors.Is(err, e.ErrCacheMiss) {
		c.logger.Warnf("category cache get failed: %v", err)
	}
	return id, err
}

// rememberCategory кладёт категорию в кэш, не влияя на результат запроса.
func (c *CatalogUseCase) rememberCategory(ctx context.Context, category *domain.Category) {
	if category == nil {
		return
	}
	if err := c.cache.Set(ctx, category.Name, category.ID); err != nil {
		c.logger.Warnf("category cache set failed: %v", err)
	}
}
