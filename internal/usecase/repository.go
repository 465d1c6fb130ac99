package usecase

import (
	"context"

	"github.com/DRSN-tech/catalog-api/internal/domain"
)

// CategoryRepository хранит категории.
// GetByName возвращает e.ErrCategoryNotFound, если категории нет;
// Create возвращает e.ErrCategoryAlreadyExists при нарушении уникальности имени.
type CategoryRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
}

// ProductRepository хранит продукты.
// GetByNameAndCategory возвращает e.ErrProductNotFound, если продукта нет;
// Create возвращает e.ErrProductAlreadyExists при нарушении уникальности (name, category_id).
type ProductRepository interface {
	GetByNameAndCategory(ctx context.Context, name string, categoryID int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
}

// OutboxRepository хранит события для последующей публикации в Kafka.
type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	ReturnToPending(ctx context.Context, id int64) error
}

// CategoryCache кэширует соответствие имя категории -> id.
// Get возвращает e.ErrCacheMiss, если ключа нет.
type CategoryCache interface {
	Get(ctx context.Context, name string) (int64, error)
	Set(ctx context.Context, name string, id int64) error
}

// SessionManager выполняет fn в рамках одной сессии БД (соединение + транзакция).
// Транзакция фиксируется, если fn вернула nil, и откатывается в противном случае;
// соединение возвращается в пул на любом пути выхода.
type SessionManager interface {
	WithinSession(ctx context.Context, fn func(ctx context.Context) error) error
}
