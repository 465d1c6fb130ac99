package usecase

import (
	"context"

	"github.com/DRSN-tech/catalog-api/internal/domain"
	"github.com/DRSN-tech/catalog-api/pkg/e"
)

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

// EventRecorder сохраняет событие каталога в рамках текущей сессии.
type EventRecorder interface {
	Record(ctx context.Context, event *domain.CatalogEvent) error
}

type MetricsRecorder interface {
	CategoryCreated()
	ProductCreated()
	Conflict(entity string)
}

// NopEventRecorder используется, когда публикация событий выключена.
type NopEventRecorder struct{}

func (NopEventRecorder) Record(context.Context, *domain.CatalogEvent) error { return nil }

// NopCategoryCache используется, когда Redis не настроен.
type NopCategoryCache struct{}

func (NopCategoryCache) Get(context.Context, string) (int64, error) { return 0, e.ErrCacheMiss }

func (NopCategoryCache) Set(context.Context, string, int64) error { return nil }
