package domain

import "time"

// CatalogEvent — событие об изменении каталога, публикуемое через outbox.
type CatalogEvent struct {
	Type        string    `json:"type"`
	AggregateID int64     `json:"aggregate_id"`
	Name        string    `json:"name"`
	CategoryID  int64     `json:"category_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

const (
	EventCategoryCreated = "category.created"
	EventProductCreated  = "product.created"
)

func NewCategoryCreatedEvent(c *Category) *CatalogEvent {
	return &CatalogEvent{
		Type:        EventCategoryCreated,
		AggregateID: c.ID,
		Name:        c.Name,
		OccurredAt:  c.CreatedAt,
	}
}

func NewProductCreatedEvent(p *Product) *CatalogEvent {
	return &CatalogEvent{
		Type:        EventProductCreated,
		AggregateID: p.ID,
		Name:        p.Name,
		CategoryID:  p.CategoryID,
		OccurredAt:  p.CreatedAt,
	}
}
