package usecase

import (
	"strings"
	"time"

	"github.com/DRSN-tech/catalog-api/pkg/e"
)

// CATALOG USECASE

// AddCategoryReq — запрос на создание категории.
type AddCategoryReq struct {
	Name string
}

// AddProductReq — запрос на создание продукта в существующей категории.
type AddProductReq struct {
	CategoryName string
	Name         string
}

// normalize обрезает пробельные символы по краям.
func (r *AddCategoryReq) normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *AddCategoryReq) validate() error {
	if r.Name == "" {
		return e.ErrCategoryRequired
	}
	return nil
}

func (r *AddProductReq) normalize() {
	r.CategoryName = strings.TrimSpace(r.CategoryName)
	r.Name = strings.TrimSpace(r.Name)
}

func (r *AddProductReq) validate() error {
	if r.CategoryName == "" || r.Name == "" {
		return e.ErrCategoryAndProductRequired
	}
	return nil
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

// OutboxEventType совпадает с domain.CatalogEvent.Type.
type OutboxEventType string

// OutboxEvent — запись таблицы outbox_events на уровне бизнес-логики.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	AggregateID int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// INFRASTRUCTURE

// WriteRawMessageReq — готовое к отправке сообщение Kafka.
type WriteRawMessageReq struct {
	Key     string
	EventID string
	Type    OutboxEventType
	Payload []byte
}

// MAPPERS
func NewAddCategoryReq(name string) *AddCategoryReq {
	return &AddCategoryReq{
		Name: name,
	}
}

func NewAddProductReq(categoryName string, name string) *AddProductReq {
	return &AddProductReq{
		CategoryName: categoryName,
		Name:         name,
	}
}

func NewOutboxEvent(eventID string, eventType OutboxEventType, aggregateID int64, payload []byte, createdAt time.Time) *OutboxEvent {
	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   createdAt,
	}
}

func NewWriteRawMessageReq(key string, eventID string, eventType OutboxEventType, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		EventID: eventID,
		Type:    eventType,
		Payload: payload,
	}
}
