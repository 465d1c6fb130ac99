package converter

import (
	"testing"
	"time"

	"github.com/DRSN-tech/catalog-api/internal/domain"
	"github.com/DRSN-tech/catalog-api/internal/usecase"
	"github.com/stretchr/testify/assert"
)

func TestCategoryConverter(t *testing.T) {
	conv := NewCategoryConverterImpl()
	now := time.Now()

	entity := conv.ToEntity(&CategoryModel{ID: 3, Name: "Fruits", CreatedAt: now})
	assert.Equal(t, &domain.Category{ID: 3, Name: "Fruits", CreatedAt: now}, entity)
	assert.Nil(t, conv.ToEntity(nil))
}

func TestOutboxEventConverter(t *testing.T) {
	conv := NewOutboxEventConverterImpl()

	models := []*OutboxEventModel{
		{ID: 1, EventID: "a", EventType: domain.EventCategoryCreated, Status: "pending"},
		{ID: 2, EventID: "b", EventType: domain.EventProductCreated, Status: "processing"},
	}

	res := conv.ToArrEntity(models)
	assert.Len(t, res, 2)
	assert.Equal(t, usecase.Pending, res[0].Status)
	assert.Equal(t, usecase.OutboxEventType(domain.EventProductCreated), res[1].EventType)
	assert.Equal(t, "processing", conv.ToModel(res[1]).Status)
}
