package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DRSN-tech/catalog-api/internal/usecase"
	"github.com/DRSN-tech/catalog-api/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutboxRepo struct {
	pending   []*usecase.OutboxEvent
	processed []int64
	returned  []int64
	fetchErr  error
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	r.pending = append(r.pending, event)
	return event, nil
}

func (r *fakeOutboxRepo) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}

	n := min(limit, len(r.pending))
	batch := r.pending[:n]
	r.pending = r.pending[n:]
	return batch, nil
}

func (r *fakeOutboxRepo) MarkAsProcessed(_ context.Context, id int64) error {
	r.processed = append(r.processed, id)
	return nil
}

func (r *fakeOutboxRepo) ReturnToPending(_ context.Context, id int64) error {
	r.returned = append(r.returned, id)
	return nil
}

type fakeProducer struct {
	sent   []*usecase.WriteRawMessageReq
	failOn map[string]error
}

func (p *fakeProducer) WriteRawMessage(_ context.Context, req *usecase.WriteRawMessageReq) error {
	if err, ok := p.failOn[req.EventID]; ok {
		return err
	}
	p.sent = append(p.sent, req)
	return nil
}

type fakeOutboxMetrics struct {
	published int
	failed    int
}

func (m *fakeOutboxMetrics) OutboxPublished() { m.published++ }
func (m *fakeOutboxMetrics) OutboxFailed()    { m.failed++ }

func newEvents(n int) []*usecase.OutboxEvent {
	events := make([]*usecase.OutboxEvent, 0, n)
	for i := 1; i <= n; i++ {
		events = append(events, &usecase.OutboxEvent{
			ID:          int64(i),
			EventID:     fmt.Sprintf("evt-%d", i),
			EventType:   "category.created",
			AggregateID: int64(100 + i),
			Payload:     []byte(`{}`),
			Status:      usecase.Processing,
		})
	}
	return events
}

func newTestWorker(repo *fakeOutboxRepo, producer *fakeProducer, batch int) (*OutboxWorker, *fakeOutboxMetrics) {
	m := &fakeOutboxMetrics{}
	return NewOutboxWorker(repo, logger.NewNop(), producer, m, batch, ""), m
}

func TestOutboxWorker_DrainPublishesAll(t *testing.T) {
	repo := &fakeOutboxRepo{pending: newEvents(5)}
	producer := &fakeProducer{}
	w, m := newTestWorker(repo, producer, 2)

	w.drain(context.Background())

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, repo.processed)
	assert.Empty(t, repo.returned)
	assert.Equal(t, 5, m.published)
	require.Len(t, producer.sent, 5)

	first := producer.sent[0]
	assert.Equal(t, "101", first.Key)
	assert.Equal(t, "evt-1", first.EventID)
	assert.Equal(t, usecase.OutboxEventType("category.created"), first.Type)
}

func TestOutboxWorker_FailedEventReturnedToPending(t *testing.T) {
	repo := &fakeOutboxRepo{pending: newEvents(3)}
	producer := &fakeProducer{failOn: map[string]error{"evt-2": errors.New("dial tcp: connection refused")}}
	w, m := newTestWorker(repo, producer, 3)

	hasMore, err := w.processBatch(context.Background())
	require.NoError(t, err)

	assert.False(t, hasMore)
	assert.Equal(t, []int64{1, 3}, repo.processed)
	assert.Equal(t, []int64{2}, repo.returned)
	assert.Equal(t, 2, m.published)
	assert.Equal(t, 1, m.failed)
}

func TestOutboxWorker_FailureStopsDrain(t *testing.T) {
	repo := &fakeOutboxRepo{pending: newEvents(4)}
	producer := &fakeProducer{failOn: map[string]error{"evt-1": errors.New("boom")}}
	w, _ := newTestWorker(repo, producer, 2)

	w.drain(context.Background())

	assert.Equal(t, []int64{2}, repo.processed)
	assert.Equal(t, []int64{1}, repo.returned)
	assert.Len(t, repo.pending, 2)
}

func TestOutboxWorker_FetchError(t *testing.T) {
	repo := &fakeOutboxRepo{fetchErr: errors.New("db down")}
	w, _ := newTestWorker(repo, &fakeProducer{}, 0)

	hasMore, err := w.processBatch(context.Background())
	assert.Error(t, err)
	assert.False(t, hasMore)
	assert.Equal(t, defaultBatchSize, w.batchSize)
}

func TestOutboxWorker_StopWithoutStart(t *testing.T) {
	w, _ := newTestWorker(&fakeOutboxRepo{}, &fakeProducer{}, 1)
	assert.NoError(t, w.Stop(context.Background()))
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:9092: connect: connection refused"), want: true},
		{name: "kafka temporary", err: fmt.Errorf("write: %w", kafka.LeaderNotAvailable), want: true},
		{name: "kafka permanent", err: kafka.MessageSizeTooLarge, want: false},
		{name: "other", err: errors.New("invalid payload"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestToKafkaMessage(t *testing.T) {
	msg := toKafkaMessage(usecase.NewWriteRawMessageReq("7", "evt-7", "product.created", []byte(`{"id":7}`)))

	assert.Equal(t, []byte("7"), msg.Key)
	assert.Equal(t, []byte(`{"id":7}`), msg.Value)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, headerEventID, msg.Headers[0].Key)
	assert.Equal(t, []byte("evt-7"), msg.Headers[0].Value)
	assert.Equal(t, []byte("product.created"), msg.Headers[1].Value)
}
