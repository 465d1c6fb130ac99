package kafka

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/catalog-api/internal/usecase"
	"github.com/DRSN-tech/catalog-api/pkg/e"
	"github.com/DRSN-tech/catalog-api/pkg/jitter"
	"github.com/DRSN-tech/catalog-api/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/segmentio/kafka-go"
)

const (
	outboxChannel      = "outbox_pending"
	defaultBatchSize   = 10
	notifyWaitTimeout  = 30 * time.Second
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// OutboxMetrics считает результаты публикации.
type OutboxMetrics interface {
	OutboxPublished()
	OutboxFailed()
}

type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	metrics   OutboxMetrics
	batchSize int
	dbConnStr string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	metrics OutboxMetrics,
	batchSize int,
	dbConnStr string,
) *OutboxWorker {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		metrics:   metrics,
		batchSize: batchSize,
		dbConnStr: dbConnStr,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	// Обрабатываем "остатки" при старте
	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.listenOutboxNotifications(ctx)
	}()
}

// Stop прерывает ожидание уведомлений и дожидается завершения горутины.
func (w *OutboxWorker) Stop(_ context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.logger.Infof("Outbox worker stopped")
	return nil
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	backoff := jitter.NewBackoff(reconnectBaseDelay, reconnectMaxDelay)

	for {
		conn, err := w.subscribe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			delay := backoff.Next()
			w.logger.Warnf("LISTEN %s failed (attempt %d), retry in %s: %v", outboxChannel, backoff.Attempt(), delay, err)
			if !sleep(ctx, delay) {
				return
			}
			continue
		}

		backoff.Reset()
		// Уведомления, пришедшие во время переподключения, потеряны
		w.drain(ctx)

		err = w.waitLoop(ctx, conn)
		_ = conn.Close(context.WithoutCancel(ctx))
		if ctx.Err() != nil {
			return
		}
		w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
	}
}

func (w *OutboxWorker) subscribe(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, w.dbConnStr)
	if err != nil {
		return nil, e.Wrap("failed to connect for LISTEN", err)
	}

	if _, err = conn.Exec(ctx, "LISTEN "+outboxChannel); err != nil {
		_ = conn.Close(ctx)
		return nil, e.Wrap("failed to LISTEN", err)
	}

	w.logger.Infof("Subscribed to '%s' channel", outboxChannel)
	return conn, nil
}

// waitLoop возвращается только при ошибке соединения или отмене ctx.
// Таймаут ожидания используется как периодический опрос: события, вернувшиеся в pending после сбоя Kafka, отправляются повторно.
func (w *OutboxWorker) waitLoop(ctx context.Context, conn *pgx.Conn) error {
	for {
		waitCtx, cancel := context.WithTimeout(ctx, notifyWaitTimeout)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				w.drain(ctx)
				continue
			}
			return err
		}

		if notif != nil && notif.Channel == outboxChannel {
			w.logger.Debugf("Received outbox notification for event %s, draining outbox events", notif.Payload)
			w.drain(ctx)
		}
	}
}

// drain обрабатывает батчи, пока в outbox есть pending-события и отправка успешна
func (w *OutboxWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch возвращает hasMore=false, если батч пуст или хотя бы одно событие не удалось отправить
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	// TODO: возвращать в pending события, зависшие в processing после падения процесса (processing_started_at старше таймаута).
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.batchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	failed := false
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			failed = true
			w.metrics.OutboxFailed()
			w.logger.Warnf("publish event %s failed: %v", event.EventID, err)

			if err := w.repo.ReturnToPending(context.WithoutCancel(ctx), event.ID); err != nil {
				w.logger.Errorf(err, "return event %s to pending failed", event.EventID)
			}
			continue
		}

		w.metrics.OutboxPublished()
		if err := w.repo.MarkAsProcessed(context.WithoutCancel(ctx), event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	return !failed && len(events) == w.batchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	req := usecase.NewWriteRawMessageReq(
		strconv.FormatInt(event.AggregateID, 10),
		event.EventID,
		event.EventType,
		event.Payload,
	)

	if err := w.producer.WriteRawMessage(ctx, req); err != nil {
		if isRetryableError(err) {
			return e.Wrap("Temporary Kafka failure, will retry", err)
		}
		return e.Wrap("Permanent Kafka failure", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var kerr kafka.Error
	if errors.As(err, &kerr) {
		return kerr.Temporary()
	}

	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
