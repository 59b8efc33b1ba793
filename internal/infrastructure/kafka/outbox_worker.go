package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/DRSN-tech/wardrobe-backend/pkg/jitter"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	batchSize     = 10
	listenChannel = "outbox_pending"
	notifyWait    = 30 * time.Second

	// sweepInterval задаёт период страховочного дрейна: он подбирает события,
	// чьи NOTIFY потерялись, и возвращает в очередь зависшие в processing.
	sweepInterval  = time.Minute
	staleThreshold = 5 * time.Minute
)

// OutboxWorker доставляет события из таблицы outbox в Kafka.
// Просыпается по NOTIFY из Postgres и дренирует пачки по мере появления.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	stop      chan struct{}
	wg        sync.WaitGroup
	dbConnStr string
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	dbConnStr string,
) *OutboxWorker {
	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		stop:      make(chan struct{}),
		dbConnStr: dbConnStr,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	go func() {
		defer w.wg.Done()
		w.listenOutboxNotifications(ctx)
	}()
}

func (w *OutboxWorker) Stop() {
	close(w.stop)
	w.wg.Wait()
}

// run дренирует остатки при старте, дальше работает страховочным циклом.
func (w *OutboxWorker) run(ctx context.Context) {
	w.logger.Infof("Draining pending outbox events on startup...")
	w.drainOutbox(ctx)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Worker stopped by context cancellation")
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.requeueStale(ctx)
			w.drainOutbox(ctx)
		}
	}
}

// requeueStale возвращает в очередь события, зависшие в processing дольше
// порога: такое случается после сбоя Kafka или падения воркера между
// выборкой и отметкой processed.
func (w *OutboxWorker) requeueStale(ctx context.Context) {
	requeued, err := w.repo.RequeueStale(ctx, staleThreshold)
	if err != nil {
		w.logger.Warnf("requeue of stale outbox events failed: %v", err)
		return
	}

	if requeued > 0 {
		w.logger.Infof("Requeued %d stale outbox events", requeued)
	}
}

// drainOutbox выгребает события пачками, пока таблица не опустеет.
func (w *OutboxWorker) drainOutbox(ctx context.Context) {
	for {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	conn, err := w.connectListener(ctx)
	if err != nil {
		w.logger.Warnf("Initial connect for LISTEN failed: %v", err)
		return
	}
	defer conn.Close(ctx)

	reconnectAttempt := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		default:
		}

		waitCtx, cancel := context.WithTimeout(ctx, notifyWait)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}

			w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
			conn.Close(ctx)

			time.Sleep(jitter.ExponentialBackoff(2*time.Second, 30*time.Second, reconnectAttempt, jitter.DefaultJitter))

			conn, err = w.connectListener(ctx)
			if err != nil {
				w.logger.Warnf("Reconnect failed: %v", err)
				reconnectAttempt++
				continue
			}

			reconnectAttempt = 0
			continue
		}

		if notif != nil && notif.Channel == listenChannel {
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drainOutbox(ctx)
		}
	}
}

// connectListener открывает выделенное соединение и подписывается на канал
// уведомлений. Пул для LISTEN не годится: соединение должно жить постоянно.
func (w *OutboxWorker) connectListener(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, w.dbConnStr)
	if err != nil {
		return nil, e.Wrap("failed to connect for LISTEN", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+listenChannel); err != nil {
		conn.Close(ctx)
		return nil, e.Wrap("failed to LISTEN", err)
	}

	w.logger.Infof("Subscribed to '%s' channel", listenChannel)
	return conn, nil
}

func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, batchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			continue
		}
		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	return true, nil
}

// processEvent отправляет событие в Kafka. Неотправленное событие остаётся
// в processing, его подберёт страховочный requeue.
func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	err := w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event.ItemID, event.Payload))
	if err == nil {
		return nil
	}

	if isRetryableError(err) {
		return e.Wrap("Temporary Kafka failure, will retry", err)
	}

	return e.Wrap("Permanent Kafka failure", err)
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
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
