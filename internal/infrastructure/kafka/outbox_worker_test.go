package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProcessBatchDelivers тестирует доставку пачки событий и отметку processed.
func TestProcessBatchDelivers(t *testing.T) {
	repo := &fakeOutboxRepo{batches: [][]*usecase.OutboxEvent{{
		{ID: 1, ItemID: "item-1", Payload: []byte(`{"event_type":"item_created"}`)},
		{ID: 2, ItemID: "item-2", Payload: []byte(`{"event_type":"item_deleted"}`)},
	}}}
	producer := &fakeProducer{}
	worker := NewOutboxWorker(repo, logger.NopLogger{}, producer, "")

	hasMore, err := worker.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, hasMore)

	assert.Equal(t, []int64{1, 2}, repo.processedIDs())

	sent := producer.sentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, "item-1", sent[0].ItemID)
	assert.JSONEq(t, `{"event_type":"item_created"}`, string(sent[0].Payload))

	// Пустая пачка означает, что дренировать больше нечего
	hasMore, err = worker.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, hasMore)
}

// TestProcessBatchKafkaFailure тестирует, что при сбое брокера события
// не отмечаются processed и останутся для следующего дрейна.
func TestProcessBatchKafkaFailure(t *testing.T) {
	repo := &fakeOutboxRepo{batches: [][]*usecase.OutboxEvent{{
		{ID: 7, ItemID: "item-7", Payload: []byte(`{}`)},
	}}}
	producer := &fakeProducer{err: errors.New("dial tcp: connection refused")}
	worker := NewOutboxWorker(repo, logger.NopLogger{}, producer, "")

	hasMore, err := worker.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, hasMore)

	assert.Empty(t, repo.processedIDs())
}

// TestRequeueStale тестирует возврат зависших событий в очередь с порогом давности.
func TestRequeueStale(t *testing.T) {
	repo := &fakeOutboxRepo{staleCount: 3}
	worker := NewOutboxWorker(repo, logger.NopLogger{}, &fakeProducer{}, "")

	worker.requeueStale(context.Background())

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.requeueCalls, 1)
	assert.Equal(t, staleThreshold, repo.requeueCalls[0])
}

// TestIsRetryableError тестирует распознавание временных ошибок брокера.
func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "connection refused", err: errors.New("dial tcp 10.0.0.1:9092: connection refused"), want: true},
		{name: "io timeout", err: errors.New("read tcp: i/o timeout"), want: true},
		{name: "broken pipe", err: errors.New("write: broken pipe"), want: true},
		{name: "message too large", err: errors.New("kafka: message too large"), want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

// fakeOutboxRepo отдаёт заготовленные пачки событий.
type fakeOutboxRepo struct {
	mu           sync.Mutex
	batches      [][]*usecase.OutboxEvent
	processed    []int64
	staleCount   int64
	requeueCalls []time.Duration
}

func (f *fakeOutboxRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	return event, nil
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.batches) == 0 {
		return nil, nil
	}

	batch := f.batches[0]
	f.batches = f.batches[1:]

	return batch, nil
}

func (f *fakeOutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeOutboxRepo) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requeueCalls = append(f.requeueCalls, olderThan)
	return f.staleCount, nil
}

func (f *fakeOutboxRepo) processedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]int64, len(f.processed))
	copy(ids, f.processed)

	return ids
}

// fakeProducer записывает отправленные сообщения.
type fakeProducer struct {
	mu   sync.Mutex
	sent []*usecase.WriteRawMessageReq
	err  error
}

func (f *fakeProducer) WriteRawMessage(ctx context.Context, req *usecase.WriteRawMessageReq) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeProducer) sentMessages() []*usecase.WriteRawMessageReq {
	f.mu.Lock()
	defer f.mu.Unlock()

	msgs := make([]*usecase.WriteRawMessageReq, len(f.sent))
	copy(msgs, f.sent)

	return msgs
}
