package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/wardrobe-backend/internal/cfg"
	"github.com/DRSN-tech/wardrobe-backend/internal/usecase"
	"github.com/DRSN-tech/wardrobe-backend/pkg/e"
	"github.com/DRSN-tech/wardrobe-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
)

const (
	writerBatchSize    = 10
	writerBatchTimeout = 500 * time.Millisecond
	writerWriteTimeout = 10 * time.Second
)

// Producer пишет события жизненного цикла вещей в Kafka.
// Ключ сообщения — id вещи, чтобы события одной вещи попадали в одну партицию
// и консьюмеры видели их в порядке возникновения.
type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) (*Producer, error) {
	p := &Producer{
		logger: logger,
		cfg:    cfg,
	}

	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    writerBatchSize,
		BatchTimeout: writerBatchTimeout,
		WriteTimeout: writerWriteTimeout,
		Completion:   p.logWriteFailures,
	}

	return p, nil
}

// WriteRawMessage отправляет заранее сериализованную полезную нагрузку.
// Сериализацией владеет создатель события, продюсер байты не трогает.
func (p *Producer) WriteRawMessage(ctx context.Context, req *usecase.WriteRawMessageReq) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(req.ItemID),
		Value: req.Payload,
	})
}

func (p *Producer) logWriteFailures(messages []kafka.Message, err error) {
	if err != nil {
		p.logger.Warnf("Kafka producer error: %s", err.Error())
	}
}

// EnsureTopic создаёт топик, если его ещё нет.
func (p *Producer) EnsureTopic(timeout time.Duration) error {
	conn, err := kafka.Dial(p.cfg.NetworkMode, p.cfg.Brokers[0])
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(p.cfg.Topic)
	if err == nil && len(partitions) > 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.CreateTopics(kafka.TopicConfig{
			Topic:             p.cfg.Topic,
			NumPartitions:     p.cfg.Partitions,
			ReplicationFactor: p.cfg.ReplicationFactor,
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to create topic %s: %w", p.cfg.Topic, err))
		}
		return nil
	case <-time.After(timeout):
		_ = conn.Close()
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("timeout: %v, topic: %s", timeout, p.cfg.Topic))
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
