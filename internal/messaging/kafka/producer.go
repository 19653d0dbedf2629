package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// Producer публикует события жизненного цикла заказа и печати.
// Публикация best-effort: вызывающая сторона логирует ошибку и продолжает,
// подтверждение заказа от Kafka не зависит.
type Producer struct {
	sync   sarama.SyncProducer
	logger *log.Entry
}

// NewProducer создает sync producer с идемпотентной доставкой.
func NewProducer(brokers []string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1 // Для идемпотентности

	sync, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &Producer{
		sync:   sync,
		logger: log.WithField("component", "kafka-producer"),
	}, nil
}

// PublishOrderEvent публикует событие заказа, ключ партиционирования — id заказа.
func (p *Producer) PublishOrderEvent(event *OrderEvent) error {
	return p.publish(TopicOrderEvents, event.OrderID, event.EventType, event)
}

// PublishPaymentEvent публикует исход оплаты в topic заказов, ключ — id интента.
func (p *Producer) PublishPaymentEvent(event *PaymentEvent) error {
	return p.publish(TopicOrderEvents, event.IntentID, event.EventType, event)
}

// PublishPrintEvent публикует итог рассылки чека, ключ — id заказа.
func (p *Producer) PublishPrintEvent(event *PrintEvent) error {
	return p.publish(TopicPrintEvents, event.OrderID, event.EventType, event)
}

func (p *Producer) publish(topic, key string, eventType EventType, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(eventType)},
		},
		Timestamp: time.Now(),
	}

	partition, offset, err := p.sync.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"topic":      topic,
			"event_type": eventType,
		}).Error("failed to send message to kafka")
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.WithFields(log.Fields{
		"topic":      topic,
		"event_type": eventType,
		"partition":  partition,
		"offset":     offset,
	}).Debug("event published")

	return nil
}

// Close закрывает producer.
func (p *Producer) Close() error {
	if err := p.sync.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
