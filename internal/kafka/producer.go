package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/MitulMistry/paper-trader/internal/models"
)

// Producer publishes ledger events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishTradeExecuted publishes a committed buy or sell
func (p *Producer) PublishTradeExecuted(ctx context.Context, t *models.Transaction) error {
	event := models.LedgerEvent{
		EventType:   models.EventTradeExecuted,
		UserID:      t.UserID,
		Symbol:      t.Symbol,
		Transaction: t,
		Timestamp:   time.Now(),
	}
	return p.publish(ctx, t.UserID, event)
}

// PublishCashDeposited publishes a committed cash deposit
func (p *Producer) PublishCashDeposited(ctx context.Context, userID int) error {
	event := models.LedgerEvent{
		EventType: models.EventCashDeposited,
		UserID:    userID,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, userID, event)
}

// PublishAccountReset publishes an account reset
func (p *Producer) PublishAccountReset(ctx context.Context, userID int) error {
	event := models.LedgerEvent{
		EventType: models.EventAccountReset,
		UserID:    userID,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, userID, event)
}

// PublishAccountDeleted publishes an account deletion
func (p *Producer) PublishAccountDeleted(ctx context.Context, userID int) error {
	event := models.LedgerEvent{
		EventType: models.EventAccountDeleted,
		UserID:    userID,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, userID, event)
}

// publish keys messages by user so one account's events stay ordered
func (p *Producer) publish(ctx context.Context, userID int, event models.LedgerEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(userID)),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
