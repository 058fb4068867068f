package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"ledger-bank/internal/config"
	"ledger-bank/internal/model"
)

const (
	reconnectDelay       = 2 * time.Second
	maxReconnectAttempts = 5
	publishTimeout       = 5 * time.Second
)

// LedgerMessage is the message format of one ledger entry on the queue
type LedgerMessage struct {
	Account *int   `json:"account"`
	Other   int    `json:"other"`
	Amount  *int64 `json:"amount"`
	Mode    *int   `json:"mode"`
}

// Record converts m into a transaction record with the given sequence ID
func (m LedgerMessage) Record(seq int) model.TransactionRecord {
	return model.TransactionRecord{
		Account:    *m.Account,
		Other:      m.Other,
		Amount:     *m.Amount,
		Mode:       model.Mode(*m.Mode),
		SequenceID: seq,
	}
}

func decodeMessage(body []byte) (LedgerMessage, error) {
	var msg LedgerMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, err
	}
	switch {
	case msg.Account == nil:
		return msg, errors.New("missing account")
	case msg.Amount == nil:
		return msg, errors.New("missing amount")
	case msg.Mode == nil:
		return msg, errors.New("missing mode")
	}
	return msg, nil
}

func encodeRecord(r model.TransactionRecord) ([]byte, error) {
	mode := int(r.Mode)
	return json.Marshal(LedgerMessage{
		Account: &r.Account,
		Other:   r.Other,
		Amount:  &r.Amount,
		Mode:    &mode,
	})
}

// Client holds one RabbitMQ connection and channel with the ledger queue declared.
type Client struct {
	cfg config.RabbitConfig
	log *logrus.Logger

	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
}

// New dials RabbitMQ, retrying with a growing delay, and declares the queue.
func New(ctx context.Context, cfg config.RabbitConfig, log *logrus.Logger) (*Client, error) {
	c := &Client{cfg: cfg, log: log}

	var err error
	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		if err = c.connect(); err == nil {
			return c, nil
		}

		delay := reconnectDelay * time.Duration(attempt)
		log.WithFields(logrus.Fields{
			"attempt": attempt,
			"delay":   delay,
			"error":   err,
		}).Warn("connection to RabbitMQ failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("failed to connect: %w", err)
}

func (c *Client) connect() error {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%d%s",
		c.cfg.User, c.cfg.Password, c.cfg.Host, c.cfg.Port, c.cfg.VHost)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		c.cfg.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = ch
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"host":  c.cfg.Host,
		"queue": c.cfg.Queue,
	}).Info("connected to RabbitMQ")

	return nil
}

// Drain pulls every message currently on the queue and returns them as
// records numbered in delivery order. It stops at the first empty get: the
// queue is expected to be fully loaded before a run starts. Malformed
// messages are rejected without requeue and skipped.
func (c *Client) Drain(ctx context.Context) ([]model.TransactionRecord, error) {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()

	if channel == nil {
		return nil, fmt.Errorf("channel is not initialized")
	}

	var records []model.TransactionRecord
	for {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		msg, ok, err := channel.Get(c.cfg.Queue, false)
		if err != nil {
			return records, fmt.Errorf("failed to get message: %w", err)
		}
		if !ok {
			break
		}

		payload, err := decodeMessage(msg.Body)
		if err != nil {
			c.log.WithFields(logrus.Fields{
				"error": err,
				"body":  string(msg.Body),
			}).Error("failed to decode ledger message")

			_ = msg.Nack(false, false)
			continue
		}

		records = append(records, payload.Record(len(records)))
		if err := msg.Ack(false); err != nil {
			c.log.WithError(err).Warn("failed to ack message")
		}
	}

	c.log.WithFields(logrus.Fields{
		"queue":   c.cfg.Queue,
		"records": len(records),
	}).Info("ledger queue drained")

	return records, nil
}

// Publish puts records on the queue as persistent JSON messages, in order.
func (c *Client) Publish(ctx context.Context, records []model.TransactionRecord) error {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()

	if channel == nil {
		return fmt.Errorf("channel is not initialized")
	}

	for _, r := range records {
		body, err := encodeRecord(r)
		if err != nil {
			return fmt.Errorf("failed to encode ledger %d: %w", r.SequenceID, err)
		}

		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		err = channel.PublishWithContext(pubCtx,
			"",          // default exchange
			c.cfg.Queue, // routing key
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
			})
		cancel()
		if err != nil {
			return fmt.Errorf("failed to publish ledger %d: %w", r.SequenceID, err)
		}
	}

	c.log.WithFields(logrus.Fields{
		"queue":   c.cfg.Queue,
		"records": len(records),
	}).Info("ledger published")

	return nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	c.log.Info("RabbitMQ client closed")
}
