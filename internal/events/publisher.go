// Package events publishes export document status transitions to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

// StatusEvent is the JSON payload of one status transition.
type StatusEvent struct {
	ClientID   string    `json:"clientId"`
	CampaignID string    `json:"campaignId"`
	VersionID  string    `json:"versionId"`
	DocumentID string    `json:"documentId"`
	RunID      string    `json:"runId"`
	Status     string    `json:"status"`
	Message    string    `json:"message,omitempty"`
	At         time.Time `json:"at"`
}

func eventFrom(c domain.StatusChange) StatusEvent {
	return StatusEvent{
		ClientID:   c.Ref.ClientID,
		CampaignID: c.Ref.CampaignID,
		VersionID:  c.Ref.VersionID,
		DocumentID: c.DocumentID,
		RunID:      c.RunID,
		Status:     string(c.Status),
		Message:    c.Message,
		At:         c.At.UTC(),
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes one message per status change, keyed by document id so
// a document's transitions stay ordered within a partition.
type Publisher struct {
	w      messageWriter
	logger *zap.Logger
}

// NewPublisher returns a synchronous publisher on topic.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newPublisher(w, logger)
}

func newPublisher(w messageWriter, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{w: w, logger: logger.With(zap.String("component", "status-events"))}
}

// Notify implements export.StatusNotifier.
func (p *Publisher) Notify(ctx context.Context, change domain.StatusChange) error {
	payload, err := json.Marshal(eventFrom(change))
	if err != nil {
		return fmt.Errorf("encoding status event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(change.DocumentID),
		Value: payload,
		Time:  change.At,
		Headers: []kafka.Header{
			{Key: "status", Value: []byte(change.Status)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing status event: %w", err)
	}
	p.logger.Debug("status event published",
		zap.String("document", change.DocumentID),
		zap.String("status", string(change.Status)))
	return nil
}

func (p *Publisher) Close() error {
	return p.w.Close()
}

// Nop discards every status change.
type Nop struct{}

func (Nop) Notify(context.Context, domain.StatusChange) error { return nil }
func (Nop) Close() error                                     { return nil }
