package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

type captureWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (c *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msgs...)
	return nil
}

func (c *captureWriter) Close() error {
	c.closed = true
	return nil
}

func TestNotify_WritesKeyedJSON(t *testing.T) {
	w := &captureWriter{}
	p := newPublisher(w, nil)
	at := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

	err := p.Notify(context.Background(), domain.StatusChange{
		Ref:        domain.VersionRef{ClientID: "c1", CampaignID: "cp1", VersionID: "v1"},
		DocumentID: "doc-1",
		RunID:      "run-1",
		Status:     domain.DocumentError,
		Message:    "Spreadsheet not found",
		At:         at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "doc-1", string(msg.Key))
	assert.Equal(t, "status", msg.Headers[0].Key)
	assert.Equal(t, "error", string(msg.Headers[0].Value))

	var ev StatusEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, "cp1", ev.CampaignID)
	assert.Equal(t, "error", ev.Status)
	assert.Equal(t, "Spreadsheet not found", ev.Message)
	assert.True(t, ev.At.Equal(at))
}

func TestNotify_WrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newPublisher(&captureWriter{err: boom}, nil)

	err := p.Notify(context.Background(), domain.StatusChange{DocumentID: "doc-1"})
	assert.ErrorIs(t, err, boom)
}

func TestClose(t *testing.T) {
	w := &captureWriter{}
	require.NoError(t, newPublisher(w, nil).Close())
	assert.True(t, w.closed)
}
