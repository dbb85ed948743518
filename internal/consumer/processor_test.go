package consumer

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	messages  []kafka.Message
	committed []kafka.Message
	commitErr error
	fetchErr  error
}

func (s *stubReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if s.fetchErr != nil {
		err := s.fetchErr
		s.fetchErr = nil
		return kafka.Message{}, err
	}
	if len(s.messages) == 0 {
		return kafka.Message{}, context.Canceled
	}
	msg := s.messages[0]
	s.messages = s.messages[1:]
	return msg, nil
}

func (s *stubReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if s.commitErr != nil {
		return s.commitErr
	}
	s.committed = append(s.committed, msgs...)
	return nil
}

func (s *stubReader) Close() error { return nil }

type stubHandler struct {
	calls []Message
	err   error
}

func (s *stubHandler) Handle(ctx context.Context, msg Message) error {
	s.calls = append(s.calls, msg)
	return s.err
}

func wireMessage(topic, eventType, tenantID string, schemaID uint32, payload []byte) kafka.Message {
	value := make([]byte, 5+len(payload))
	value[0] = 0
	binary.BigEndian.PutUint32(value[1:5], schemaID)
	copy(value[5:], payload)
	return kafka.Message{
		Topic: topic,
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "tenant_id", Value: []byte(tenantID)},
			{Key: "schema_subject", Value: []byte(eventType + "-value")},
		},
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestProcessorCommitsAfterSuccessfulHandle(t *testing.T) {
	reader := &stubReader{messages: []kafka.Message{
		wireMessage("training_sessions", "session.recorded", "tenant-1", 7, []byte(`{"session_id":"abc"}`)),
	}}
	handler := &stubHandler{}

	processor := NewProcessor(reader, handler, WithLogger(quietLogger()))
	err := processor.Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Len(t, handler.calls, 1)
	decoded := handler.calls[0]
	require.Equal(t, "session.recorded", decoded.EventType)
	require.Equal(t, "tenant-1", decoded.TenantID)
	require.Equal(t, "session.recorded-value", decoded.SchemaSubject)
	require.Equal(t, 7, decoded.SchemaID)
	require.JSONEq(t, `{"session_id":"abc"}`, string(decoded.Payload))
	require.Len(t, reader.committed, 1)
}

func TestProcessorSkipsCommitOnHandlerError(t *testing.T) {
	reader := &stubReader{messages: []kafka.Message{
		wireMessage("training_sessions", "session.recorded", "tenant-1", 7, []byte(`{}`)),
	}}
	handler := &stubHandler{err: errors.New("db unavailable")}

	processor := NewProcessor(reader, handler, WithLogger(quietLogger()))
	err := processor.Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Len(t, handler.calls, 1)
	require.Empty(t, reader.committed)
}

func TestProcessorCommitsMalformedMessages(t *testing.T) {
	reader := &stubReader{messages: []kafka.Message{
		{Topic: "training_sessions", Value: []byte{0, 1}},
	}}
	handler := &stubHandler{}

	processor := NewProcessor(reader, handler, WithLogger(quietLogger()))
	err := processor.Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Empty(t, handler.calls)
	require.Len(t, reader.committed, 1)
}

func TestProcessorCommitsMessagesMissingEventType(t *testing.T) {
	msg := wireMessage("training_sessions", "session.recorded", "tenant-1", 7, []byte(`{}`))
	msg.Headers = nil

	reader := &stubReader{messages: []kafka.Message{msg}}
	handler := &stubHandler{}

	processor := NewProcessor(reader, handler, WithLogger(quietLogger()))
	err := processor.Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Empty(t, handler.calls)
	require.Len(t, reader.committed, 1)
}

func TestProcessorContinuesAfterFetchError(t *testing.T) {
	reader := &stubReader{
		fetchErr: errors.New("broker hiccup"),
		messages: []kafka.Message{
			wireMessage("training_sessions", "session.recorded", "tenant-1", 7, []byte(`{}`)),
		},
	}
	handler := &stubHandler{}

	processor := NewProcessor(reader, handler, WithLogger(quietLogger()))
	err := processor.Run(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	require.Len(t, handler.calls, 1)
	require.Len(t, reader.committed, 1)
}
