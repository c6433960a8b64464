package queue

import (
	"context"
	"sync"

	"islaapp-backend/internal/shared/telemetry"
)

// MemoryClient records messages in process. Used when no queue URL is configured.
type MemoryClient struct {
	mu       sync.Mutex
	messages []Message
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

func (m *MemoryClient) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := EncodeMessage(msg); err != nil {
		return err
	}
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()
	telemetry.Info("queue.memory_send", map[string]any{
		"service_request_id": msg.ServiceRequestID,
		"retry_failed":       msg.RetryFailed,
	})
	return nil
}

// Messages returns a copy of everything sent so far.
func (m *MemoryClient) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

var _ Client = (*MemoryClient)(nil)
