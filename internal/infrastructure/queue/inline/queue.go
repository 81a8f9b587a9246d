// Package inline delivers "document accepted" events synchronously in the
// publishing goroutine. It is the default when no broker is configured.
package inline

import (
	"context"
	"sync"
)

type Handler func(context.Context, string) error

type Queue struct {
	mu      sync.RWMutex
	handler Handler
}

func New() *Queue {
	return &Queue{}
}

// PublishDocumentAccepted runs the subscribed handler and returns its error.
// Without a subscriber the event is dropped.
func (q *Queue) PublishDocumentAccepted(ctx context.Context, documentID string) error {
	q.mu.RLock()
	handler := q.handler
	q.mu.RUnlock()

	if handler == nil {
		return nil
	}
	return handler(ctx, documentID)
}

// SubscribeDocumentAccepted registers handler and returns immediately.
func (q *Queue) SubscribeDocumentAccepted(_ context.Context, handler func(context.Context, string) error) error {
	q.mu.Lock()
	q.handler = handler
	q.mu.Unlock()
	return nil
}
