package ports

import (
	"context"
	"io"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
)

// KeyValueStore persists opaque values under string keys. Get reports a
// missing key with ok=false and a nil error.
//
// CompareAndSwap writes value only while the stored value still equals old
// (or the key is still missing when oldOK is false) and reports whether it
// wrote. The check holds across processes sharing the same store.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	CompareAndSwap(ctx context.Context, key string, old []byte, oldOK bool, value []byte) (swapped bool, err error)
}

// PortfolioRepository loads and atomically rewrites the single portfolio value.
// Update may run fn more than once when another writer got in first, so fn
// must derive everything from the value it is given.
type PortfolioRepository interface {
	Load(ctx context.Context) (domain.PortfolioData, error)
	Update(ctx context.Context, fn func(*domain.PortfolioData) error) (domain.PortfolioData, error)
}

// MessageQueue publishes/consumes "document accepted" events.
type MessageQueue interface {
	PublishDocumentAccepted(ctx context.Context, documentID string) error
	SubscribeDocumentAccepted(ctx context.Context, handler func(context.Context, string) error) error
}

// PortfolioRenderer writes a built view as one export format.
type PortfolioRenderer interface {
	Format() domain.ExportFormat
	Extension() string
	Render(ctx context.Context, view domain.PortfolioView, w io.Writer) error
}
