package ports

import (
	"context"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

// EventPublisher emits file lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.FileEvent) error
}
