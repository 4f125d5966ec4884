package store

import (
	"context"

	"github.com/me/seqqc/pkg/model"
)

// Store persists the history of external command invocations.
type Store interface {
	RecordInvocation(ctx context.Context, inv *model.Invocation) error
	GetInvocation(ctx context.Context, id string) (*model.Invocation, error)
	ListInvocations(ctx context.Context, opts model.ListOptions) ([]*model.Invocation, int, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
