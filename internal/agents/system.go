package agents

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/agent-meet/pkg/pagination"
)

// System is the remote operation contract for agents.
type System interface {
	Create(ctx context.Context, cmd Command) (*Agent, error)
	Update(ctx context.Context, id uuid.UUID, cmd Command) (*Agent, error)
	Remove(ctx context.Context, id uuid.UUID) error
	GetOne(ctx context.Context, id uuid.UUID) (*Agent, error)
	GetMany(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Agent], error)
}
