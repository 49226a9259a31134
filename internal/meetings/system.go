package meetings

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/agent-meet/pkg/pagination"
)

// System is the remote operation contract for meetings.
type System interface {
	Create(ctx context.Context, cmd Command) (*Meeting, error)
	Update(ctx context.Context, id uuid.UUID, cmd Command) (*Meeting, error)
	Remove(ctx context.Context, id uuid.UUID) error
	GetOne(ctx context.Context, id uuid.UUID) (*Meeting, error)
	GetMany(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Meeting], error)
}
