package meetings

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/agent-meet/pkg/pagination"
	"github.com/JaimeStill/agent-meet/pkg/query"
	"github.com/JaimeStill/agent-meet/pkg/repository"
)

const agentFKey = "meetings_agent_id_fkey"

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the PostgreSQL-backed meetings System.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "meetings"),
		pagination: pagination,
	}
}

func (r *repo) GetMany(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Meeting], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "AgentName").
		OrderBy(defaultSort, true)

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count meetings: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	meetings, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanMeeting)
	if err != nil {
		return nil, fmt.Errorf("query meetings: %w", err)
	}

	result := pagination.NewPageResult(meetings, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) GetOne(ctx context.Context, id uuid.UUID) (*Meeting, error) {
	q, args := query.NewBuilder(projection, defaultSort).BuildSingle("ID", id)

	m, err := repository.QueryOne(ctx, r.db, q, args, scanMeeting)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &m, nil
}

func (r *repo) Create(ctx context.Context, cmd Command) (*Meeting, error) {
	status := cmd.Status
	if status == "" {
		status = StatusUpcoming
	}

	q := `
		WITH inserted AS (
			INSERT INTO meetings (name, agent_id, status)
			VALUES ($1, $2, $3)
			RETURNING id, name, agent_id, status, created_at, updated_at
		)
		SELECT i.id, i.name, i.agent_id, a.name, i.status, i.created_at, i.updated_at
		FROM inserted i
		JOIN agents a ON a.id = i.agent_id`

	m, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Meeting, error) {
		return repository.QueryOne(ctx, tx, q, []any{cmd.Name, cmd.AgentID, string(status)}, scanMeeting)
	})
	if err != nil {
		return nil, r.mapError(err)
	}

	r.logger.Info("meeting created", "id", m.ID, "name", m.Name, "agent_id", m.AgentID)
	return &m, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd Command) (*Meeting, error) {
	q := `
		WITH updated AS (
			UPDATE meetings
			SET name = $1, agent_id = $2, status = COALESCE(NULLIF($3, ''), status), updated_at = NOW()
			WHERE id = $4
			RETURNING id, name, agent_id, status, created_at, updated_at
		)
		SELECT u.id, u.name, u.agent_id, a.name, u.status, u.created_at, u.updated_at
		FROM updated u
		JOIN agents a ON a.id = u.agent_id`

	m, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Meeting, error) {
		return repository.QueryOne(ctx, tx, q, []any{cmd.Name, cmd.AgentID, string(cmd.Status), id}, scanMeeting)
	})
	if err != nil {
		return nil, r.mapError(err)
	}

	r.logger.Info("meeting updated", "id", m.ID, "name", m.Name, "status", m.Status)
	return &m, nil
}

func (r *repo) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		err := repository.ExecExpectOne(ctx, tx, "DELETE FROM meetings WHERE id = $1", id)
		return struct{}{}, err
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("meeting removed", "id", id)
	return nil
}

func (r *repo) mapError(err error) error {
	if repository.IsForeignKeyViolation(err, agentFKey) {
		return ErrAgentNotFound
	}
	if repository.IsCheckViolation(err) {
		return ErrInvalidStatus
	}
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}
