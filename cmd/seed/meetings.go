package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MeetingSeeder saves meetings for agents that already exist.
type MeetingSeeder struct{}

func (s *MeetingSeeder) Name() string {
	return "meetings"
}

func (s *MeetingSeeder) Description() string {
	return "Seeds meetings assigned to seeded agents"
}

// Seed resolves each meeting's agent by name. A meeting with the same name
// and agent has its status updated instead of being inserted again.
func (s *MeetingSeeder) Seed(ctx context.Context, tx *sql.Tx, data *SeedData) error {
	for _, m := range data.Meetings {
		agentID, err := s.agentID(ctx, tx, m.Agent)
		if err != nil {
			return fmt.Errorf("meeting %s: %w", m.Name, err)
		}
		if err := s.save(ctx, tx, agentID, m); err != nil {
			return fmt.Errorf("save meeting %s: %w", m.Name, err)
		}
	}
	return nil
}

func (s *MeetingSeeder) agentID(ctx context.Context, tx *sql.Tx, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRowContext(ctx, `SELECT id FROM agents WHERE name = $1`, strings.TrimSpace(name)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("agent %q not found", name)
	}
	return id, err
}

func (s *MeetingSeeder) save(ctx context.Context, tx *sql.Tx, agentID uuid.UUID, m MeetingSeed) error {
	const update = `
		UPDATE meetings SET status = $3, updated_at = NOW()
		WHERE name = $1 AND agent_id = $2`

	res, err := tx.ExecContext(ctx, update, m.Name, agentID, m.Status)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}

	const insert = `
		INSERT INTO meetings (name, agent_id, status)
		VALUES ($1, $2, $3)`

	_, err = tx.ExecContext(ctx, insert, m.Name, agentID, m.Status)
	return err
}
