package main

import (
	"context"
	"database/sql"
	"fmt"
)

// AgentSeeder saves agents keyed by their unique name.
type AgentSeeder struct{}

func (s *AgentSeeder) Name() string {
	return "agents"
}

func (s *AgentSeeder) Description() string {
	return "Seeds agents and their instructions"
}

// Seed inserts or updates each agent, so repeated runs are idempotent.
func (s *AgentSeeder) Seed(ctx context.Context, tx *sql.Tx, data *SeedData) error {
	const query = `
		INSERT INTO agents (name, instructions)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			instructions = EXCLUDED.instructions,
			updated_at = NOW()`

	for _, a := range data.Agents {
		if _, err := tx.ExecContext(ctx, query, a.Name, a.Instructions); err != nil {
			return fmt.Errorf("save agent %s: %w", a.Name, err)
		}
	}
	return nil
}
