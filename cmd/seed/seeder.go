// Package main provides the seed command for populating the database with
// demo agents and meetings. Seeders run individually or together within a
// single transaction.
package main

import (
	"context"
	"database/sql"
	"fmt"
)

// Seeder defines the interface for database seeders.
type Seeder interface {
	// Name returns the unique identifier for this seeder.
	Name() string

	Description() string

	// Seed executes the seeding logic within the provided transaction.
	Seed(ctx context.Context, tx *sql.Tx, data *SeedData) error
}

// seeders run in order; meetings reference agents by name.
var seeders = []Seeder{
	&AgentSeeder{},
	&MeetingSeeder{},
}

func getSeeder(name string) (Seeder, bool) {
	for _, s := range seeders {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// runSeeders executes the named seeders, or all of them when names is empty,
// within one transaction. Any failure rolls back the whole run.
func runSeeders(ctx context.Context, db *sql.DB, data *SeedData, names []string) error {
	run := seeders
	if len(names) > 0 {
		run = make([]Seeder, 0, len(names))
		for _, name := range names {
			s, ok := getSeeder(name)
			if !ok {
				return fmt.Errorf("seeder not found: %s", name)
			}
			run = append(run, s)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for _, s := range run {
		if err := s.Seed(ctx, tx, data); err != nil {
			tx.Rollback()
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
