package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/JaimeStill/agent-meet/internal/config"
	"github.com/JaimeStill/agent-meet/pkg/database"
	"github.com/JaimeStill/agent-meet/pkg/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	var (
		configFile = flags.StringP("config", "c", config.BaseConfigFile, "base configuration file")
		file       = flags.StringP("file", "f", "", "external seed file (overrides embedded)")
		only       = flags.StringSlice("only", nil, "seeders to run (default: all)")
		list       = flags.Bool("list", false, "list available seeders")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *list {
		fmt.Println("Available seeders:")
		for _, s := range seeders {
			fmt.Printf("  - %s: %s\n", s.Name(), s.Description())
		}
		return nil
	}

	data, err := loadSeedData(*file)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFile(*configFile)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	logger := logging.New(&cfg.Logging)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Connection().Close()

	ctx := context.Background()
	if err := db.Ping(ctx); err != nil {
		return err
	}

	if err := runSeeders(ctx, db.Connection(), data, *only); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	logger.Info("seeding complete", "agents", len(data.Agents), "meetings", len(data.Meetings))
	return nil
}
