// Command migrate applies the embedded schema migrations to the configured
// PostgreSQL database.
//
// Usage:
//
//	migrate [--config config.toml] up|down|version
//	migrate [--config config.toml] steps N
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/JaimeStill/agent-meet/internal/config"
	"github.com/JaimeStill/agent-meet/internal/migrations"
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
	flags := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	configFile := flags.StringP("config", "c", config.BaseConfigFile, "base configuration file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	rest := flags.Args()
	if len(rest) == 0 {
		return fmt.Errorf("usage: migrate [--config file] up|down|version|steps N")
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
	conn := db.Connection()
	defer conn.Close()

	mg, err := database.NewMigrator(conn, migrations.FS, migrations.Dir, logger)
	if err != nil {
		return err
	}

	switch rest[0] {
	case "up":
		return mg.Run(database.Up)
	case "down":
		return mg.Run(database.Down)
	case "steps":
		if len(rest) < 2 {
			return fmt.Errorf("steps requires a count")
		}
		n, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("invalid step count %q: %w", rest[1], err)
		}
		return mg.Steps(n)
	case "version":
		v, dirty, err := mg.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q", rest[0])
	}
}
