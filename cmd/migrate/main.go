package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Rrens/salespulse/internal/config"
	"github.com/Rrens/salespulse/internal/logging"
	"github.com/Rrens/salespulse/internal/repository/postgres"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const usage = `usage: migrate [up | down [N] | version]`

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if _, err := logging.Setup(config.LoggingConfig{Level: cfg.Logging.Level, Format: "console"}, false); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	source := os.Getenv("MIGRATIONS_SOURCE")
	if source == "" {
		source = "file://migrations"
	}
	dsn := cfg.Database.DSN()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up":
		err = postgres.RunMigrations(dsn, source)
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps < 1 {
				fmt.Fprintln(os.Stderr, usage)
				os.Exit(2)
			}
		}
		err = postgres.RollbackMigrations(dsn, source, steps)
	case "version":
		var version uint
		var dirty bool
		version, dirty, err = postgres.MigrationVersion(dsn, source)
		if err == nil {
			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Database schema version")
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("Migration failed")
	}
}
