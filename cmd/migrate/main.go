package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/k3ss/backend/internal/config"
	"github.com/k3ss/backend/internal/logger"
	"github.com/k3ss/backend/internal/memory"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: migrate <command> [options]")
		fmt.Println("Commands:")
		fmt.Println("  init     - create the SQLite backup schema")
		fmt.Println("  archive  - copy pending stream entries from Redis to SQLite")
		fmt.Println("\nOptions:")
		fmt.Println("  --path <path>  - Override the SQLite database path")
		os.Exit(1)
	}

	command := os.Args[1]

	// load environment variables
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	sqlitePath := parsePathFlag(command, cfg.SQLitePath)

	switch command {
	case "init":
		if err := initSchema(sqlitePath); err != nil {
			logger.Fatal("failed to initialize schema", "error", err)
		}

	case "archive":
		if err := archivePending(cfg, sqlitePath); err != nil {
			logger.Fatal("failed to archive stream entries", "error", err)
		}

	default:
		logger.Fatal("unknown command", "command", command)
	}
}

// parses the optional --path override for the given subcommand
func parsePathFlag(command, defaultPath string) string {
	args := os.Args[2:]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	path := fs.String("path", defaultPath, "path to the SQLite database file")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return *path
}

// creates the database file and schema if they do not exist yet
func initSchema(path string) error {
	sqlite, err := memory.NewSQLiteStore(path)
	if err != nil {
		return err
	}

	defer sqlite.Close() //nolint:errcheck,gosec // best-effort cleanup

	logger.Info("sqlite schema ready", "path", path)

	return nil
}

// runs a single archive pass over every project with unarchived entries
func archivePending(cfg *config.Config, path string) error {
	ctx := context.Background()

	stream, err := memory.NewStreamStore(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	defer stream.Close() //nolint:errcheck,gosec // best-effort cleanup

	sqlite, err := memory.NewSQLiteStore(path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite backup: %w", err)
	}

	defer sqlite.Close() //nolint:errcheck,gosec // best-effort cleanup

	projects, err := stream.DirtyProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending projects: %w", err)
	}

	if len(projects) == 0 {
		logger.Info("nothing to archive")
		return nil
	}

	archiver := memory.NewArchiver(stream, sqlite, time.Minute)

	for _, project := range projects {
		if err := archiver.ArchiveProject(ctx, project); err != nil {
			return fmt.Errorf("failed to archive project %s: %w", project, err)
		}

		logger.Info("project archived", "project", project)
	}

	return nil
}
