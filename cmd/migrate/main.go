// Утилита миграций схемы киоска. Применяет встроенные SQL-миграции
// вверх или вниз и печатает текущую версию схемы.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/kiosk/internal/storage/postgres"
)

const migrateTimeout = 30 * time.Second

func main() {
	direction := flag.String("direction", "up", "migration direction: up|down|status")
	dsn := flag.String("dsn", "", "PostgreSQL DSN (fallback: KIOSK_POSTGRES_DSN)")
	flag.Parse()

	if err := run(*direction, *dsn); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(direction, dsn string) error {
	direction = strings.ToLower(strings.TrimSpace(direction))
	switch direction {
	case "up", "down", "status":
	default:
		return fmt.Errorf("unsupported direction: %s (use up|down|status)", direction)
	}

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("KIOSK_POSTGRES_DSN"))
	}
	if dsn == "" {
		return fmt.Errorf("KIOSK_POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open postgres store: %w", err)
	}
	defer store.Close()

	var label string
	switch direction {
	case "up":
		label = "migrate up ok"
		err = store.MigrateUp(ctx)
	case "down":
		label = "migrate down ok"
		err = store.MigrateDown(ctx)
	case "status":
		label = "migration status"
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", direction, err)
	}

	version, applied, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	fmt.Printf("%s: version=%d applied=%d\n", label, version, applied)
	return nil
}
