// Aplicador de migraciones: ejecuta los .sql de migrations/ en orden
// lexicográfico y registra cada uno en schema_migrations para no repetirlo.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/Gonmore/farmasnt-sub004/pkg/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DB.ConnectionString())
	if err != nil {
		fail("conexión a PostgreSQL: %v", err)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		fail("crear schema_migrations: %v", err)
	}

	entries, err := os.ReadDir("migrations")
	if err != nil {
		fail("leer migrations/: %v", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var applied bool
		err := pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&applied)
		if err != nil {
			fail("consultar schema_migrations: %v", err)
		}
		if applied {
			continue
		}

		sqlBytes, err := os.ReadFile(filepath.Join("migrations", name))
		if err != nil {
			fail("leer %s: %v", name, err)
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			fail("abrir transacción: %v", err)
		}
		if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback(ctx)
			fail("aplicar %s: %v", name, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback(ctx)
			fail("registrar %s: %v", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			fail("commit %s: %v", name, err)
		}
		fmt.Printf("aplicada %s\n", name)
	}
	fmt.Println("migraciones al día")
}

func fail(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
	os.Exit(1)
}
