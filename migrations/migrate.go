// Package migrations применяет встроенные SQL-миграции при старте сервиса.
// Применённые файлы фиксируются в таблице schema_migrations_court_booking,
// поэтому повторный запуск безопасен.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/lib/pq"
)

//go:embed *.sql
var files embed.FS

const migrationsTable = "schema_migrations_court_booking"

// Up применяет все ещё не применённые миграции в лексикографическом порядке
func Up(db *sql.DB) error {
	if db == nil {
		return errors.New("migrations: db is required")
	}

	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return fmt.Errorf("migrations: list embedded files: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		applied, err := isApplied(db, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		sqlBytes, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("migrations: read %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migrations: begin tx for %s: %w", name, err)
		}

		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			if !isIgnorableError(err) {
				return fmt.Errorf("migrations: apply %s: %w", name, err)
			}
			// Схема уже существует на базе, мигрированной до внедрения
			// этой таблицы: фиксируем файл как применённый.
			if err := markApplied(db, name); err != nil {
				return fmt.Errorf("migrations: record %s after ignored error: %w", name, err)
			}
			continue
		}

		if _, err := tx.Exec(
			fmt.Sprintf(`INSERT INTO %s (filename) VALUES ($1)`, migrationsTable),
			name,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrations: record %s: %w", name, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrations: commit %s: %w", name, err)
		}
	}

	return nil
}

func ensureMigrationsTable(db *sql.DB) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	filename   TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, migrationsTable)

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("migrations: ensure table %s: %w", migrationsTable, err)
	}
	return nil
}

func isApplied(db *sql.DB, name string) (bool, error) {
	var exists bool
	if err := db.QueryRow(
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE filename = $1)`, migrationsTable),
		name,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("migrations: check %s: %w", name, err)
	}
	return exists, nil
}

func markApplied(db *sql.DB, name string) error {
	_, err := db.Exec(
		fmt.Sprintf(`INSERT INTO %s (filename) VALUES ($1) ON CONFLICT (filename) DO NOTHING`, migrationsTable),
		name,
	)
	return err
}

func isIgnorableError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	switch pqErr.Code {
	case "42P07", // duplicate_table
		"42710", // duplicate_object
		"42P06", // duplicate_schema
		"42701": // duplicate_column
		return true
	default:
		return false
	}
}
