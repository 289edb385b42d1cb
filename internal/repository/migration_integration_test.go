//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/happeningnu/happening/internal/testutil"
	"github.com/happeningnu/happening/migrations"
)

func TestIntegrationMigration_Schema(t *testing.T) {
	ctx, pool := testutil.NewTestPool(t)

	schema := map[string][]string{
		"users":       {"id", "username", "email", "password", "joined_at"},
		"events":      {"id", "title", "location", "category", "date", "url", "created_at", "user_id"},
		"user_events": {"id", "user_id", "event_id", "registered_at"},
		"sessions":    {"id", "user_id", "created_at", "expires_at"},
	}

	for table, columns := range schema {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Fatalf("table %q should exist after migrations", table)
			}

			for _, col := range columns {
				ok, err := columnExists(ctx, pool, table, col)
				if err != nil {
					t.Fatalf("columnExists failed: %v", err)
				}
				if !ok {
					t.Errorf("column %q should exist in %s", col, table)
				}
			}
		})
	}
}

func TestIntegrationMigration_Constraints(t *testing.T) {
	ctx, pool := testutil.NewTestPool(t)

	var userID, eventID int64
	if err := pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password) VALUES ('alice', 'a@example.com', 'x') RETURNING id`,
	).Scan(&userID); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	_, err := pool.Exec(ctx, `INSERT INTO users (username, email, password) VALUES ('alice2', 'a@example.com', 'y')`)
	if !isUniqueViolation(err) {
		t.Errorf("duplicate email should violate a unique constraint, got %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO events (title, location, category, date, url, user_id) VALUES ('t', 'Lund', 'Social', '2025-06-01', 'https://example.com', 999999)`)
	if !isForeignKeyViolation(err) {
		t.Errorf("event with unknown owner should violate a foreign key, got %v", err)
	}

	if err := pool.QueryRow(ctx,
		`INSERT INTO events (title, location, category, date, url, user_id) VALUES ('t', 'Lund', 'Social', '2025-06-01', 'https://example.com', $1) RETURNING id`,
		userID,
	).Scan(&eventID); err != nil {
		t.Fatalf("insert event: %v", err)
	}

	if _, err := pool.Exec(ctx, `INSERT INTO user_events (user_id, event_id) VALUES ($1, $2)`, userID, eventID); err != nil {
		t.Fatalf("insert attendance: %v", err)
	}
	_, err = pool.Exec(ctx, `INSERT INTO user_events (user_id, event_id) VALUES ($1, $2)`, userID, eventID)
	if !isUniqueViolation(err) {
		t.Errorf("duplicate attendance should violate a unique constraint, got %v", err)
	}

	if _, err := pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, eventID); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	var n int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_events WHERE event_id = $1`, eventID).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("attendance should cascade with its event, %d rows left", n)
	}
}

func TestIntegrationMigration_DownThenUp(t *testing.T) {
	ctx, pool := testutil.NewTestPool(t)

	if err := migrations.Down(ctx, pool); err != nil {
		t.Fatalf("Down failed: %v", err)
	}
	for _, table := range []string{"users", "events", "user_events", "sessions"} {
		exists, err := tableExists(ctx, pool, table)
		if err != nil {
			t.Fatalf("tableExists failed: %v", err)
		}
		if exists {
			t.Errorf("table %q should not exist after rollback", table)
		}
	}

	if err := migrations.Up(ctx, pool); err != nil {
		t.Fatalf("Up after Down failed: %v", err)
	}
	// IF NOT EXISTS keeps a second run harmless.
	if err := migrations.Up(ctx, pool); err != nil {
		t.Fatalf("second Up failed: %v", err)
	}
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}
