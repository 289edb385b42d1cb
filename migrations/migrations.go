// Package migrations embeds the SQL schema and applies it in order.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed *.sql
var files embed.FS

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Up applies every *.up.sql file in ascending order.
// Statements are idempotent, so Up is safe to run on every start.
func Up(ctx context.Context, db Execer) error {
	names, err := list(".up.sql")
	if err != nil {
		return err
	}
	return apply(ctx, db, names)
}

// Down applies every *.down.sql file in descending order.
func Down(ctx context.Context, db Execer) error {
	names, err := list(".down.sql")
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return apply(ctx, db, names)
}

// Reset drops and recreates the whole schema. Used by integration tests.
func Reset(ctx context.Context, db Execer) error {
	if err := Down(ctx, db); err != nil {
		return err
	}
	return Up(ctx, db)
}

func list(suffix string) ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func apply(ctx context.Context, db Execer, names []string) error {
	for _, name := range names {
		sql, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
