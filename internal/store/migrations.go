package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/hyperengineering/stash/migrations"
	"github.com/pressly/goose/v3"
)

// goose configuration is package-global, so migration runs across actors are
// serialized.
var migrateMu sync.Mutex

// RunMigrations applies all pending migrations using goose and returns the
// names of the migration files it applied, in ascending version order.
// The goose ledger table records each migration as it completes, so a failed
// run resumes from the failing migration on the next attempt.
func RunMigrations(db *sql.DB) ([]string, error) {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("sqlite"); err != nil {
		return nil, fmt.Errorf("set dialect: %w", err)
	}

	before, err := goose.EnsureDBVersion(db)
	if err != nil {
		return nil, fmt.Errorf("read ledger version: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	applied, err := migrationNamesAfter(before)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}

	return applied, nil
}

// migrationNamesAfter lists embedded migration files whose version exceeds
// the given ledger version.
func migrationNamesAfter(version int64) ([]string, error) {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		v, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			continue
		}
		if v > version {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names, nil
}
