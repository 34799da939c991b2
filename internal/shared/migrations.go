package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// migrationFile matches names like 0000_create_local_storage_up.sql.
var migrationFile = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)_(up|down)\.sql$`)

// Migration is one versioned change to the local storage schema.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

func loadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	byVersion := map[int]*Migration{}
	for _, entry := range entries {
		m := migrationFile.FindStringSubmatch(entry.Name())
		if entry.IsDir() || m == nil {
			continue
		}
		version, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("bad migration version in %s: %w", entry.Name(), err)
		}
		content, err := migrationFiles.ReadFile(path.Join("sql", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: m[2]}
			byVersion[version] = mig
		}
		if m[3] == "up" {
			mig.Up = string(content)
		} else {
			mig.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		if mig.Up == "" || mig.Down == "" {
			return nil, fmt.Errorf("migration %04d_%s needs both up and down files", mig.Version, mig.Name)
		}
		migrations = append(migrations, *mig)
	}
	slices.SortFunc(migrations, func(a, b Migration) int { return a.Version - b.Version })
	return migrations, nil
}

// RunMigrations applies every migration newer than the recorded schema version.
func RunMigrations(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	for _, mig := range migrations {
		if mig.Version <= current {
			continue
		}
		err := inTx(db, mig.Up, "INSERT INTO schema_migrations (version, name) VALUES (?, ?)", mig.Version, mig.Name)
		if err != nil {
			return fmt.Errorf("migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
	}
	return nil
}

// RollbackMigration reverts the newest applied migration.
func RollbackMigration(db *sql.DB) error {
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current < 0 {
		return fmt.Errorf("%w: no migrations to roll back", ErrStorage)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(migrations, func(m Migration) bool { return m.Version == current })
	if i < 0 {
		return fmt.Errorf("%w: migration version %d not found", ErrStorage, current)
	}
	mig := migrations[i]
	if err := inTx(db, mig.Down, "DELETE FROM schema_migrations WHERE version = ?", mig.Version); err != nil {
		return fmt.Errorf("rollback %04d_%s: %w", mig.Version, mig.Name, err)
	}
	return nil
}

// SchemaVersion returns the newest applied migration version, or -1 when none has run.
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), -1) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// inTx runs script and then the bookkeeping statement in one transaction.
func inTx(db *sql.DB, script, record string, args ...any) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(script) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%w\nstatement: %s", err, stmt)
		}
	}
	if _, err := tx.Exec(record, args...); err != nil {
		return err
	}
	return tx.Commit()
}

// splitStatements drops "--" comments and splits script on semicolons.
func splitStatements(script string) []string {
	var b strings.Builder
	for line := range strings.Lines(script) {
		if i := strings.Index(line, "--"); i >= 0 {
			line = line[:i] + "\n"
		}
		b.WriteString(line)
	}

	var stmts []string
	for _, stmt := range strings.Split(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
