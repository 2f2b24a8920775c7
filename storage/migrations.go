package storage

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
)

// SchemaVersion is the migration the title queries are written against.
const SchemaVersion int64 = 2

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embedMigrations embed.FS

// ErrSchemaMismatch is returned by Check when the store is not at SchemaVersion.
var ErrSchemaMismatch = errors.New("catalog schema mismatch")

// MigrationManager applies the embedded titles schema to a database.
type MigrationManager struct {
	db  *sql.DB
	log *log.Entry
}

func NewMigrationManager(db *sql.DB) *MigrationManager {
	return &MigrationManager{
		db:  db,
		log: log.WithField("component", "migrations"),
	}
}

func (m *MigrationManager) Initialize() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(m.log)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return errors.Wrap(err, "failed to set goose dialect")
	}

	return nil
}

// Up applies every pending migration.
func (m *MigrationManager) Up(ctx context.Context) error {
	from, err := m.Version(ctx)
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, m.db, migrationsDir); err != nil {
		return errors.Wrapf(err, "failed to migrate titles schema from version %d", from)
	}

	to, err := m.Version(ctx)
	if err != nil {
		return err
	}
	m.log.WithFields(log.Fields{"from": from, "to": to}).Debug("titles schema migrated")
	return nil
}

// Down rolls back the most recent migration.
func (m *MigrationManager) Down(ctx context.Context) error {
	from, err := m.Version(ctx)
	if err != nil {
		return err
	}
	if from == 0 {
		return errors.New("titles schema has no migration to roll back")
	}
	if err := goose.DownContext(ctx, m.db, migrationsDir); err != nil {
		return errors.Wrapf(err, "failed to roll back titles schema version %d", from)
	}
	m.log.WithField("from", from).Debug("titles schema rolled back")
	return nil
}

// Status prints the applied state of every embedded migration.
func (m *MigrationManager) Status(ctx context.Context) error {
	if err := goose.StatusContext(ctx, m.db, migrationsDir); err != nil {
		return errors.Wrap(err, "failed to get migration status")
	}
	return nil
}

func (m *MigrationManager) Version(ctx context.Context) (int64, error) {
	version, err := goose.GetDBVersionContext(ctx, m.db)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get titles schema version")
	}
	return version, nil
}

// Latest returns the highest embedded migration version.
func (m *MigrationManager) Latest() (int64, error) {
	migrations, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
	if err != nil {
		return 0, errors.Wrap(err, "failed to collect migrations")
	}
	last, err := migrations.Last()
	if err != nil {
		return 0, errors.Wrap(err, "no embedded migrations")
	}
	return last.Version, nil
}

// Check reports ErrSchemaMismatch unless the database is at SchemaVersion.
func (m *MigrationManager) Check(ctx context.Context) error {
	version, err := m.Version(ctx)
	if err != nil {
		return err
	}
	if version != SchemaVersion {
		return errors.Wrapf(ErrSchemaMismatch, "database is at version %d, queries need %d", version, SchemaVersion)
	}
	return nil
}

// Reset rolls back every migration.
func (m *MigrationManager) Reset(ctx context.Context) error {
	if err := goose.ResetContext(ctx, m.db, migrationsDir); err != nil {
		return errors.Wrap(err, "failed to reset titles schema")
	}
	m.log.Debug("titles schema reset")
	return nil
}
