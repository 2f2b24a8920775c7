package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// MemoryDSN keeps the whole query engine in process memory.
const MemoryDSN = ":memory:"

const storeDSNFlag = "store-dsn"

// Columns accepted by CountBy.
const (
	ColumnCategory = "category"
	ColumnCountry  = "country"
	ColumnDirector = "director"
	ColumnRating   = "rating"
	ColumnYear     = "year"
)

var countableColumns = map[string]bool{
	ColumnCategory: true,
	ColumnCountry:  true,
	ColumnDirector: true,
	ColumnRating:   true,
	ColumnYear:     true,
}

// CountQuery describes a grouped count over one titles column.
type CountQuery struct {
	Column  string
	Exclude []string
	// Limit of zero returns every group.
	Limit int
	// ByKey orders groups by key ascending instead of count descending.
	ByKey bool
}

type SQLiteStorage struct {
	db  *sql.DB
	dsn string
}

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   storeDSNFlag,
			Usage:  "sqlite dsn of the query engine",
			Value:  MemoryDSN,
			EnvVar: "STORE_DSN",
		},
	)
}

// New creates and initializes storage from command line flags.
func New(c *cli.Context) (*SQLiteStorage, error) {
	s := NewSQLiteStorage(c.String(storeDSNFlag))
	if err := s.Initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open connects to the file backed store named by flags and leaves its schema
// as it is.
func Open(c *cli.Context) (*SQLiteStorage, error) {
	return OpenExisting(c.String(storeDSNFlag))
}

// OpenExisting connects to a persistent store without migrating it. In-memory
// DSNs are rejected.
func OpenExisting(dsn string) (*SQLiteStorage, error) {
	if isMemoryDSN(dsn) {
		return nil, errors.Errorf("store dsn %q is in memory, pass a file with --%s", dsn, storeDSNFlag)
	}

	s := NewSQLiteStorage(dsn)
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == "" || strings.Contains(dsn, MemoryDSN) || strings.Contains(dsn, "mode=memory")
}

func NewSQLiteStorage(dsn string) *SQLiteStorage {
	if dsn == "" {
		dsn = MemoryDSN
	}
	return &SQLiteStorage{dsn: dsn}
}

// Open connects to the database without touching its schema.
func (s *SQLiteStorage) Open() error {
	db, err := sql.Open("sqlite3", s.dsn)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}

	// Every new connection to :memory: is a separate empty database.
	db.SetMaxOpenConns(1)
	s.db = db
	return nil
}

// Initialize opens the database and migrates it to SchemaVersion.
func (s *SQLiteStorage) Initialize() error {
	if err := s.Open(); err != nil {
		return err
	}

	ctx := context.Background()
	migrationManager := NewMigrationManager(s.db)
	if err := migrationManager.Initialize(); err != nil {
		return errors.Wrap(err, "failed to initialize migrations")
	}

	if err := migrationManager.Up(ctx); err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}

	if err := migrationManager.Check(ctx); err != nil {
		return err
	}

	log.WithField("dsn", s.dsn).Info("sqlite query engine initialized")
	return nil
}

// ReplaceTitles swaps the stored catalog for titles in a single transaction.
// Row ids follow slice order.
func (s *SQLiteStorage) ReplaceTitles(ctx context.Context, titles []Title) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM title_tags`); err != nil {
		return errors.Wrap(err, "failed to clear title tags")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM titles`); err != nil {
		return errors.Wrap(err, "failed to clear titles")
	}

	titleStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO titles (row_id, title, director, cast_members, country, release_date, year,
		rating, duration, category, listed_in)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare title insert")
	}
	defer titleStmt.Close()

	tagStmt, err := tx.PrepareContext(ctx, `INSERT INTO title_tags (row_id, kind, name) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare tag insert")
	}
	defer tagStmt.Close()

	for i, t := range titles {
		rowID := i + 1

		var releaseDate *string
		if t.ReleaseDate != nil {
			formatted := t.ReleaseDate.Format(DateLayout)
			releaseDate = &formatted
		}

		_, err := titleStmt.ExecContext(ctx, rowID, t.Title, t.Director, t.Cast, t.Country, releaseDate,
			t.Year, t.Rating, t.Duration, t.Category, t.ListedIn)
		if err != nil {
			return errors.Wrapf(err, "failed to insert title at row %d", rowID)
		}

		tags := map[string][]string{TagCast: SplitNames(t.Cast)}
		if t.ListedIn != nil {
			tags[TagGenre] = SplitNames(*t.ListedIn)
		}
		for _, kind := range []string{TagCast, TagGenre} {
			for _, name := range tags[kind] {
				if _, err := tagStmt.ExecContext(ctx, rowID, kind, name); err != nil {
					return errors.Wrapf(err, "failed to insert %s tag at row %d", kind, rowID)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit titles")
	}

	log.WithField("rows", len(titles)).Debug("titles replaced")
	return nil
}

// CountBy counts rows per non-null value of q.Column. Ties keep the order in
// which keys first appear in the file.
func (s *SQLiteStorage) CountBy(ctx context.Context, q CountQuery) ([]Count, error) {
	if !countableColumns[q.Column] {
		return nil, errors.Errorf("column %q cannot be counted", q.Column)
	}

	var args []interface{}
	query := fmt.Sprintf(`
	SELECT CAST(%[1]s AS TEXT), COUNT(*) AS n, MIN(row_id) AS first_seen
	FROM titles
	WHERE %[1]s IS NOT NULL`, q.Column)

	if len(q.Exclude) > 0 {
		query += fmt.Sprintf(" AND %s NOT IN (%s)", q.Column, placeholders(len(q.Exclude)))
		for _, v := range q.Exclude {
			args = append(args, v)
		}
	}

	query += " GROUP BY " + q.Column
	if q.ByKey {
		query += " ORDER BY " + q.Column + " ASC"
	} else {
		query += " ORDER BY n DESC, first_seen ASC"
	}

	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	return s.queryCounts(ctx, query, args...)
}

// CountTags counts occurrences of each tag name of the given kind across all rows.
func (s *SQLiteStorage) CountTags(ctx context.Context, kind string, limit int) ([]Count, error) {
	query := `
	SELECT name, COUNT(*) AS n, MIN(id) AS first_seen
	FROM title_tags
	WHERE kind = ?
	GROUP BY name
	ORDER BY n DESC, first_seen ASC`
	args := []interface{}{kind}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return s.queryCounts(ctx, query, args...)
}

func (s *SQLiteStorage) queryCounts(ctx context.Context, query string, args ...interface{}) ([]Count, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query counts")
	}
	defer rows.Close()

	var counts []Count
	for rows.Next() {
		var (
			c         Count
			firstSeen int
		)
		if err := rows.Scan(&c.Key, &c.Count, &firstSeen); err != nil {
			return nil, errors.Wrap(err, "failed to scan count")
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

func (s *SQLiteStorage) CountByYearAndCategory(ctx context.Context) ([]YearCategoryCount, error) {
	query := `
	SELECT year, category, COUNT(*)
	FROM titles
	WHERE year IS NOT NULL AND category IS NOT NULL
	GROUP BY year, category
	ORDER BY year ASC, category ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query year and category counts")
	}
	defer rows.Close()

	var counts []YearCategoryCount
	for rows.Next() {
		var c YearCategoryCount
		if err := rows.Scan(&c.Year, &c.Category, &c.Count); err != nil {
			return nil, errors.Wrap(err, "failed to scan year and category count")
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// DurationsFor returns the raw Duration cells of one category in file order.
func (s *SQLiteStorage) DurationsFor(ctx context.Context, category string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT duration FROM titles WHERE category = ? ORDER BY row_id`, category)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query durations")
	}
	defer rows.Close()

	var durations []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, errors.Wrap(err, "failed to scan duration")
		}
		durations = append(durations, d)
	}

	return durations, rows.Err()
}

func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStorage) GetStats(ctx context.Context) (map[string]int, error) {
	stats := make(map[string]int)

	queries := []struct {
		key   string
		query string
	}{
		{"total", `SELECT COUNT(*) FROM titles`},
		{"movies", `SELECT COUNT(*) FROM titles WHERE category = 'Movie'`},
		{"tv_shows", `SELECT COUNT(*) FROM titles WHERE category = 'TV Show'`},
	}

	for _, q := range queries {
		var n int
		if err := s.db.QueryRowContext(ctx, q.query).Scan(&n); err != nil {
			return nil, errors.Wrapf(err, "failed to get %s count", q.key)
		}
		stats[q.key] = n
	}

	return stats, nil
}

// Migration management methods
func (s *SQLiteStorage) GetMigrationManager() (*MigrationManager, error) {
	migrationManager := NewMigrationManager(s.db)
	if err := migrationManager.Initialize(); err != nil {
		return nil, err
	}
	return migrationManager, nil
}

func (s *SQLiteStorage) GetDatabaseVersion(ctx context.Context) (int64, error) {
	migrationManager, err := s.GetMigrationManager()
	if err != nil {
		return 0, err
	}
	return migrationManager.Version(ctx)
}

func (s *SQLiteStorage) RunMigrations(ctx context.Context) error {
	migrationManager, err := s.GetMigrationManager()
	if err != nil {
		return err
	}
	return migrationManager.Up(ctx)
}

func (s *SQLiteStorage) RollbackMigration(ctx context.Context) error {
	migrationManager, err := s.GetMigrationManager()
	if err != nil {
		return err
	}
	return migrationManager.Down(ctx)
}

func (s *SQLiteStorage) ResetDatabase(ctx context.Context) error {
	migrationManager, err := s.GetMigrationManager()
	if err != nil {
		return err
	}
	return migrationManager.Reset(ctx)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
