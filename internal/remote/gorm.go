package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"taskdeck/internal/errors"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options configures a GormStore.
type Options struct {
	Driver  string // postgres, mysql or sqlite
	DSN     string
	Timeout time.Duration
	Verbose bool
}

// GormStore implements Store on a relational database through gorm.
type GormStore struct {
	db      *gorm.DB
	timeout time.Duration
}

// Open connects to the remote database described by opts.
func Open(opts Options) (*GormStore, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "postgres":
		dialector = postgres.Open(opts.DSN)
	case "mysql":
		dialector = mysql.Open(opts.DSN)
	case "sqlite":
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, errors.NewInvalidInputError("remote.driver", opts.Driver, "expected postgres, mysql or sqlite")
	}

	level := logger.Silent
	if opts.Verbose {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, errors.NewRemoteError("connect", opts.Driver, err)
	}
	return NewGormStore(db, opts.Timeout), nil
}

// NewGormStore wraps an existing connection. A zero timeout disables the
// per-call deadline.
func NewGormStore(db *gorm.DB, timeout time.Duration) *GormStore {
	return &GormStore{db: db, timeout: timeout}
}

// EnsureSchema creates the projects, tasks and profiles tables if missing.
func (s *GormStore) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&ProjectRecord{}, &TaskRecord{}, &ProfileRecord{}); err != nil {
		return errors.NewRemoteError("migrate", "schema", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Select returns all rows of table matching filter.
func (s *GormStore) Select(ctx context.Context, table string, filter Filter) ([]Row, error) {
	if err := checkIdentifier(table); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := s.db.WithContext(ctx).Table(table)
	if len(filter) > 0 {
		for column := range filter {
			if err := checkIdentifier(column); err != nil {
				return nil, err
			}
		}
		query = query.Where(map[string]interface{}(filter))
	}

	var results []map[string]interface{}
	if err := query.Find(&results).Error; err != nil {
		return nil, errors.NewRemoteError("select", table, err)
	}

	rows := make([]Row, len(results))
	for i, r := range results {
		rows[i] = Row(r)
	}
	return rows, nil
}

// Upsert inserts rows, replacing every non-id column of rows whose id exists.
func (s *GormStore) Upsert(ctx context.Context, table string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	if err := checkIdentifier(table); err != nil {
		return err
	}

	columnSet := map[string]struct{}{}
	records := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		if _, ok := row["id"]; !ok {
			return errors.NewInvalidInputError("row", row, "missing id column")
		}
		for column := range row {
			if err := checkIdentifier(column); err != nil {
				return err
			}
			if column != "id" {
				columnSet[column] = struct{}{}
			}
		}
		records[i] = map[string]interface{}(row)
	}
	columns := make([]string, 0, len(columnSet))
	for column := range columnSet {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	onConflict := clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: len(columns) == 0}
	if len(columns) > 0 {
		onConflict.DoUpdates = clause.AssignmentColumns(columns)
	}
	err := s.db.WithContext(ctx).Table(table).Clauses(onConflict).Create(&records).Error
	if err != nil {
		return errors.NewRemoteError("upsert", table, err)
	}
	return nil
}

// Delete removes the rows of table whose id is in ids. Missing ids are ignored.
func (s *GormStore) Delete(ctx context.Context, table string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := checkIdentifier(table); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.db.WithContext(ctx).Exec("DELETE FROM ? WHERE id IN ?", clause.Table{Name: table}, ids).Error
	if err != nil {
		return errors.NewRemoteError("delete", table, err)
	}
	return nil
}

// Invoke calls the SQL function named function with payload encoded as JSON
// and returns its single result column.
func (s *GormStore) Invoke(ctx context.Context, function string, payload interface{}) (json.RawMessage, error) {
	if err := checkIdentifier(function); err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewInvalidInputError("payload", payload, err.Error())
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out sql.NullString
	row := s.db.WithContext(ctx).Raw(fmt.Sprintf("SELECT %s(?)", function), string(body)).Row()
	if err := row.Scan(&out); err != nil {
		return nil, errors.NewRemoteError("invoke", function, err)
	}
	if !out.Valid {
		return nil, nil
	}
	return json.RawMessage(out.String), nil
}

// SignOut is a no-op: a direct database connection holds no server session.
func (s *GormStore) SignOut(ctx context.Context) error {
	return nil
}

func (s *GormStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func checkIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return errors.NewInvalidInputError("identifier", name, "must be a plain SQL identifier")
	}
	return nil
}
