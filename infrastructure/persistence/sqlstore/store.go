// Package sqlstore persists projects in PostgreSQL or SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/haydenbleasel/tersa-sub001/application/ports"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/persistence/sqlstore/migrations"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// Dialect selects the SQL flavour.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Store is a project repository on database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	opts    []aggregates.Option
	tracer  trace.Tracer
	logger  *zap.Logger
	now     func() time.Time
}

var _ ports.ProjectRepository = (*Store)(nil)

// Open connects to the database. driver is "postgres" or "sqlite".
func Open(driver, dsn string, logger *zap.Logger, opts ...aggregates.Option) (*Store, error) {
	dialect := Dialect(driver)
	if dialect != DialectPostgres && dialect != DialectSQLite {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if dialect == DialectSQLite {
		// one writer at a time; an in-memory database also exists per connection
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring sqlite: %w", err)
		}
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	return New(db, dialect, logger, opts...), nil
}

// New wraps an open database.
func New(db *sql.DB, dialect Dialect, logger *zap.Logger, opts ...aggregates.Option) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		opts:    opts,
		tracer:  otel.Tracer("canvas/sqlstore"),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies the dialect's pending migrations in version order.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	if _, err := s.db.ExecContext(ctx, queryCreateMigrationsTable.sql(s.dialect)); err != nil {
		return 0, fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx, queryCurrentMigration.sql(s.dialect)).Scan(&current); err != nil {
		return 0, fmt.Errorf("getting current version: %w", err)
	}

	dir := string(s.dialect)
	entries, err := fs.ReadDir(migrations.FS, dir)
	if err != nil {
		return 0, fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	applied := 0
	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= current {
			continue
		}

		content, err := fs.ReadFile(migrations.FS, path.Join(dir, name))
		if err != nil {
			return applied, fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return applied, err
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, queryRecordMigration.sql(s.dialect), version); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, err
		}

		s.logger.Info("Applied migration", zap.String("file", name), zap.String("dialect", dir))
		applied++
	}
	return applied, nil
}

// Create inserts a new project
func (s *Store) Create(ctx context.Context, project *aggregates.Project) (err error) {
	ctx, span := s.start(ctx, "Create", project.ID().String())
	defer func() { s.end(span, err) }()

	rec, err := project.Record()
	if err != nil {
		return err
	}
	content, err := json.Marshal(rec.Content)
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode content").WithCause(err)
	}

	createdAt := rec.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	updatedAt := rec.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err = s.db.ExecContext(ctx, queryInsertProject.sql(s.dialect),
		rec.ID, rec.UserID, rec.Name, rec.TranscriptionModel, rec.VisionModel, rec.Image,
		s.contentArg(content), s.timeArg(createdAt), s.timeArg(updatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return pkgerrors.NewConflictError("project " + rec.ID + " already exists")
		}
		return pkgerrors.NewDatabaseError(queryInsertProject.ID, err)
	}

	project.MarkPersisted(1, updatedAt)
	return nil
}

// Load returns the owner's project
func (s *Store) Load(ctx context.Context, ownerID string, id valueobjects.ProjectID) (_ *aggregates.Project, err error) {
	ctx, span := s.start(ctx, "Load", id.String())
	defer func() { s.end(span, err) }()

	var (
		rec                  aggregates.ProjectRecord
		content              []byte
		createdAt, updatedAt dbTime
	)
	err = s.db.QueryRowContext(ctx, querySelectProject.sql(s.dialect), id.String()).Scan(
		&rec.ID, &rec.UserID, &rec.Name, &rec.TranscriptionModel, &rec.VisionModel, &rec.Image,
		&content, &createdAt, &updatedAt, &rec.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NewNotFoundError("project " + id.String())
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError(querySelectProject.ID, err)
	}
	if rec.UserID != ownerID {
		return nil, pkgerrors.NewForbiddenError("project belongs to another user")
	}

	if err := json.Unmarshal(content, &rec.Content); err != nil {
		return nil, pkgerrors.NewInternalError("stored content is not valid JSON").WithCause(err)
	}
	rec.CreatedAt = createdAt.Time
	rec.UpdatedAt = updatedAt.Time
	return aggregates.ReconstructProject(rec, s.opts...)
}

// Save writes the project if the stored version still matches
func (s *Store) Save(ctx context.Context, ownerID string, project *aggregates.Project) (err error) {
	ctx, span := s.start(ctx, "Save", project.ID().String())
	defer func() { s.end(span, err) }()

	rec, err := project.Record()
	if err != nil {
		return err
	}
	if rec.UserID != ownerID {
		return pkgerrors.NewForbiddenError("project belongs to another user")
	}
	content, err := json.Marshal(rec.Content)
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode content").WithCause(err)
	}

	updatedAt := s.now()
	res, err := s.db.ExecContext(ctx, queryUpdateProject.sql(s.dialect),
		rec.Name, rec.TranscriptionModel, rec.VisionModel, rec.Image, s.contentArg(content),
		s.timeArg(updatedAt), rec.ID, ownerID, rec.Version,
	)
	if err != nil {
		return pkgerrors.NewDatabaseError(queryUpdateProject.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return pkgerrors.NewDatabaseError(queryUpdateProject.ID, err)
	}
	if n == 0 {
		return s.explainMiss(ctx, ownerID, rec)
	}

	project.MarkPersisted(rec.Version+1, updatedAt)
	return nil
}

// explainMiss reports why a guarded update matched no row.
func (s *Store) explainMiss(ctx context.Context, ownerID string, rec aggregates.ProjectRecord) error {
	var owner string
	var version int
	err := s.db.QueryRowContext(ctx, queryProjectOwnerVersion.sql(s.dialect), rec.ID).Scan(&owner, &version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return pkgerrors.NewNotFoundError("project " + rec.ID)
	case err != nil:
		return pkgerrors.NewDatabaseError(queryProjectOwnerVersion.ID, err)
	case owner != ownerID:
		return pkgerrors.NewForbiddenError("project belongs to another user")
	}
	return pkgerrors.NewConflictError("project was modified concurrently").
		WithCode("VERSION_CONFLICT").
		WithDetail("expected", rec.Version).
		WithDetail("actual", version)
}

// List returns the owner's projects, most recently updated first
func (s *Store) List(ctx context.Context, ownerID string) (_ []ports.ProjectSummary, err error) {
	ctx, span := s.start(ctx, "List", "")
	defer func() { s.end(span, err) }()

	rows, err := s.db.QueryContext(ctx, queryListProjects.sql(s.dialect), ownerID)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError(queryListProjects.ID, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("Error closing rows", zap.Error(closeErr))
		}
	}()

	out := []ports.ProjectSummary{}
	for rows.Next() {
		var row ports.ProjectSummary
		var createdAt, updatedAt dbTime
		if err := rows.Scan(&row.ID, &row.Name, &row.TranscriptionModel, &row.VisionModel, &row.Image, &createdAt, &updatedAt); err != nil {
			return nil, pkgerrors.NewDatabaseError(queryListProjects.ID, err)
		}
		row.CreatedAt = createdAt.Time
		row.UpdatedAt = updatedAt.Time
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError(queryListProjects.ID, err)
	}
	return out, nil
}

// Delete removes the owner's project
func (s *Store) Delete(ctx context.Context, ownerID string, id valueobjects.ProjectID) (err error) {
	ctx, span := s.start(ctx, "Delete", id.String())
	defer func() { s.end(span, err) }()

	res, err := s.db.ExecContext(ctx, queryDeleteProject.sql(s.dialect), id.String(), ownerID)
	if err != nil {
		return pkgerrors.NewDatabaseError(queryDeleteProject.ID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var owner string
	var version int
	err = s.db.QueryRowContext(ctx, queryProjectOwnerVersion.sql(s.dialect), id.String()).Scan(&owner, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return pkgerrors.NewNotFoundError("project " + id.String())
	}
	if err != nil {
		return pkgerrors.NewDatabaseError(queryProjectOwnerVersion.ID, err)
	}
	return pkgerrors.NewForbiddenError("project belongs to another user")
}

func (s *Store) start(ctx context.Context, op, projectID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "sqlstore."+op, trace.WithAttributes(
		attribute.String("db.system", string(s.dialect)),
		attribute.String("project.id", projectID),
	))
}

func (s *Store) end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Store) timeArg(t time.Time) any {
	if s.dialect == DialectSQLite {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t.UTC()
}

func (s *Store) contentArg(content []byte) any {
	return string(content)
}

// dbTime scans timestamps stored natively or as RFC 3339 text.
type dbTime struct {
	time.Time
}

// Scan implements sql.Scanner
func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into timestamp", src)
}

func (t *dbTime) parse(s string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
