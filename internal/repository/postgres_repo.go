package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/Krimson/ctg-analyzer/pkg/models"
)

const createCatalogSQL = `
CREATE TABLE IF NOT EXISTS recordings (
    handle TEXT PRIMARY KEY,
    filename TEXT NOT NULL,
    rows INTEGER NOT NULL,
    sampling_rate DOUBLE PRECISION NOT NULL,
    total_segments INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recordings_created_at ON recordings(created_at);
`

// PostgreSQLRepository хранит каталог загруженных записей
type PostgreSQLRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgreSQLRepository подключается к базе и создает таблицу каталога
func NewPostgreSQLRepository(ctx context.Context, connStr string, logger *slog.Logger) (*PostgreSQLRepository, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	repo := NewPostgreSQLRepositoryFromDB(db, logger)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// NewPostgreSQLRepositoryFromDB оборачивает открытое соединение
func NewPostgreSQLRepositoryFromDB(db *sql.DB, logger *slog.Logger) *PostgreSQLRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgreSQLRepository{db: db, logger: logger.With("component", "postgres")}
}

// Migrate создает таблицу каталога, если ее нет
func (r *PostgreSQLRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCatalogSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (r *PostgreSQLRepository) SaveEntry(ctx context.Context, entry *models.CatalogEntry) error {
	query := `
    INSERT INTO recordings (handle, filename, rows, sampling_rate, total_segments, created_at)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (handle)
    DO UPDATE SET filename = $2, rows = $3, sampling_rate = $4, total_segments = $5
    `

	_, err := r.db.ExecContext(ctx, query,
		entry.Handle,
		entry.Filename,
		entry.Rows,
		entry.SamplingRate,
		entry.TotalSegments,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert catalog entry: %w", err)
	}

	r.logger.Debug("catalog entry saved", "handle", entry.Handle, "filename", entry.Filename)
	return nil
}

func (r *PostgreSQLRepository) GetEntry(ctx context.Context, handle string) (*models.CatalogEntry, error) {
	query := `
    SELECT handle, filename, rows, sampling_rate, total_segments, created_at
    FROM recordings WHERE handle = $1
    `

	var entry models.CatalogEntry
	err := r.db.QueryRowContext(ctx, query, handle).Scan(
		&entry.Handle,
		&entry.Filename,
		&entry.Rows,
		&entry.SamplingRate,
		&entry.TotalSegments,
		&entry.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", models.ErrRecordingNotFound, handle)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog entry: %w", err)
	}
	return &entry, nil
}

func (r *PostgreSQLRepository) ListEntries(ctx context.Context, limit, offset int) ([]models.CatalogEntry, error) {
	query := `
    SELECT handle, filename, rows, sampling_rate, total_segments, created_at
    FROM recordings
    ORDER BY created_at DESC
    LIMIT $1 OFFSET $2
    `

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	entries := make([]models.CatalogEntry, 0)
	for rows.Next() {
		var entry models.CatalogEntry
		if err := rows.Scan(
			&entry.Handle,
			&entry.Filename,
			&entry.Rows,
			&entry.SamplingRate,
			&entry.TotalSegments,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog: %w", err)
	}

	return entries, nil
}

func (r *PostgreSQLRepository) DeleteEntry(ctx context.Context, handle string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recordings WHERE handle = $1`, handle); err != nil {
		return fmt.Errorf("failed to delete catalog entry: %w", err)
	}
	return nil
}

// CheckConnection проверяет доступность базы
func (r *PostgreSQLRepository) CheckConnection(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	return nil
}

func (r *PostgreSQLRepository) Close() error {
	return r.db.Close()
}
